package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gym-ops-api/internal/models"
)

func TestTrainerRepositoryRoster(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTrainerRepository(db)

	rows := sqlmock.NewRows([]string{"staff_id", "forname", "surname", "assignment_count"}).
		AddRow("T001", "Lena", "Morris", 2).
		AddRow("T002", "Omar", "Baines", 0)
	mock.ExpectQuery(regexp.QuoteMeta(`LEFT JOIN assignments a ON a.trainer_id = t.staff_id`)).WillReturnRows(rows)

	entries, err := repo.Roster(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "T001", entries[0].ID)
	assert.Equal(t, 2, entries[0].AssignmentCount)
	assert.Equal(t, 0, entries[1].AssignmentCount)
}

func TestTrainerRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTrainerRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE trainers SET staff_id = $1, forname = $2, surname = $3 WHERE staff_id = $4`)).
		WithArgs("T009", "Lena", "Morris-Hale", "T001").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), nil, "T001", &models.Trainer{ID: "T009", FirstName: "Lena", LastName: "Morris-Hale"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTrainerRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTrainerRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM trainers WHERE staff_id = $1`)).
		WithArgs("T404").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), nil, "T404")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestTrainerRepositoryExistsPropagatesFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTrainerRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM trainers`)).
		WithArgs("T001").
		WillReturnError(errors.New("connection reset"))

	_, err := repo.Exists(context.Background(), nil, "T001")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check trainer id")
}

func TestTrainerRepositoryFindByIDForShare(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTrainerRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT staff_id, forname, surname FROM trainers WHERE staff_id = $1 FOR SHARE`)).
		WithArgs("T001").
		WillReturnRows(sqlmock.NewRows([]string{"staff_id", "forname", "surname"}).AddRow("T001", "Lena", "Morris"))
	mock.ExpectQuery(regexp.QuoteMeta(`FOR SHARE`)).
		WithArgs("T404").
		WillReturnError(sql.ErrNoRows)

	trainer, err := repo.FindByIDForShare(context.Background(), nil, "T001")
	require.NoError(t, err)
	assert.Equal(t, "Lena Morris", trainer.FullName())

	_, err = repo.FindByIDForShare(context.Background(), nil, "T404")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	require.NoError(t, mock.ExpectationsWereMet())
}
