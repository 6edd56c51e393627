package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gym-ops-api/internal/models"
)

var assignmentRowColumns = []string{"assignment_id", "class_id", "class_name", "trainer_id", "trainer_name", "date", "duration_minutes", "assignment_date"}

func TestAssignmentRepositoryCreateReturnsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO assignments`)).
		WithArgs("C001", "Pilates", "T001", "Lena Morris", "03/06/2025", 60, "2025-06-01 10:00:00").
		WillReturnRows(sqlmock.NewRows([]string{"assignment_id"}).AddRow(42))

	assignment := &models.Assignment{
		ClassID: "C001", ClassName: "Pilates", TrainerID: "T001", TrainerName: "Lena Morris",
		Date: "03/06/2025", DurationMinutes: 60, AssignmentDate: "2025-06-01 10:00:00",
	}
	require.NoError(t, repo.Create(context.Background(), nil, assignment))
	assert.EqualValues(t, 42, assignment.ID)
}

func TestAssignmentRepositoryDeleteByKey(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	rows := sqlmock.NewRows(assignmentRowColumns).
		AddRow(42, "C001", "Pilates", "T001", "Lena Morris", "03/06/2025", 60, "2025-06-01 10:00:00")
	mock.ExpectQuery(regexp.QuoteMeta(`DELETE FROM assignments WHERE class_id = $1 AND trainer_id = $2 AND date = $3`)).
		WithArgs("C001", "T001", "03/06/2025").
		WillReturnRows(rows)

	removed, err := repo.DeleteByKey(context.Background(), nil, models.AssignmentKey{ClassID: "C001", TrainerID: "T001", Date: "03/06/2025"})
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, 60, removed[0].DurationMinutes)
}

func TestAssignmentRepositoryRenameTrainer(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE assignments SET trainer_id = $1, trainer_name = $2 WHERE trainer_id = $3`)).
		WithArgs("T009", "Lena Hale", "T001").
		WillReturnResult(sqlmock.NewResult(0, 2))

	updated, err := repo.RenameTrainer(context.Background(), nil, "T001", "T009", "Lena Hale")
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated)
}

func TestAssignmentRepositoryListOrdering(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY assignment_date ASC, assignment_id ASC`)).
		WillReturnRows(sqlmock.NewRows(assignmentRowColumns))

	items, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}
