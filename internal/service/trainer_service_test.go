package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gym-ops-api/internal/models"
	appErrors "github.com/noah-isme/gym-ops-api/pkg/errors"
)

func newTrainerFixture(t *testing.T) (*TrainerService, *memStore, *invalidationCounter, func(commit bool)) {
	store := newMemStore()
	tx, mock := newTxProviderMock(t)
	cache := &invalidationCounter{}
	svc := NewTrainerService(memTrainers{store}, memAssignments{store}, memHours{store}, cache, tx, nil, nil)
	t.Cleanup(func() { require.NoError(t, mock.ExpectationsWereMet()) })
	return svc, store, cache, func(commit bool) {
		if commit {
			expectCommit(mock)
			return
		}
		expectRollback(mock)
	}
}

func TestTrainerServiceCreate(t *testing.T) {
	svc, store, _, expect := newTrainerFixture(t)

	expect(true)
	trainer, err := svc.Create(context.Background(), TrainerRequest{TrainerID: "T1", FirstName: " Lena ", LastName: "Morris"})
	require.NoError(t, err)
	assert.Equal(t, "Lena", trainer.FirstName)
	assert.Contains(t, store.trainers, "T1")

	expect(false)
	_, err = svc.Create(context.Background(), TrainerRequest{TrainerID: "T1", FirstName: "Other", LastName: "Person"})
	assert.Equal(t, appErrors.ErrDuplicateKey.Code, errorCode(err))

	_, err = svc.Create(context.Background(), TrainerRequest{TrainerID: "T2", FirstName: "  ", LastName: "Person"})
	assert.Equal(t, appErrors.ErrInvalidInput.Code, errorCode(err))
}

func TestTrainerServiceUpdatePropagatesRename(t *testing.T) {
	svc, store, cache, expect := newTrainerFixture(t)
	store.addTrainer("T1", "Lena", "Morris")
	store.addTrainer("T2", "Omar", "Baines")
	store.assignments = []models.Assignment{
		{ID: 1, ClassID: "C1", TrainerID: "T1", TrainerName: "Lena Morris", Date: "03/06/2025", DurationMinutes: 60},
		{ID: 2, ClassID: "C2", TrainerID: "T2", TrainerName: "Omar Baines", Date: "03/06/2025", DurationMinutes: 30},
	}
	store.hours = []models.HoursRecord{
		{ID: 3, TrainerID: "T1", TrainerName: "Lena Morris", Date: "03/06/2025", MinutesWorked: 60},
		{ID: 4, TrainerID: "T2", TrainerName: "Omar Baines", Date: "03/06/2025", MinutesWorked: 30},
	}

	expect(true)
	_, err := svc.Update(context.Background(), "T1", TrainerRequest{TrainerID: "T9", FirstName: "Lena", LastName: "Hale"})
	require.NoError(t, err)

	assert.Equal(t, "T9", store.assignments[0].TrainerID)
	assert.Equal(t, "Lena Hale", store.assignments[0].TrainerName)
	assert.Equal(t, "T9", store.hours[0].TrainerID)
	assert.Equal(t, "Lena Hale", store.hours[0].TrainerName)
	assert.Equal(t, "T2", store.assignments[1].TrainerID)
	for _, h := range store.hours {
		assert.NotEqual(t, "T1", h.TrainerID)
	}
	assert.Equal(t, 1, cache.calls)
}

func TestTrainerServiceUpdateNameOnlyRewritesSnapshots(t *testing.T) {
	svc, store, _, expect := newTrainerFixture(t)
	store.addTrainer("T1", "Lena", "Morris")
	store.assignments = []models.Assignment{{ID: 1, ClassID: "C1", TrainerID: "T1", TrainerName: "Lena Morris"}}

	expect(true)
	_, err := svc.Update(context.Background(), "T1", TrainerRequest{TrainerID: "T1", FirstName: "Lena", LastName: "Hale"})
	require.NoError(t, err)
	assert.Equal(t, "Lena Hale", store.assignments[0].TrainerName)
}

func TestTrainerServiceUpdateFailures(t *testing.T) {
	svc, store, cache, expect := newTrainerFixture(t)
	store.addTrainer("T1", "Lena", "Morris")
	store.addTrainer("T2", "Omar", "Baines")

	expect(false)
	_, err := svc.Update(context.Background(), "T404", TrainerRequest{TrainerID: "T404", FirstName: "A", LastName: "B"})
	assert.Equal(t, appErrors.ErrNotFound.Code, errorCode(err))

	expect(false)
	_, err = svc.Update(context.Background(), "T1", TrainerRequest{TrainerID: "T2", FirstName: "A", LastName: "B"})
	assert.Equal(t, appErrors.ErrDuplicateKey.Code, errorCode(err))

	store.failures["assignments.RenameTrainer"] = errors.New("lock timeout")
	expect(false)
	_, err = svc.Update(context.Background(), "T1", TrainerRequest{TrainerID: "T9", FirstName: "A", LastName: "B"})
	assert.Equal(t, appErrors.ErrInternal.Code, errorCode(err))
	assert.Zero(t, cache.calls)
}

func TestTrainerServiceDelete(t *testing.T) {
	svc, store, _, expect := newTrainerFixture(t)
	store.addTrainer("T1", "Lena", "Morris")
	store.addTrainer("T2", "Omar", "Baines")
	store.assignments = []models.Assignment{
		{ID: 1, ClassID: "C1", TrainerID: "T1"},
		{ID: 2, ClassID: "C2", TrainerID: "T1"},
	}

	expect(false)
	err := svc.Delete(context.Background(), "T1")
	require.Equal(t, appErrors.ErrConflict.Code, errorCode(err))
	assert.Equal(t, "This trainer has 2 assignments and cannot be deleted", appErrors.FromError(err).Message)
	assert.Contains(t, store.trainers, "T1")

	expect(true)
	require.NoError(t, svc.Delete(context.Background(), "T2"))
	assert.NotContains(t, store.trainers, "T2")

	expect(false)
	err = svc.Delete(context.Background(), "T2")
	assert.Equal(t, appErrors.ErrNotFound.Code, errorCode(err))
}

func TestTrainerServiceRoster(t *testing.T) {
	svc, store, _, _ := newTrainerFixture(t)
	store.addTrainer("T1", "Zoe", "Adams")
	store.addTrainer("T2", "Amy", "Young")
	store.addTrainer("T3", "Bob", "Young")
	store.assignments = []models.Assignment{{ID: 1, ClassID: "C1", TrainerID: "T2"}}

	roster, err := svc.Roster(context.Background())
	require.NoError(t, err)
	require.Len(t, roster, 3)
	assert.Equal(t, "T2", roster[0].ID)
	assert.Equal(t, models.TrainerStatusAssigned, roster[0].Status)
	assert.Equal(t, "T1", roster[1].ID)
	assert.Equal(t, models.TrainerStatusNotAssigned, roster[1].Status)
	assert.Equal(t, "T3", roster[2].ID)
}
