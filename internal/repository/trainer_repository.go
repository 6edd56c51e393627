package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gym-ops-api/internal/models"
)

// TrainerRepository persists trainers.
type TrainerRepository struct {
	db *sqlx.DB
}

// NewTrainerRepository constructs the repository.
func NewTrainerRepository(db *sqlx.DB) *TrainerRepository {
	return &TrainerRepository{db: db}
}

func (r *TrainerRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Roster returns every trainer with the number of assignments referencing it.
// Ordering is applied by models.SortRoster.
func (r *TrainerRepository) Roster(ctx context.Context) ([]models.TrainerRosterEntry, error) {
	const query = `
SELECT t.staff_id, t.forname, t.surname, COUNT(a.assignment_id) AS assignment_count
FROM trainers t
LEFT JOIN assignments a ON a.trainer_id = t.staff_id
GROUP BY t.staff_id, t.forname, t.surname`
	var entries []models.TrainerRosterEntry
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("list trainer roster: %w", err)
	}
	return entries, nil
}

// FindByID returns a trainer or sql.ErrNoRows.
func (r *TrainerRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Trainer, error) {
	const query = `SELECT staff_id, forname, surname FROM trainers WHERE staff_id = $1`
	var trainer models.Trainer
	if err := sqlx.GetContext(ctx, r.exec(exec), &trainer, query, id); err != nil {
		return nil, err
	}
	return &trainer, nil
}

// FindByIDForUpdate loads a trainer and locks its row for the transaction.
func (r *TrainerRepository) FindByIDForUpdate(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Trainer, error) {
	const query = `SELECT staff_id, forname, surname FROM trainers WHERE staff_id = $1 FOR UPDATE`
	var trainer models.Trainer
	if err := sqlx.GetContext(ctx, r.exec(exec), &trainer, query, id); err != nil {
		return nil, err
	}
	return &trainer, nil
}

// FindByIDForShare loads a trainer and holds a shared lock on its row, so the
// row cannot be deleted or re-keyed until the transaction ends.
func (r *TrainerRepository) FindByIDForShare(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Trainer, error) {
	const query = `SELECT staff_id, forname, surname FROM trainers WHERE staff_id = $1 FOR SHARE`
	var trainer models.Trainer
	if err := sqlx.GetContext(ctx, r.exec(exec), &trainer, query, id); err != nil {
		return nil, err
	}
	return &trainer, nil
}

// Exists reports whether the trainer id is taken.
func (r *TrainerRepository) Exists(ctx context.Context, exec sqlx.ExtContext, id string) (bool, error) {
	const query = `SELECT 1 FROM trainers WHERE staff_id = $1 LIMIT 1`
	var exists int
	if err := sqlx.GetContext(ctx, r.exec(exec), &exists, query, id); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check trainer id: %w", err)
	}
	return true, nil
}

// Create inserts a trainer.
func (r *TrainerRepository) Create(ctx context.Context, exec sqlx.ExtContext, trainer *models.Trainer) error {
	const query = `INSERT INTO trainers (staff_id, forname, surname) VALUES (:staff_id, :forname, :surname)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, trainer); err != nil {
		return fmt.Errorf("create trainer: %w", err)
	}
	return nil
}

// Update rewrites the trainer stored under oldID, including its id.
func (r *TrainerRepository) Update(ctx context.Context, exec sqlx.ExtContext, oldID string, trainer *models.Trainer) error {
	const query = `UPDATE trainers SET staff_id = $1, forname = $2, surname = $3 WHERE staff_id = $4`
	result, err := r.exec(exec).ExecContext(ctx, query, trainer.ID, trainer.FirstName, trainer.LastName, oldID)
	if err != nil {
		return fmt.Errorf("update trainer: %w", err)
	}
	return requireAffected(result, "update trainer")
}

// Delete removes a trainer row.
func (r *TrainerRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	result, err := r.exec(exec).ExecContext(ctx, `DELETE FROM trainers WHERE staff_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete trainer: %w", err)
	}
	return requireAffected(result, "delete trainer")
}
