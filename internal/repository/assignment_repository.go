package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gym-ops-api/internal/models"
)

const assignmentColumns = `assignment_id, class_id, class_name, trainer_id, trainer_name, date, duration_minutes, assignment_date`

// AssignmentRepository persists trainer-to-class assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// List returns every assignment ordered by when it was made.
func (r *AssignmentRepository) List(ctx context.Context) ([]models.Assignment, error) {
	const query = `SELECT ` + assignmentColumns + ` FROM assignments ORDER BY assignment_date ASC, assignment_id ASC`
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// FindByClass returns the assignment held by a class or sql.ErrNoRows.
func (r *AssignmentRepository) FindByClass(ctx context.Context, exec sqlx.ExtContext, classID string) (*models.Assignment, error) {
	const query = `SELECT ` + assignmentColumns + ` FROM assignments WHERE class_id = $1 ORDER BY assignment_id LIMIT 1`
	var assignment models.Assignment
	if err := sqlx.GetContext(ctx, r.exec(exec), &assignment, query, classID); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// Create inserts an assignment and populates its generated id.
func (r *AssignmentRepository) Create(ctx context.Context, exec sqlx.ExtContext, assignment *models.Assignment) error {
	const query = `INSERT INTO assignments (class_id, class_name, trainer_id, trainer_name, date, duration_minutes, assignment_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING assignment_id`
	row := r.exec(exec).QueryRowxContext(ctx, query,
		assignment.ClassID, assignment.ClassName, assignment.TrainerID, assignment.TrainerName,
		assignment.Date, assignment.DurationMinutes, assignment.AssignmentDate)
	if err := row.Scan(&assignment.ID); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// DeleteByKey removes assignments matching the key and returns the removed rows.
func (r *AssignmentRepository) DeleteByKey(ctx context.Context, exec sqlx.ExtContext, key models.AssignmentKey) ([]models.Assignment, error) {
	const query = `DELETE FROM assignments WHERE class_id = $1 AND trainer_id = $2 AND date = $3
		RETURNING ` + assignmentColumns
	var removed []models.Assignment
	if err := sqlx.SelectContext(ctx, r.exec(exec), &removed, query, key.ClassID, key.TrainerID, key.Date); err != nil {
		return nil, fmt.Errorf("delete assignment: %w", err)
	}
	return removed, nil
}

// CountByTrainer returns how many assignments reference the trainer.
func (r *AssignmentRepository) CountByTrainer(ctx context.Context, exec sqlx.ExtContext, trainerID string) (int, error) {
	var count int
	if err := sqlx.GetContext(ctx, r.exec(exec), &count, `SELECT COUNT(*) FROM assignments WHERE trainer_id = $1`, trainerID); err != nil {
		return 0, fmt.Errorf("count trainer assignments: %w", err)
	}
	return count, nil
}

// RenameTrainer rewrites the trainer id and name snapshot on every assignment of oldID.
func (r *AssignmentRepository) RenameTrainer(ctx context.Context, exec sqlx.ExtContext, oldID, newID, newName string) (int64, error) {
	const query = `UPDATE assignments SET trainer_id = $1, trainer_name = $2 WHERE trainer_id = $3`
	result, err := r.exec(exec).ExecContext(ctx, query, newID, newName, oldID)
	if err != nil {
		return 0, fmt.Errorf("rename assignment trainer: %w", err)
	}
	return result.RowsAffected()
}
