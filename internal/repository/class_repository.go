package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gym-ops-api/internal/models"
)

const classColumns = `class_id, class_name, date, time, duration, capacity, difficulty_level`

// ClassRepository manages persistence for classes.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a new class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

func (r *ClassRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// List returns every class ordered by id.
func (r *ClassRepository) List(ctx context.Context) ([]models.Class, error) {
	const query = `SELECT ` + classColumns + ` FROM classes ORDER BY class_id`
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// FindByID returns a class or sql.ErrNoRows.
func (r *ClassRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Class, error) {
	const query = `SELECT ` + classColumns + ` FROM classes WHERE class_id = $1`
	var class models.Class
	if err := sqlx.GetContext(ctx, r.exec(exec), &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// FindByIDForUpdate loads a class and holds its row lock until the transaction ends.
func (r *ClassRepository) FindByIDForUpdate(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Class, error) {
	const query = `SELECT ` + classColumns + ` FROM classes WHERE class_id = $1 FOR UPDATE`
	var class models.Class
	if err := sqlx.GetContext(ctx, r.exec(exec), &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// Exists reports whether the class id is taken.
func (r *ClassRepository) Exists(ctx context.Context, exec sqlx.ExtContext, id string) (bool, error) {
	const query = `SELECT 1 FROM classes WHERE class_id = $1 LIMIT 1`
	var exists int
	if err := sqlx.GetContext(ctx, r.exec(exec), &exists, query, id); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check class id: %w", err)
	}
	return true, nil
}

// Create inserts a class.
func (r *ClassRepository) Create(ctx context.Context, exec sqlx.ExtContext, class *models.Class) error {
	const query = `INSERT INTO classes (` + classColumns + `)
		VALUES (:class_id, :class_name, :date, :time, :duration, :capacity, :difficulty_level)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// Update rewrites every column of the class stored under oldID, including its id.
func (r *ClassRepository) Update(ctx context.Context, exec sqlx.ExtContext, oldID string, class *models.Class) error {
	const query = `UPDATE classes SET class_id = $1, class_name = $2, date = $3, time = $4, duration = $5, capacity = $6, difficulty_level = $7
		WHERE class_id = $8`
	result, err := r.exec(exec).ExecContext(ctx, query,
		class.ID, class.Name, class.Date, class.Time, class.Duration, class.Capacity, class.DifficultyLevel, oldID)
	if err != nil {
		return fmt.Errorf("update class: %w", err)
	}
	return requireAffected(result, "update class")
}

// Delete removes the class row only. Dependent signups are removed by the caller.
func (r *ClassRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	result, err := r.exec(exec).ExecContext(ctx, `DELETE FROM classes WHERE class_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	return requireAffected(result, "delete class")
}

func requireAffected(result sql.Result, op string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
