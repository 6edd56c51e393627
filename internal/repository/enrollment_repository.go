package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gym-ops-api/internal/models"
)

// EnrollmentRepository persists member_class signups.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository creates an enrollment repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

func (r *EnrollmentRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Exists reports whether the member already holds a signup for the class.
func (r *EnrollmentRepository) Exists(ctx context.Context, exec sqlx.ExtContext, memberID, classID string) (bool, error) {
	const query = `SELECT 1 FROM member_class WHERE member_id = $1 AND class_id = $2 LIMIT 1`
	var exists int
	if err := sqlx.GetContext(ctx, r.exec(exec), &exists, query, memberID, classID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}

// CountByClass returns the number of signups held by a class.
func (r *EnrollmentRepository) CountByClass(ctx context.Context, exec sqlx.ExtContext, classID string) (int, error) {
	var count int
	if err := sqlx.GetContext(ctx, r.exec(exec), &count, `SELECT COUNT(*) FROM member_class WHERE class_id = $1`, classID); err != nil {
		return 0, fmt.Errorf("count enrollments: %w", err)
	}
	return count, nil
}

// Create inserts a signup.
func (r *EnrollmentRepository) Create(ctx context.Context, exec sqlx.ExtContext, enrollment *models.Enrollment) error {
	const query = `INSERT INTO member_class (member_id, class_id, signup_date) VALUES (:member_id, :class_id, :signup_date)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// ListByClass returns signups for a class ordered by member id.
func (r *EnrollmentRepository) ListByClass(ctx context.Context, classID string) ([]models.Enrollment, error) {
	const query = `SELECT member_id, class_id, signup_date FROM member_class WHERE class_id = $1 ORDER BY member_id`
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, classID); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// RenameClass moves every signup from oldID to newID.
func (r *EnrollmentRepository) RenameClass(ctx context.Context, exec sqlx.ExtContext, oldID, newID string) (int64, error) {
	result, err := r.exec(exec).ExecContext(ctx, `UPDATE member_class SET class_id = $1 WHERE class_id = $2`, newID, oldID)
	if err != nil {
		return 0, fmt.Errorf("rename class enrollments: %w", err)
	}
	return result.RowsAffected()
}

// DeleteByClass removes every signup of a class.
func (r *EnrollmentRepository) DeleteByClass(ctx context.Context, exec sqlx.ExtContext, classID string) (int64, error) {
	result, err := r.exec(exec).ExecContext(ctx, `DELETE FROM member_class WHERE class_id = $1`, classID)
	if err != nil {
		return 0, fmt.Errorf("delete class enrollments: %w", err)
	}
	return result.RowsAffected()
}

// Availability computes capacity, signups and remaining seats per class.
// An empty classID returns every class.
func (r *EnrollmentRepository) Availability(ctx context.Context, classID string) ([]models.ClassAvailability, error) {
	query := `
SELECT c.class_id, c.class_name, c.date, c.time, c.capacity,
	COUNT(mc.member_id) AS enrolled,
	c.capacity - COUNT(mc.member_id) AS available
FROM classes c
LEFT JOIN member_class mc ON mc.class_id = c.class_id`
	var args []interface{}
	if classID != "" {
		query += "\nWHERE c.class_id = $1"
		args = append(args, classID)
	}
	query += "\nGROUP BY c.class_id, c.class_name, c.date, c.time, c.capacity\nORDER BY c.class_id"

	var rows []models.ClassAvailability
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list availability: %w", err)
	}
	return rows, nil
}
