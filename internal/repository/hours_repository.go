package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gym-ops-api/internal/models"
)

const hoursColumns = `record_id, trainer_id, trainer_name, date, minutes_worked`

// HoursRepository persists the trainer_hours ledger.
type HoursRepository struct {
	db *sqlx.DB
}

// NewHoursRepository constructs the repository.
func NewHoursRepository(db *sqlx.DB) *HoursRepository {
	return &HoursRepository{db: db}
}

func (r *HoursRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create appends a ledger row and populates its generated id.
func (r *HoursRepository) Create(ctx context.Context, exec sqlx.ExtContext, record *models.HoursRecord) error {
	const query = `INSERT INTO trainer_hours (trainer_id, trainer_name, date, minutes_worked)
		VALUES ($1, $2, $3, $4) RETURNING record_id`
	row := r.exec(exec).QueryRowxContext(ctx, query, record.TrainerID, record.TrainerName, record.Date, record.MinutesWorked)
	if err := row.Scan(&record.ID); err != nil {
		return fmt.Errorf("create hours record: %w", err)
	}
	return nil
}

// ListForUpdate returns the trainer's rows for a date, locked, oldest first.
func (r *HoursRepository) ListForUpdate(ctx context.Context, exec sqlx.ExtContext, trainerID, date string) ([]models.HoursRecord, error) {
	const query = `SELECT ` + hoursColumns + ` FROM trainer_hours WHERE trainer_id = $1 AND date = $2 ORDER BY record_id FOR UPDATE`
	var records []models.HoursRecord
	if err := sqlx.SelectContext(ctx, r.exec(exec), &records, query, trainerID, date); err != nil {
		return nil, fmt.Errorf("list hours records: %w", err)
	}
	return records, nil
}

// SetMinutes overwrites minutes_worked on a single row.
func (r *HoursRepository) SetMinutes(ctx context.Context, exec sqlx.ExtContext, recordID int64, minutes int) error {
	result, err := r.exec(exec).ExecContext(ctx, `UPDATE trainer_hours SET minutes_worked = $1 WHERE record_id = $2`, minutes, recordID)
	if err != nil {
		return fmt.Errorf("update hours record: %w", err)
	}
	return requireAffected(result, "update hours record")
}

// DeleteDepleted removes the trainer's rows for a date that no longer carry minutes.
func (r *HoursRepository) DeleteDepleted(ctx context.Context, exec sqlx.ExtContext, trainerID, date string) (int64, error) {
	const query = `DELETE FROM trainer_hours WHERE trainer_id = $1 AND date = $2 AND minutes_worked <= 0`
	result, err := r.exec(exec).ExecContext(ctx, query, trainerID, date)
	if err != nil {
		return 0, fmt.Errorf("delete depleted hours: %w", err)
	}
	return result.RowsAffected()
}

// RenameTrainer rewrites the trainer id and name snapshot on every row of oldID.
func (r *HoursRepository) RenameTrainer(ctx context.Context, exec sqlx.ExtContext, oldID, newID, newName string) (int64, error) {
	const query = `UPDATE trainer_hours SET trainer_id = $1, trainer_name = $2 WHERE trainer_id = $3`
	result, err := r.exec(exec).ExecContext(ctx, query, newID, newName, oldID)
	if err != nil {
		return 0, fmt.Errorf("rename hours trainer: %w", err)
	}
	return result.RowsAffected()
}

// Summaries totals minutes per trainer, smallest total first.
func (r *HoursRepository) Summaries(ctx context.Context) ([]models.TrainerHoursSummary, error) {
	const query = `
SELECT trainer_id, trainer_name, SUM(minutes_worked) AS total_minutes
FROM trainer_hours
GROUP BY trainer_id, trainer_name
ORDER BY total_minutes ASC, trainer_id ASC`
	var summaries []models.TrainerHoursSummary
	if err := r.db.SelectContext(ctx, &summaries, query); err != nil {
		return nil, fmt.Errorf("summarize hours: %w", err)
	}
	return summaries, nil
}
