package models

// HoursRecord is one ledger entry of minutes worked. Totals are computed on read.
type HoursRecord struct {
	ID            int64  `db:"record_id" json:"record_id"`
	TrainerID     string `db:"trainer_id" json:"trainer_id"`
	TrainerName   string `db:"trainer_name" json:"trainer_name"`
	Date          string `db:"date" json:"date"`
	MinutesWorked int    `db:"minutes_worked" json:"minutes_worked"`
}

// TrainerHoursSummary aggregates the ledger for one trainer.
type TrainerHoursSummary struct {
	TrainerID    string  `db:"trainer_id" json:"trainer_id"`
	TrainerName  string  `db:"trainer_name" json:"trainer_name"`
	TotalMinutes int     `db:"total_minutes" json:"total_minutes"`
	TotalHours   float64 `db:"-" json:"total_hours"`
}
