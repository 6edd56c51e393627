package models

// AssignmentDateLayout is the format of Assignment.AssignmentDate.
const AssignmentDateLayout = "2006-01-02 15:04:05"

// Assignment binds a trainer to a class session. At most one exists per class.
//
// ClassName and TrainerName are snapshots kept for historical display. A
// trainer update rewrites TrainerID and TrainerName on purpose; class updates
// leave existing snapshots alone.
type Assignment struct {
	ID              int64  `db:"assignment_id" json:"assignment_id"`
	ClassID         string `db:"class_id" json:"class_id"`
	ClassName       string `db:"class_name" json:"class_name"`
	TrainerID       string `db:"trainer_id" json:"trainer_id"`
	TrainerName     string `db:"trainer_name" json:"trainer_name"`
	Date            string `db:"date" json:"date"`
	DurationMinutes int    `db:"duration_minutes" json:"duration_minutes"`
	AssignmentDate  string `db:"assignment_date" json:"assignment_date"`
}

// AssignmentKey selects the assignment row(s) to remove.
type AssignmentKey struct {
	ClassID   string `json:"class_id" form:"class_id" validate:"required"`
	TrainerID string `json:"trainer_id" form:"trainer_id" validate:"required"`
	Date      string `json:"date" form:"date" validate:"required"`
}
