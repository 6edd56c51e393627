package models

// Class is a scheduled, capacity-limited gym session.
// Date, time and duration are kept in their display form ("03/06/2025", "7:30am", "60min").
type Class struct {
	ID              string `db:"class_id" json:"class_id"`
	Name            string `db:"class_name" json:"class_name"`
	Date            string `db:"date" json:"date"`
	Time            string `db:"time" json:"time"`
	Duration        string `db:"duration" json:"duration"`
	Capacity        int    `db:"capacity" json:"capacity"`
	DifficultyLevel string `db:"difficulty_level" json:"difficulty_level"`
}

// ClassAvailability reports remaining places for a class. Available is never clamped.
type ClassAvailability struct {
	ClassID   string `db:"class_id" json:"class_id"`
	ClassName string `db:"class_name" json:"class_name"`
	Date      string `db:"date" json:"date"`
	Time      string `db:"time" json:"time"`
	Capacity  int    `db:"capacity" json:"capacity"`
	Enrolled  int    `db:"enrolled" json:"enrolled"`
	Available int    `db:"available" json:"available"`
}
