package models

// SignupDateLayout is the display format of Enrollment.SignupDate.
const SignupDateLayout = "02/01/2006 15:04"

// Enrollment binds one member to one class. (MemberID, ClassID) is unique.
type Enrollment struct {
	MemberID   string `db:"member_id" json:"member_id"`
	ClassID    string `db:"class_id" json:"class_id"`
	SignupDate string `db:"signup_date" json:"signup_date"`
}
