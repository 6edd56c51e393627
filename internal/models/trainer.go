package models

import (
	"sort"
	"strings"
)

// Trainer is a staff member who can be assigned to classes.
type Trainer struct {
	ID        string `db:"staff_id" json:"trainer_id"`
	FirstName string `db:"forname" json:"first_name"`
	LastName  string `db:"surname" json:"last_name"`
}

// FullName is the display form snapshotted into the assignment and hours ledgers.
func (t Trainer) FullName() string {
	return strings.TrimSpace(t.FirstName + " " + t.LastName)
}

// TrainerStatus classifies a trainer for listing. It is derived at read time, never stored.
type TrainerStatus string

const (
	TrainerStatusAssigned    TrainerStatus = "Assigned"
	TrainerStatusNotAssigned TrainerStatus = "Not Assigned"
	// TrainerStatusNew marks a draft row the presentation layer has not saved yet.
	TrainerStatusNew TrainerStatus = "New"
)

func (s TrainerStatus) rank() int {
	switch s {
	case TrainerStatusAssigned:
		return 1
	case TrainerStatusNotAssigned:
		return 2
	case TrainerStatusNew:
		return 3
	default:
		return 4
	}
}

// TrainerRosterEntry is one row of the trainer listing.
type TrainerRosterEntry struct {
	Trainer
	AssignmentCount int           `db:"assignment_count" json:"assignment_count"`
	Status          TrainerStatus `db:"-" json:"status"`
}

// StatusFor derives the listing status from the number of assignments.
func StatusFor(assignmentCount int) TrainerStatus {
	if assignmentCount > 0 {
		return TrainerStatusAssigned
	}
	return TrainerStatusNotAssigned
}

// SortRoster orders entries Assigned, Not Assigned, New, then by surname and forename.
func SortRoster(entries []TrainerRosterEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if ra, rb := a.Status.rank(), b.Status.rank(); ra != rb {
			return ra < rb
		}
		if la, lb := strings.ToLower(a.LastName), strings.ToLower(b.LastName); la != lb {
			return la < lb
		}
		return strings.ToLower(a.FirstName) < strings.ToLower(b.FirstName)
	})
}
