package models

import "time"

const (
	TermStatusActive    = "active"
	TermStatusCompleted = "completed"
)

// Term is one (academic_year, semester) slot of the school calendar.
type Term struct {
	ID           string    `db:"id" json:"id"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	Semester     string    `db:"semester" json:"semester"`
	Status       string    `db:"status" json:"status"`
	StartDate    time.Time `db:"start_date" json:"start_date"`
	EndDate      time.Time `db:"end_date" json:"end_date"`
}
