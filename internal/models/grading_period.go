package models

import "time"

const (
	// PeriodTypeFinals is the only period type consulted by the workflow.
	PeriodTypeFinals = "finals"

	PeriodStatusActive   = "active"
	PeriodStatusInactive = "inactive"
)

// GradingPeriod is an administrator-configured submission window per term.
type GradingPeriod struct {
	ID           string    `db:"id" json:"id"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	Semester     string    `db:"semester" json:"semester"`
	PeriodType   string    `db:"period_type" json:"period_type"`
	StartDate    time.Time `db:"start_date" json:"start_date"`
	EndDate      time.Time `db:"end_date" json:"end_date"`
	Status       string    `db:"status" json:"status"`
}

// PeriodCheck answers whether finals grading is currently open.
type PeriodCheck struct {
	Active  bool           `json:"active"`
	Period  *GradingPeriod `json:"period,omitempty"`
	Message string         `json:"message"`
}
