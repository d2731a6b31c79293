package models

import "time"

const ScheduleStatusActive = "active"

// SectionSchedule binds a teacher to a subject and section for a term.
type SectionSchedule struct {
	ID           string    `db:"id" json:"id"`
	TeacherID    string    `db:"teacher_id" json:"teacher_id"`
	SubjectID    string    `db:"subject_id" json:"subject_id"`
	SectionID    string    `db:"section_id" json:"section_id"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	Semester     string    `db:"semester" json:"semester"`
	Status       string    `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Classroom is the fallback authorization source: a classroom directly owned
// by a teacher authorizes grading even without a schedule entry.
type Classroom struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	TeacherID string `db:"teacher_id" json:"teacher_id"`
	SectionID string `db:"section_id" json:"section_id"`
}
