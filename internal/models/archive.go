package models

import "time"

// ArchivedCourse marks a (teacher, subject, academic_year, semester) cohort as
// closed once every grade in it reached approved.
type ArchivedCourse struct {
	ID                string    `db:"id" json:"id"`
	TeacherID         string    `db:"teacher_id" json:"teacher_id"`
	SubjectID         string    `db:"subject_id" json:"subject_id"`
	CourseID          *string   `db:"course_id" json:"course_id,omitempty"`
	SectionID         *string   `db:"section_id" json:"section_id,omitempty"`
	AcademicYear      string    `db:"academic_year" json:"academic_year"`
	Semester          string    `db:"semester" json:"semester"`
	AllGradesApproved bool      `db:"all_grades_approved" json:"all_grades_approved"`
	TotalStudents     int       `db:"total_students" json:"total_students"`
	ApprovedStudents  int       `db:"approved_students" json:"approved_students"`
	ArchivedAt        time.Time `db:"archived_at" json:"archived_at"`
}

// ArchiveResult reports the outcome of a cohort archival check.
type ArchiveResult struct {
	Archived bool   `json:"archived"`
	Message  string `json:"message"`
}
