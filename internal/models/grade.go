package models

import "time"

// ApprovalStatus tracks where a grade sits in the submission/approval lifecycle.
type ApprovalStatus string

const (
	ApprovalPending   ApprovalStatus = "pending"
	ApprovalSubmitted ApprovalStatus = "submitted"
	ApprovalApproved  ApprovalStatus = "approved"
	ApprovalRejected  ApprovalStatus = "rejected"
	ApprovalLocked    ApprovalStatus = "locked"
)

// GradeTypeFinal is the only grade type accepted by the enforced workflow.
// Legacy per-category types (quiz, exam) are excluded from this path.
const GradeTypeFinal = "final"

// Grade is one assessment value for (student, subject, classroom, term).
type Grade struct {
	ID             string         `db:"id" json:"id"`
	StudentID      string         `db:"student_id" json:"student_id"`
	SubjectID      string         `db:"subject_id" json:"subject_id"`
	ClassroomID    string         `db:"classroom_id" json:"classroom_id"`
	TeacherID      string         `db:"teacher_id" json:"teacher_id"`
	Grade          float64        `db:"grade" json:"grade"`
	GradeType      string         `db:"grade_type" json:"grade_type"`
	MaxPoints      float64        `db:"max_points" json:"max_points"`
	AcademicYear   string         `db:"academic_year" json:"academic_year"`
	Semester       string         `db:"semester" json:"semester"`
	Remarks        *string        `db:"remarks" json:"remarks,omitempty"`
	ApprovalStatus ApprovalStatus `db:"approval_status" json:"approval_status"`
	IsLocked       bool           `db:"is_locked" json:"is_locked"`
	LockedAt       *time.Time     `db:"locked_at" json:"locked_at,omitempty"`
	ApprovedBy     *string        `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt     *time.Time     `db:"approved_at" json:"approved_at,omitempty"`
	SubmittedAt    *time.Time     `db:"submitted_at" json:"submitted_at,omitempty"`
	EditRequestID  *string        `db:"edit_request_id" json:"edit_request_id,omitempty"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// LockStatus reports whether a grade may currently be edited and why.
type LockStatus struct {
	Locked bool   `json:"locked"`
	Reason string `json:"reason,omitempty"`
}

// SubmissionResult is the outward-facing outcome of a final-grade submission.
type SubmissionResult struct {
	Success bool   `json:"success"`
	GradeID string `json:"grade_id,omitempty"`
	Message string `json:"message"`
}

// FinalSubmission carries the validated values written on a submission.
type FinalSubmission struct {
	StudentID    string
	SubjectID    string
	ClassroomID  string
	TeacherID    string
	Grade        float64
	MaxPoints    float64
	AcademicYear string
	Semester     string
	Remarks      *string
}

// SubmissionRecord describes what a submission actually changed.
type SubmissionRecord struct {
	Grade             *Grade
	PreviousStatus    *ApprovalStatus
	Created           bool
	ConsumedRequestID string
}
