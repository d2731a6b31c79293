package models

import "time"

// EditRequestStatus tracks the unlock-request state machine.
type EditRequestStatus string

const (
	EditRequestPending   EditRequestStatus = "pending"
	EditRequestApproved  EditRequestStatus = "approved"
	EditRequestDenied    EditRequestStatus = "denied"
	EditRequestCompleted EditRequestStatus = "completed"
)

// EditRequest is a request to unlock exactly one grade for a single edit.
// At most one pending request and one approved-but-incomplete request may
// exist per grade at any time.
type EditRequest struct {
	ID              string            `db:"id" json:"id"`
	TeacherID       string            `db:"teacher_id" json:"teacher_id"`
	GradeID         string            `db:"grade_id" json:"grade_id"`
	SubjectID       string            `db:"subject_id" json:"subject_id"`
	CourseID        *string           `db:"course_id" json:"course_id,omitempty"`
	AcademicYear    string            `db:"academic_year" json:"academic_year"`
	Semester        string            `db:"semester" json:"semester"`
	RequestReason   string            `db:"request_reason" json:"request_reason"`
	Status          EditRequestStatus `db:"status" json:"status"`
	EditCompleted   bool              `db:"edit_completed" json:"edit_completed"`
	ReviewedBy      *string           `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time        `db:"reviewed_at" json:"reviewed_at,omitempty"`
	ReviewNotes     *string           `db:"review_notes" json:"review_notes,omitempty"`
	ReApprovedBy    *string           `db:"re_approved_by" json:"re_approved_by,omitempty"`
	ReApprovedAt    *time.Time        `db:"re_approved_at" json:"re_approved_at,omitempty"`
	EditCompletedAt *time.Time        `db:"edit_completed_at" json:"edit_completed_at,omitempty"`
	CreatedAt       time.Time         `db:"created_at" json:"created_at"`
}

// EditRequestFilter narrows edit-request listings.
type EditRequestFilter struct {
	TeacherID string
	GradeID   string
	Status    EditRequestStatus
}
