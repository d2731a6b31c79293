package models

import "time"

// Grade audit actions.
const (
	GradeActionSubmitted     = "SUBMITTED"
	GradeActionResubmitted   = "RESUBMITTED"
	GradeActionEditRequested = "EDIT_REQUESTED"
	GradeActionEditApproved  = "EDIT_APPROVED"
	GradeActionEditDenied    = "EDIT_DENIED"
	GradeActionEditCompleted = "EDIT_COMPLETED"
	GradeActionArchived      = "ARCHIVED"
)

// GradeAuditEntry is an append-only record of a grade workflow action.
type GradeAuditEntry struct {
	ID             string    `db:"id" json:"id"`
	GradeID        string    `db:"grade_id" json:"grade_id"`
	ActionType     string    `db:"action_type" json:"action_type"`
	ActorID        string    `db:"actor_id" json:"actor_id"`
	ActorRole      string    `db:"actor_role" json:"actor_role"`
	PreviousStatus *string   `db:"previous_status" json:"previous_status,omitempty"`
	NewStatus      *string   `db:"new_status" json:"new_status,omitempty"`
	Notes          *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
