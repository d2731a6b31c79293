package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/eskolar/grading-api/internal/models"
)

// AuditRepository appends to the grade audit trail.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository creates a new audit repository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create appends one audit entry.
func (r *AuditRepository) Create(ctx context.Context, entry *models.GradeAuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO grade_audit_log (id, grade_id, action_type, actor_id, actor_role,
            previous_status, new_status, notes, created_at)
        VALUES (:id, :grade_id, :action_type, :actor_id, :actor_role,
            :previous_status, :new_status, :notes, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create audit entry: %w", err)
	}
	return nil
}

// ListByGrade returns the audit trail of a grade, oldest first.
func (r *AuditRepository) ListByGrade(ctx context.Context, gradeID string) ([]models.GradeAuditEntry, error) {
	const query = `SELECT id, grade_id, action_type, actor_id, actor_role, previous_status, new_status, notes, created_at
        FROM grade_audit_log WHERE grade_id = $1 ORDER BY created_at ASC`
	var entries []models.GradeAuditEntry
	if err := r.db.SelectContext(ctx, &entries, query, gradeID); err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, nil
}
