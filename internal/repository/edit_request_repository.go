package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/eskolar/grading-api/internal/models"
)

const editRequestColumns = `id, teacher_id, grade_id, subject_id, course_id, academic_year, semester,
        request_reason, status, edit_completed, reviewed_by, reviewed_at, review_notes,
        re_approved_by, re_approved_at, edit_completed_at, created_at`

// EditRequestRepository persists the unlock-request workflow. The approve and
// complete transitions also touch the grades table; both tables change inside
// one transaction so the single-use unlock token can never dangle.
type EditRequestRepository struct {
	db *sqlx.DB
}

// NewEditRequestRepository creates a new edit request repository.
func NewEditRequestRepository(db *sqlx.DB) *EditRequestRepository {
	return &EditRequestRepository{db: db}
}

// Create inserts a pending edit request.
func (r *EditRequestRepository) Create(ctx context.Context, req *models.EditRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	req.Status = models.EditRequestPending
	const query = `INSERT INTO grade_edit_requests (id, teacher_id, grade_id, subject_id, course_id,
            academic_year, semester, request_reason, status, edit_completed, created_at)
        VALUES (:id, :teacher_id, :grade_id, :subject_id, :course_id,
            :academic_year, :semester, :request_reason, :status, FALSE, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create edit request: %w", err)
	}
	return nil
}

// FindByID returns a single edit request.
func (r *EditRequestRepository) FindByID(ctx context.Context, id string) (*models.EditRequest, error) {
	query := fmt.Sprintf("SELECT %s FROM grade_edit_requests WHERE id = $1", editRequestColumns)
	var req models.EditRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find edit request: %w", err)
	}
	return &req, nil
}

// FindPendingByGrade returns the pending request for a grade, if any.
func (r *EditRequestRepository) FindPendingByGrade(ctx context.Context, gradeID string) (*models.EditRequest, error) {
	return r.findByGradeAndStatus(ctx, gradeID, models.EditRequestPending, false)
}

// FindOpenTokenByGrade returns the approved-but-incomplete request for a
// grade, if any. This is the single-use unlock token.
func (r *EditRequestRepository) FindOpenTokenByGrade(ctx context.Context, gradeID string) (*models.EditRequest, error) {
	return r.findByGradeAndStatus(ctx, gradeID, models.EditRequestApproved, true)
}

func (r *EditRequestRepository) findByGradeAndStatus(ctx context.Context, gradeID string, status models.EditRequestStatus, incompleteOnly bool) (*models.EditRequest, error) {
	query := fmt.Sprintf("SELECT %s FROM grade_edit_requests WHERE grade_id = $1 AND status = $2", editRequestColumns)
	if incompleteOnly {
		query += " AND edit_completed = FALSE"
	}
	query += " LIMIT 1"
	var req models.EditRequest
	if err := r.db.GetContext(ctx, &req, query, gradeID, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find edit request by grade: %w", err)
	}
	return &req, nil
}

// List returns edit requests matching the filter, newest first.
func (r *EditRequestRepository) List(ctx context.Context, filter models.EditRequestFilter) ([]models.EditRequest, error) {
	query := fmt.Sprintf("SELECT %s FROM grade_edit_requests WHERE 1=1", editRequestColumns)
	var conditions []string
	var args []interface{}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.GradeID != "" {
		conditions = append(conditions, fmt.Sprintf("grade_id = $%d", len(args)+1))
		args = append(args, filter.GradeID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"
	var requests []models.EditRequest
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, fmt.Errorf("list edit requests: %w", err)
	}
	return requests, nil
}

// Approve moves a pending request to approved and clears the lock on the
// target grade, stamping edit_request_id on it. Returns sql.ErrNoRows when the
// request is not pending anymore.
func (r *EditRequestRepository) Approve(ctx context.Context, requestID, adminID string, notes *string, reviewedAt time.Time) (*models.EditRequest, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin approve: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	query := fmt.Sprintf(`UPDATE grade_edit_requests
        SET status = $1, reviewed_by = $2, reviewed_at = $3, review_notes = $4
        WHERE id = $5 AND status = $6
        RETURNING %s`, editRequestColumns)
	var req models.EditRequest
	err = tx.GetContext(ctx, &req, query,
		models.EditRequestApproved, adminID, reviewedAt, notes, requestID, models.EditRequestPending)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("approve edit request: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE grades SET is_locked = FALSE, edit_request_id = $1, updated_at = $2 WHERE id = $3`,
		req.ID, reviewedAt, req.GradeID)
	if err != nil {
		return nil, fmt.Errorf("unlock grade: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit approve: %w", err)
	}
	return &req, nil
}

// Deny moves a pending request to denied; the grade's lock state is untouched.
func (r *EditRequestRepository) Deny(ctx context.Context, requestID, adminID string, notes *string, reviewedAt time.Time) (*models.EditRequest, error) {
	query := fmt.Sprintf(`UPDATE grade_edit_requests
        SET status = $1, reviewed_by = $2, reviewed_at = $3, review_notes = $4
        WHERE id = $5 AND status = $6
        RETURNING %s`, editRequestColumns)
	var req models.EditRequest
	err := r.db.GetContext(ctx, &req, query,
		models.EditRequestDenied, adminID, reviewedAt, notes, requestID, models.EditRequestPending)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("deny edit request: %w", err)
	}
	return &req, nil
}

// Complete closes the open token for a grade and re-locks the grade as
// approved, restoring the "approved implies locked" invariant. Returns
// sql.ErrNoRows when no approved-and-incomplete request exists for the grade.
func (r *EditRequestRepository) Complete(ctx context.Context, gradeID, adminID string, completedAt time.Time) (*models.EditRequest, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin complete: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	query := fmt.Sprintf(`UPDATE grade_edit_requests
        SET status = $1, edit_completed = TRUE, edit_completed_at = $2, re_approved_by = $3, re_approved_at = $2
        WHERE grade_id = $4 AND status = $5 AND edit_completed = FALSE
        RETURNING %s`, editRequestColumns)
	var req models.EditRequest
	err = tx.GetContext(ctx, &req, query,
		models.EditRequestCompleted, completedAt, adminID, gradeID, models.EditRequestApproved)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("complete edit request: %w", err)
	}

	_, err = tx.ExecContext(ctx, `UPDATE grades
        SET is_locked = TRUE, approval_status = $1, approved_by = $2, approved_at = $3,
            locked_at = $3, edit_request_id = NULL, updated_at = $3
        WHERE id = $4`,
		models.ApprovalApproved, adminID, completedAt, gradeID)
	if err != nil {
		return nil, fmt.Errorf("relock grade: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit complete: %w", err)
	}
	return &req, nil
}
