package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/eskolar/grading-api/internal/models"
	appErrors "github.com/eskolar/grading-api/pkg/errors"
)

type editRequestStore interface {
	Create(ctx context.Context, req *models.EditRequest) error
	FindByID(ctx context.Context, id string) (*models.EditRequest, error)
	FindPendingByGrade(ctx context.Context, gradeID string) (*models.EditRequest, error)
	FindOpenTokenByGrade(ctx context.Context, gradeID string) (*models.EditRequest, error)
	List(ctx context.Context, filter models.EditRequestFilter) ([]models.EditRequest, error)
	Approve(ctx context.Context, requestID, adminID string, notes *string, reviewedAt time.Time) (*models.EditRequest, error)
	Deny(ctx context.Context, requestID, adminID string, notes *string, reviewedAt time.Time) (*models.EditRequest, error)
	Complete(ctx context.Context, gradeID, adminID string, completedAt time.Time) (*models.EditRequest, error)
}

type editRequestGradeReader interface {
	FindByID(ctx context.Context, id string) (*models.Grade, error)
}

type auditRecorder interface {
	Create(ctx context.Context, entry *models.GradeAuditEntry) error
}

// CreateEditRequestRequest is the teacher payload asking to unlock one grade.
type CreateEditRequestRequest struct {
	GradeID string `json:"grade_id" validate:"required"`
	Reason  string `json:"reason" validate:"required"`
}

// ReviewEditRequestRequest carries optional admin notes on approve/deny.
type ReviewEditRequestRequest struct {
	Notes string `json:"notes"`
}

// EditRequestService manages the request -> approve/deny -> single-use unlock
// -> completion -> re-lock cycle, the only sanctioned path to modify a locked
// or approved grade.
type EditRequestService struct {
	requests  editRequestStore
	grades    editRequestGradeReader
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewEditRequestService constructs EditRequestService.
func NewEditRequestService(requests editRequestStore, grades editRequestGradeReader, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *EditRequestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EditRequestService{
		requests:  requests,
		grades:    grades,
		audit:     audit,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create files a pending edit request for a locked grade owned by the teacher.
func (s *EditRequestService) Create(ctx context.Context, teacherID string, req CreateEditRequestRequest) (*models.EditRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid edit request payload")
	}

	grade, err := s.grades.FindByID(ctx, req.GradeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
	}
	if grade.TeacherID != teacherID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "grade does not belong to you")
	}

	locked := grade.IsLocked ||
		grade.ApprovalStatus == models.ApprovalApproved ||
		grade.ApprovalStatus == models.ApprovalLocked
	if !locked {
		return nil, appErrors.Clone(appErrors.ErrValidation, "grade is not locked; edit it directly instead of requesting an unlock")
	}

	if _, err := s.requests.FindPendingByGrade(ctx, grade.ID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an edit request for this grade is already pending review")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check pending requests")
	}

	if _, err := s.requests.FindOpenTokenByGrade(ctx, grade.ID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an approved edit request is already open for this grade; complete the edit first")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check open requests")
	}

	request := &models.EditRequest{
		TeacherID:     teacherID,
		GradeID:       grade.ID,
		SubjectID:     grade.SubjectID,
		AcademicYear:  grade.AcademicYear,
		Semester:      grade.Semester,
		RequestReason: req.Reason,
		CreatedAt:     s.now(),
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create edit request")
	}

	s.logAction(ctx, grade.ID, models.GradeActionEditRequested, teacherID, models.RoleTeacher, grade.ApprovalStatus, grade.ApprovalStatus, &req.Reason)
	return request, nil
}

// Approve grants the single-use unlock: the request moves to approved and the
// grade's lock flag is cleared with the request stamped on it.
func (s *EditRequestService) Approve(ctx context.Context, requestID, adminID string, req ReviewEditRequestRequest) (*models.EditRequest, error) {
	notes := optional(req.Notes)
	approved, err := s.requests.Approve(ctx, requestID, adminID, notes, s.now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.reviewConflict(ctx, requestID, "only pending edit requests can be approved")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve edit request")
	}

	s.logAction(ctx, approved.GradeID, models.GradeActionEditApproved, adminID, models.RoleAdmin, "", "", notes)
	return approved, nil
}

// Deny closes a pending request without touching the grade's lock state.
func (s *EditRequestService) Deny(ctx context.Context, requestID, adminID string, req ReviewEditRequestRequest) (*models.EditRequest, error) {
	notes := optional(req.Notes)
	denied, err := s.requests.Deny(ctx, requestID, adminID, notes, s.now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.reviewConflict(ctx, requestID, "only pending edit requests can be denied")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deny edit request")
	}

	s.logAction(ctx, denied.GradeID, models.GradeActionEditDenied, adminID, models.RoleAdmin, "", "", notes)
	return denied, nil
}

// Complete closes the open unlock token for a grade after the edit happened
// and re-locks the grade as approved.
func (s *EditRequestService) Complete(ctx context.Context, gradeID, adminID string) (*models.EditRequest, error) {
	completed, err := s.requests.Complete(ctx, gradeID, adminID, s.now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "no approved edit request is open for this grade")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to complete edit request")
	}

	s.logAction(ctx, gradeID, models.GradeActionEditCompleted, adminID, models.RoleAdmin, "", models.ApprovalApproved, nil)
	return completed, nil
}

// List returns edit requests matching the filter.
func (s *EditRequestService) List(ctx context.Context, filter models.EditRequestFilter) ([]models.EditRequest, error) {
	requests, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list edit requests")
	}
	return requests, nil
}

func (s *EditRequestService) reviewConflict(ctx context.Context, requestID, message string) error {
	if _, err := s.requests.FindByID(ctx, requestID); errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "edit request not found")
	}
	return appErrors.Clone(appErrors.ErrConflict, message)
}

// logAction appends to the grade audit trail; failures are logged, never
// surfaced, so the primary operation cannot be failed by its audit write.
func (s *EditRequestService) logAction(ctx context.Context, gradeID, action, actorID string, role models.UserRole, prev, next models.ApprovalStatus, notes *string) {
	if s.audit == nil {
		return
	}
	entry := &models.GradeAuditEntry{
		GradeID:    gradeID,
		ActionType: action,
		ActorID:    actorID,
		ActorRole:  string(role),
		Notes:      notes,
	}
	if prev != "" {
		v := string(prev)
		entry.PreviousStatus = &v
	}
	if next != "" {
		v := string(next)
		entry.NewStatus = &v
	}
	if err := s.audit.Create(ctx, entry); err != nil {
		s.logger.Warn("audit write failed", zap.String("grade_id", gradeID), zap.String("action", action), zap.Error(err))
	}
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
