package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/eskolar/grading-api/internal/models"
	"github.com/eskolar/grading-api/internal/repository"
)

type periodChecker interface {
	IsFinalsPeriodActive(ctx context.Context, academicYear, semester string) models.PeriodCheck
}

type assignmentChecker interface {
	IsTeacherAssignedToCourse(ctx context.Context, teacherID, subjectID, classroomID, academicYear, semester string) bool
}

type lockChecker interface {
	IsGradeLocked(ctx context.Context, gradeID, subjectID, academicYear, semester string) models.LockStatus
	ValidateGradeValue(grade, maxPoints float64) (bool, string)
}

type submissionStore interface {
	FindFinal(ctx context.Context, studentID, subjectID, academicYear, semester string) (*models.Grade, error)
	SubmitFinal(ctx context.Context, sub models.FinalSubmission) (*models.SubmissionRecord, error)
}

type submissionTermReader interface {
	Find(ctx context.Context, academicYear, semester string) (*models.Term, error)
}

type auditLog interface {
	auditRecorder
	ListByGrade(ctx context.Context, gradeID string) ([]models.GradeAuditEntry, error)
}

// SubmitFinalGradeRequest is the teacher payload for a final-grade submission.
type SubmitFinalGradeRequest struct {
	StudentID    string  `json:"student_id" validate:"required"`
	SubjectID    string  `json:"subject_id" validate:"required"`
	ClassroomID  string  `json:"classroom_id" validate:"required"`
	Grade        float64 `json:"grade"`
	MaxPoints    float64 `json:"max_points"`
	AcademicYear string  `json:"academic_year" validate:"required"`
	Semester     string  `json:"semester" validate:"required"`
	Remarks      string  `json:"remarks"`
}

// GradeSubmissionService orchestrates final-grade submissions: it runs the
// master gate (value, assignment, term, finals window, lock), persists the
// create-or-update atomically and appends a best-effort audit entry. Storage
// errors never escape; they are logged and translated into a failed result.
type GradeSubmissionService struct {
	periods          periodChecker
	assignments      assignmentChecker
	locks            lockChecker
	grades           submissionStore
	terms            submissionTermReader
	audit            auditLog
	validator        *validator.Validate
	logger           *zap.Logger
	defaultMaxPoints float64
}

// NewGradeSubmissionService constructs GradeSubmissionService.
func NewGradeSubmissionService(periods periodChecker, assignments assignmentChecker, locks lockChecker, grades submissionStore, terms submissionTermReader, audit auditLog, validate *validator.Validate, logger *zap.Logger, defaultMaxPoints float64) *GradeSubmissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultMaxPoints <= 0 {
		defaultMaxPoints = 100
	}
	return &GradeSubmissionService{
		periods:          periods,
		assignments:      assignments,
		locks:            locks,
		grades:           grades,
		terms:            terms,
		audit:            audit,
		validator:        validate,
		logger:           logger,
		defaultMaxPoints: defaultMaxPoints,
	}
}

// SubmitFinalGrade validates and persists one teacher submission.
func (s *GradeSubmissionService) SubmitFinalGrade(ctx context.Context, teacherID string, req SubmitFinalGradeRequest) models.SubmissionResult {
	if err := s.validator.Struct(req); err != nil {
		return models.SubmissionResult{Success: false, Message: "invalid submission payload"}
	}
	if req.MaxPoints <= 0 {
		req.MaxPoints = s.defaultMaxPoints
	}

	if failures := s.canTeacherSubmitFinalGrade(ctx, teacherID, req); len(failures) > 0 {
		return models.SubmissionResult{Success: false, Message: strings.Join(failures, "; ")}
	}

	record, err := s.grades.SubmitFinal(ctx, models.FinalSubmission{
		StudentID:    req.StudentID,
		SubjectID:    req.SubjectID,
		ClassroomID:  req.ClassroomID,
		TeacherID:    teacherID,
		Grade:        req.Grade,
		MaxPoints:    req.MaxPoints,
		AcademicYear: req.AcademicYear,
		Semester:     req.Semester,
		Remarks:      optional(req.Remarks),
	})
	if err != nil {
		if errors.Is(err, repository.ErrLockedWithoutToken) {
			return models.SubmissionResult{Success: false, Message: "grade is approved and locked; request an edit before resubmitting"}
		}
		s.logger.Error("final grade submission failed",
			zap.String("teacher_id", teacherID),
			zap.String("student_id", req.StudentID),
			zap.String("subject_id", req.SubjectID),
			zap.Error(err))
		return models.SubmissionResult{Success: false, Message: "unable to save the grade, please try again"}
	}

	s.logSubmission(ctx, teacherID, record)

	message := "final grade submitted"
	if !record.Created {
		message = "final grade updated"
	}
	return models.SubmissionResult{Success: true, GradeID: record.Grade.ID, Message: message}
}

// canTeacherSubmitFinalGrade is the master gate. Every check runs and every
// failure is collected so the teacher sees the full list at once.
func (s *GradeSubmissionService) canTeacherSubmitFinalGrade(ctx context.Context, teacherID string, req SubmitFinalGradeRequest) []string {
	var failures []string

	if ok, msg := s.locks.ValidateGradeValue(req.Grade, req.MaxPoints); !ok {
		failures = append(failures, msg)
	}

	if !s.assignments.IsTeacherAssignedToCourse(ctx, teacherID, req.SubjectID, req.ClassroomID, req.AcademicYear, req.Semester) {
		failures = append(failures, "you are not assigned to this subject for the selected term")
	}

	term, err := s.terms.Find(ctx, req.AcademicYear, req.Semester)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		failures = append(failures, "the academic term does not exist")
	case err != nil:
		s.logger.Error("term lookup failed", zap.Error(err))
		failures = append(failures, "unable to verify the academic term")
	case term.Status != models.TermStatusActive:
		failures = append(failures, "the academic term is not active")
	}

	if check := s.periods.IsFinalsPeriodActive(ctx, req.AcademicYear, req.Semester); !check.Active {
		failures = append(failures, check.Message)
	}

	existing, err := s.grades.FindFinal(ctx, req.StudentID, req.SubjectID, req.AcademicYear, req.Semester)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// first submission for this key
	case err != nil:
		s.logger.Error("existing grade lookup failed", zap.Error(err))
		failures = append(failures, "unable to verify the existing grade")
	default:
		if status := s.locks.IsGradeLocked(ctx, existing.ID, req.SubjectID, req.AcademicYear, req.Semester); status.Locked {
			failures = append(failures, status.Reason)
		}
	}

	return failures
}

// AuditTrail returns the audit entries of a grade, oldest first.
func (s *GradeSubmissionService) AuditTrail(ctx context.Context, gradeID string) ([]models.GradeAuditEntry, error) {
	return s.audit.ListByGrade(ctx, gradeID)
}

func (s *GradeSubmissionService) logSubmission(ctx context.Context, teacherID string, record *models.SubmissionRecord) {
	if s.audit == nil {
		return
	}
	action := models.GradeActionSubmitted
	if !record.Created {
		action = models.GradeActionResubmitted
	}
	entry := &models.GradeAuditEntry{
		GradeID:    record.Grade.ID,
		ActionType: action,
		ActorID:    teacherID,
		ActorRole:  string(models.RoleTeacher),
	}
	if record.PreviousStatus != nil {
		v := string(*record.PreviousStatus)
		entry.PreviousStatus = &v
	}
	next := string(record.Grade.ApprovalStatus)
	entry.NewStatus = &next
	if record.ConsumedRequestID != "" {
		note := "approved edit request " + record.ConsumedRequestID + " consumed by resubmission"
		entry.Notes = &note
	}
	if err := s.audit.Create(ctx, entry); err != nil {
		s.logger.Warn("audit write failed", zap.String("grade_id", record.Grade.ID), zap.Error(err))
	}
}
