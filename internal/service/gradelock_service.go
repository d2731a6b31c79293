package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/eskolar/grading-api/internal/models"
)

type lockGradeReader interface {
	FindByID(ctx context.Context, id string) (*models.Grade, error)
}

type lockTokenReader interface {
	FindOpenTokenByGrade(ctx context.Context, gradeID string) (*models.EditRequest, error)
}

type lockTermReader interface {
	Find(ctx context.Context, academicYear, semester string) (*models.Term, error)
}

// GradeLockService decides whether a grade may currently be edited. Unlike the
// grading-period check, a storage failure here reports locked: an error must
// never accidentally permit an edit.
type GradeLockService struct {
	grades lockGradeReader
	tokens lockTokenReader
	terms  lockTermReader
	logger *zap.Logger
}

// NewGradeLockService constructs GradeLockService.
func NewGradeLockService(grades lockGradeReader, tokens lockTokenReader, terms lockTermReader, logger *zap.Logger) *GradeLockService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeLockService{grades: grades, tokens: tokens, terms: terms, logger: logger}
}

var failClosed = models.LockStatus{Locked: true, Reason: "unable to verify grade lock state"}

// IsGradeLocked evaluates the lock rules in precedence order; the first match
// wins:
//  1. an approved, incomplete edit request unlocks the grade for one edit
//  2. the explicit lock flag
//  3. approved with no edit request attached
//  4. the owning term is completed
//  5. otherwise unlocked
//
// gradeID may be empty, in which case only the term rule applies.
func (s *GradeLockService) IsGradeLocked(ctx context.Context, gradeID, subjectID, academicYear, semester string) models.LockStatus {
	if gradeID != "" {
		grade, err := s.grades.FindByID(ctx, gradeID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// no row, nothing to lock; fall through to the term rule
		case err != nil:
			s.logger.Error("grade lookup failed", zap.String("grade_id", gradeID), zap.Error(err))
			return failClosed
		default:
			token, err := s.tokens.FindOpenTokenByGrade(ctx, grade.ID)
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				s.logger.Error("edit request lookup failed", zap.String("grade_id", gradeID), zap.Error(err))
				return failClosed
			}
			if token != nil {
				return models.LockStatus{Locked: false, Reason: "edit approved, the grade is editable once"}
			}
			if grade.IsLocked {
				return models.LockStatus{Locked: true, Reason: "grade is locked"}
			}
			if grade.ApprovalStatus == models.ApprovalApproved && grade.EditRequestID == nil {
				return models.LockStatus{Locked: true, Reason: "grade is approved and locked"}
			}
		}
	}

	term, err := s.terms.Find(ctx, academicYear, semester)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		s.logger.Error("term lookup failed",
			zap.String("academic_year", academicYear),
			zap.String("semester", semester),
			zap.Error(err))
		return failClosed
	}
	if term != nil && term.Status == models.TermStatusCompleted {
		return models.LockStatus{Locked: true, Reason: "the course/semester is already completed"}
	}

	return models.LockStatus{Locked: false}
}

// ValidateGradeValue checks a submitted grade against its maximum. A missing
// or nonsensical maximum falls back to the 100-point scale.
func (s *GradeLockService) ValidateGradeValue(grade, maxPoints float64) (bool, string) {
	if maxPoints <= 0 {
		maxPoints = 100
	}
	if grade < 0 {
		return false, "grade cannot be negative"
	}
	if grade > maxPoints {
		return false, fmt.Sprintf("grade cannot exceed %g points", maxPoints)
	}
	return true, ""
}
