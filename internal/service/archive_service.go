package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eskolar/grading-api/internal/models"
)

type archiveGradeStore interface {
	FindByID(ctx context.Context, id string) (*models.Grade, error)
	CohortProgress(ctx context.Context, teacherID, subjectID, academicYear, semester string) (total, approved int, err error)
	LockApprovedCohort(ctx context.Context, teacherID, subjectID, academicYear, semester string, lockedAt time.Time) (int64, error)
}

type archiveStore interface {
	Create(ctx context.Context, record *models.ArchivedCourse) (bool, error)
	List(ctx context.Context, academicYear, semester string) ([]models.ArchivedCourse, error)
}

// ArchiveService closes a teacher/subject/term cohort once every grade in it
// is approved: it writes one archive record (idempotently) and mass-locks the
// approved grades.
type ArchiveService struct {
	grades   archiveGradeStore
	archives archiveStore
	audit    auditRecorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewArchiveService constructs ArchiveService.
func NewArchiveService(grades archiveGradeStore, archives archiveStore, audit auditRecorder, logger *zap.Logger) *ArchiveService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArchiveService{
		grades:   grades,
		archives: archives,
		audit:    audit,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CheckAndArchiveCourse inspects the cohort containing gradeID and archives it
// when every student's final grade is approved. Safe to call repeatedly.
func (s *ArchiveService) CheckAndArchiveCourse(ctx context.Context, gradeID, actorID string) models.ArchiveResult {
	grade, err := s.grades.FindByID(ctx, gradeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ArchiveResult{Archived: false, Message: "grade not found"}
		}
		s.logger.Error("grade lookup failed", zap.String("grade_id", gradeID), zap.Error(err))
		return models.ArchiveResult{Archived: false, Message: "unable to verify the cohort"}
	}

	total, approved, err := s.grades.CohortProgress(ctx, grade.TeacherID, grade.SubjectID, grade.AcademicYear, grade.Semester)
	if err != nil {
		s.logger.Error("cohort progress failed", zap.String("grade_id", gradeID), zap.Error(err))
		return models.ArchiveResult{Archived: false, Message: "unable to verify the cohort"}
	}
	if total == 0 || approved < total {
		return models.ArchiveResult{
			Archived: false,
			Message:  fmt.Sprintf("cohort not complete (%d/%d approved)", approved, total),
		}
	}

	now := s.now()
	created, err := s.archives.Create(ctx, &models.ArchivedCourse{
		TeacherID:         grade.TeacherID,
		SubjectID:         grade.SubjectID,
		AcademicYear:      grade.AcademicYear,
		Semester:          grade.Semester,
		AllGradesApproved: true,
		TotalStudents:     total,
		ApprovedStudents:  approved,
		ArchivedAt:        now,
	})
	if err != nil {
		s.logger.Error("archive create failed", zap.String("grade_id", gradeID), zap.Error(err))
		return models.ArchiveResult{Archived: false, Message: "unable to archive the cohort"}
	}

	locked, err := s.grades.LockApprovedCohort(ctx, grade.TeacherID, grade.SubjectID, grade.AcademicYear, grade.Semester, now)
	if err != nil {
		s.logger.Error("cohort lock failed", zap.String("grade_id", gradeID), zap.Error(err))
		return models.ArchiveResult{Archived: false, Message: "unable to lock the cohort grades"}
	}

	if !created {
		return models.ArchiveResult{Archived: true, Message: "cohort already archived"}
	}

	s.logArchive(ctx, gradeID, actorID, locked)
	return models.ArchiveResult{
		Archived: true,
		Message:  fmt.Sprintf("cohort archived (%d/%d approved)", approved, total),
	}
}

// ListArchived returns archived cohorts, optionally filtered by term.
func (s *ArchiveService) ListArchived(ctx context.Context, academicYear, semester string) ([]models.ArchivedCourse, error) {
	return s.archives.List(ctx, academicYear, semester)
}

func (s *ArchiveService) logArchive(ctx context.Context, gradeID, actorID string, locked int64) {
	if s.audit == nil {
		return
	}
	prev := string(models.ApprovalApproved)
	next := string(models.ApprovalLocked)
	note := fmt.Sprintf("%d grades locked by cohort archival", locked)
	entry := &models.GradeAuditEntry{
		GradeID:        gradeID,
		ActionType:     models.GradeActionArchived,
		ActorID:        actorID,
		ActorRole:      string(models.RoleAdmin),
		PreviousStatus: &prev,
		NewStatus:      &next,
		Notes:          &note,
	}
	if err := s.audit.Create(ctx, entry); err != nil {
		s.logger.Warn("audit write failed", zap.String("grade_id", gradeID), zap.Error(err))
	}
}
