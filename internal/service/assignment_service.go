package service

import (
	"context"

	"go.uber.org/zap"
)

type assignmentReader interface {
	HasActiveSchedule(ctx context.Context, teacherID, subjectID, academicYear, semester string) (bool, error)
	OwnsClassroom(ctx context.Context, teacherID, classroomID string) (bool, error)
}

// AssignmentService verifies that a teacher is authorized to grade a subject.
type AssignmentService struct {
	assignments assignmentReader
	logger      *zap.Logger
}

// NewAssignmentService constructs AssignmentService.
func NewAssignmentService(assignments assignmentReader, logger *zap.Logger) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{assignments: assignments, logger: logger}
}

// IsTeacherAssignedToCourse reports whether the teacher may grade the subject
// for the term. The primary source is an active section-schedule entry; direct
// classroom ownership is the fallback when a classroom is supplied. Storage
// errors deny authorization.
func (s *AssignmentService) IsTeacherAssignedToCourse(ctx context.Context, teacherID, subjectID, classroomID, academicYear, semester string) bool {
	assigned, err := s.assignments.HasActiveSchedule(ctx, teacherID, subjectID, academicYear, semester)
	if err != nil {
		s.logger.Error("schedule assignment lookup failed",
			zap.String("teacher_id", teacherID),
			zap.String("subject_id", subjectID),
			zap.Error(err))
		return false
	}
	if assigned {
		return true
	}

	if classroomID == "" {
		return false
	}
	owns, err := s.assignments.OwnsClassroom(ctx, teacherID, classroomID)
	if err != nil {
		s.logger.Error("classroom ownership lookup failed",
			zap.String("teacher_id", teacherID),
			zap.String("classroom_id", classroomID),
			zap.Error(err))
		return false
	}
	return owns
}
