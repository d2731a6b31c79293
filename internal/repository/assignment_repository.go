package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/eskolar/grading-api/internal/models"
)

// AssignmentRepository answers teacher-to-course authorization lookups.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new assignment repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// HasActiveSchedule reports whether an active section-schedule entry binds the
// teacher to the subject for the term.
func (r *AssignmentRepository) HasActiveSchedule(ctx context.Context, teacherID, subjectID, academicYear, semester string) (bool, error) {
	var one int
	err := r.db.GetContext(ctx, &one,
		`SELECT 1 FROM section_schedules
         WHERE teacher_id = $1 AND subject_id = $2 AND academic_year = $3 AND semester = $4 AND status = $5
         LIMIT 1`,
		teacherID, subjectID, academicYear, semester, models.ScheduleStatusActive)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("schedule lookup: %w", err)
	}
	return true, nil
}

// OwnsClassroom reports whether the teacher directly owns the classroom.
func (r *AssignmentRepository) OwnsClassroom(ctx context.Context, teacherID, classroomID string) (bool, error) {
	var one int
	err := r.db.GetContext(ctx, &one,
		`SELECT 1 FROM classrooms WHERE id = $1 AND teacher_id = $2 LIMIT 1`,
		classroomID, teacherID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("classroom lookup: %w", err)
	}
	return true, nil
}
