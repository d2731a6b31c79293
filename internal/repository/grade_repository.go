package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/eskolar/grading-api/internal/models"
)

// ErrLockedWithoutToken is returned when a submission targets a locked or
// approved grade that has no approved-and-incomplete edit request attached.
var ErrLockedWithoutToken = errors.New("grade is locked and no approved edit request is open")

const gradeColumns = `id, student_id, subject_id, classroom_id, teacher_id, grade, grade_type, max_points,
        academic_year, semester, remarks, approval_status, is_locked, locked_at, approved_by, approved_at,
        submitted_at, edit_request_id, updated_at`

// GradeRepository handles final-grade persistence.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository creates a new grade repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// FindByID returns a single grade row.
func (r *GradeRepository) FindByID(ctx context.Context, id string) (*models.Grade, error) {
	query := fmt.Sprintf("SELECT %s FROM grades WHERE id = $1", gradeColumns)
	var grade models.Grade
	if err := r.db.GetContext(ctx, &grade, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find grade: %w", err)
	}
	return &grade, nil
}

// FindFinal returns the final grade row for a student/subject/term, if any.
func (r *GradeRepository) FindFinal(ctx context.Context, studentID, subjectID, academicYear, semester string) (*models.Grade, error) {
	query := fmt.Sprintf(`SELECT %s FROM grades
        WHERE student_id = $1 AND subject_id = $2 AND academic_year = $3 AND semester = $4 AND grade_type = $5`, gradeColumns)
	var grade models.Grade
	if err := r.db.GetContext(ctx, &grade, query, studentID, subjectID, academicYear, semester, models.GradeTypeFinal); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find final grade: %w", err)
	}
	return &grade, nil
}

// SubmitFinal inserts or updates the final grade for the submission key inside
// one transaction. The duplicate check, the lock check and the consumption of
// an open edit request all happen against the same row-locked snapshot, so two
// racing submissions for the same key serialize on the SELECT ... FOR UPDATE
// and the unique constraint on (student_id, subject_id, classroom_id,
// grade_type) remains the authoritative dedup.
func (r *GradeRepository) SubmitFinal(ctx context.Context, sub models.FinalSubmission) (*models.SubmissionRecord, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin submission: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()

	existingQuery := fmt.Sprintf(`SELECT %s FROM grades
        WHERE student_id = $1 AND subject_id = $2 AND academic_year = $3 AND semester = $4 AND grade_type = $5
        FOR UPDATE`, gradeColumns)
	var existing models.Grade
	err = tx.GetContext(ctx, &existing, existingQuery, sub.StudentID, sub.SubjectID, sub.AcademicYear, sub.Semester, models.GradeTypeFinal)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		record, insertErr := r.insertFinal(ctx, tx, sub, now)
		if insertErr != nil {
			return nil, insertErr
		}
		if commitErr := tx.Commit(); commitErr != nil {
			return nil, fmt.Errorf("commit submission: %w", commitErr)
		}
		return record, nil
	case err != nil:
		return nil, fmt.Errorf("lookup existing grade: %w", err)
	}

	var tokenID string
	tokenErr := tx.GetContext(ctx, &tokenID,
		`SELECT id FROM grade_edit_requests WHERE grade_id = $1 AND status = $2 AND edit_completed = FALSE LIMIT 1`,
		existing.ID, models.EditRequestApproved)
	hasToken := tokenErr == nil
	if tokenErr != nil && !errors.Is(tokenErr, sql.ErrNoRows) {
		return nil, fmt.Errorf("lookup edit request: %w", tokenErr)
	}

	immutable := existing.IsLocked ||
		existing.ApprovalStatus == models.ApprovalApproved ||
		existing.ApprovalStatus == models.ApprovalLocked
	if immutable && !hasToken {
		return nil, ErrLockedWithoutToken
	}

	prev := existing.ApprovalStatus
	_, err = tx.ExecContext(ctx, `UPDATE grades
        SET grade = $1, max_points = $2, remarks = $3, approval_status = $4,
            is_locked = FALSE, edit_request_id = NULL, submitted_at = $5, updated_at = $5
        WHERE id = $6`,
		sub.Grade, sub.MaxPoints, sub.Remarks, models.ApprovalSubmitted, now, existing.ID)
	if err != nil {
		return nil, fmt.Errorf("update grade: %w", err)
	}

	consumed := ""
	if hasToken {
		// The submission itself is the one sanctioned edit; close the token here
		// so no second edit can ride on the same approval.
		_, err = tx.ExecContext(ctx, `UPDATE grade_edit_requests
            SET status = $1, edit_completed = TRUE, edit_completed_at = $2
            WHERE id = $3`,
			models.EditRequestCompleted, now, tokenID)
		if err != nil {
			return nil, fmt.Errorf("consume edit request: %w", err)
		}
		consumed = tokenID
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit submission: %w", err)
	}

	updated := existing
	updated.Grade = sub.Grade
	updated.MaxPoints = sub.MaxPoints
	updated.Remarks = sub.Remarks
	updated.ApprovalStatus = models.ApprovalSubmitted
	updated.IsLocked = false
	updated.EditRequestID = nil
	updated.SubmittedAt = &now
	updated.UpdatedAt = now
	return &models.SubmissionRecord{Grade: &updated, PreviousStatus: &prev, ConsumedRequestID: consumed}, nil
}

func (r *GradeRepository) insertFinal(ctx context.Context, tx *sqlx.Tx, sub models.FinalSubmission, now time.Time) (*models.SubmissionRecord, error) {
	grade := models.Grade{
		ID:             uuid.NewString(),
		StudentID:      sub.StudentID,
		SubjectID:      sub.SubjectID,
		ClassroomID:    sub.ClassroomID,
		TeacherID:      sub.TeacherID,
		Grade:          sub.Grade,
		GradeType:      models.GradeTypeFinal,
		MaxPoints:      sub.MaxPoints,
		AcademicYear:   sub.AcademicYear,
		Semester:       sub.Semester,
		Remarks:        sub.Remarks,
		ApprovalStatus: models.ApprovalSubmitted,
		SubmittedAt:    &now,
		UpdatedAt:      now,
	}
	const query = `INSERT INTO grades (id, student_id, subject_id, classroom_id, teacher_id, grade, grade_type, max_points,
            academic_year, semester, remarks, approval_status, is_locked, submitted_at, updated_at)
        VALUES (:id, :student_id, :subject_id, :classroom_id, :teacher_id, :grade, :grade_type, :max_points,
            :academic_year, :semester, :remarks, :approval_status, FALSE, :submitted_at, :updated_at)
        ON CONFLICT (student_id, subject_id, classroom_id, grade_type)
        DO UPDATE SET grade = EXCLUDED.grade, max_points = EXCLUDED.max_points, remarks = EXCLUDED.remarks,
            approval_status = EXCLUDED.approval_status, submitted_at = EXCLUDED.submitted_at, updated_at = EXCLUDED.updated_at`
	if _, err := tx.NamedExecContext(ctx, query, grade); err != nil {
		return nil, fmt.Errorf("insert grade: %w", err)
	}
	return &models.SubmissionRecord{Grade: &grade, Created: true}, nil
}

// CohortProgress counts total vs approved final grades for a teacher/subject/term cohort.
func (r *GradeRepository) CohortProgress(ctx context.Context, teacherID, subjectID, academicYear, semester string) (total, approved int, err error) {
	row := r.db.QueryRowxContext(ctx, `SELECT COUNT(*),
            COUNT(*) FILTER (WHERE approval_status = $5)
        FROM grades
        WHERE teacher_id = $1 AND subject_id = $2 AND academic_year = $3 AND semester = $4 AND grade_type = $6`,
		teacherID, subjectID, academicYear, semester, models.ApprovalApproved, models.GradeTypeFinal)
	if err := row.Scan(&total, &approved); err != nil {
		return 0, 0, fmt.Errorf("cohort progress: %w", err)
	}
	return total, approved, nil
}

// LockApprovedCohort flips every approved final grade of the cohort to locked.
// Rows in other statuses are left untouched.
func (r *GradeRepository) LockApprovedCohort(ctx context.Context, teacherID, subjectID, academicYear, semester string, lockedAt time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE grades
        SET is_locked = TRUE, approval_status = $5, locked_at = $6, updated_at = $6
        WHERE teacher_id = $1 AND subject_id = $2 AND academic_year = $3 AND semester = $4
          AND grade_type = $7 AND approval_status = $8`,
		teacherID, subjectID, academicYear, semester, models.ApprovalLocked, lockedAt,
		models.GradeTypeFinal, models.ApprovalApproved)
	if err != nil {
		return 0, fmt.Errorf("lock cohort: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("lock cohort rows: %w", err)
	}
	return affected, nil
}
