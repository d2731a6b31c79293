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

const archiveColumns = `id, teacher_id, subject_id, course_id, section_id, academic_year, semester,
        all_grades_approved, total_students, approved_students, archived_at`

// ArchiveRepository persists archived cohort records.
type ArchiveRepository struct {
	db *sqlx.DB
}

// NewArchiveRepository creates a new archive repository.
func NewArchiveRepository(db *sqlx.DB) *ArchiveRepository {
	return &ArchiveRepository{db: db}
}

// FindByCohort returns the archive record for a cohort key, if any.
func (r *ArchiveRepository) FindByCohort(ctx context.Context, teacherID, subjectID, academicYear, semester string) (*models.ArchivedCourse, error) {
	query := fmt.Sprintf(`SELECT %s FROM archived_courses
        WHERE teacher_id = $1 AND subject_id = $2 AND academic_year = $3 AND semester = $4`, archiveColumns)
	var record models.ArchivedCourse
	if err := r.db.GetContext(ctx, &record, query, teacherID, subjectID, academicYear, semester); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find archive: %w", err)
	}
	return &record, nil
}

// Create inserts an archive record for a cohort. The unique constraint on the
// cohort key makes the call idempotent; it reports whether a row was written.
func (r *ArchiveRepository) Create(ctx context.Context, record *models.ArchivedCourse) (bool, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.ArchivedAt.IsZero() {
		record.ArchivedAt = time.Now().UTC()
	}
	const query = `INSERT INTO archived_courses (id, teacher_id, subject_id, course_id, section_id,
            academic_year, semester, all_grades_approved, total_students, approved_students, archived_at)
        VALUES (:id, :teacher_id, :subject_id, :course_id, :section_id,
            :academic_year, :semester, :all_grades_approved, :total_students, :approved_students, :archived_at)
        ON CONFLICT (teacher_id, subject_id, academic_year, semester) DO NOTHING`
	result, err := r.db.NamedExecContext(ctx, query, record)
	if err != nil {
		return false, fmt.Errorf("create archive: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("create archive rows: %w", err)
	}
	return affected > 0, nil
}

// List returns archived cohorts, optionally filtered by term, newest first.
func (r *ArchiveRepository) List(ctx context.Context, academicYear, semester string) ([]models.ArchivedCourse, error) {
	query := fmt.Sprintf("SELECT %s FROM archived_courses WHERE 1=1", archiveColumns)
	var args []interface{}
	if academicYear != "" {
		query += fmt.Sprintf(" AND academic_year = $%d", len(args)+1)
		args = append(args, academicYear)
	}
	if semester != "" {
		query += fmt.Sprintf(" AND semester = $%d", len(args)+1)
		args = append(args, semester)
	}
	query += " ORDER BY archived_at DESC"
	var records []models.ArchivedCourse
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list archives: %w", err)
	}
	return records, nil
}
