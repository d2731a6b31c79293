package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eskolar/grading-api/internal/models"
)

func newEditRequestRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var editRequestRows = []string{
	"id", "teacher_id", "grade_id", "subject_id", "course_id", "academic_year", "semester",
	"request_reason", "status", "edit_completed", "reviewed_by", "reviewed_at", "review_notes",
	"re_approved_by", "re_approved_at", "edit_completed_at", "created_at",
}

func addEditRequestRow(rows *sqlmock.Rows, id string, status models.EditRequestStatus, completed bool) *sqlmock.Rows {
	return rows.AddRow(id, "t1", "g1", "sub1", nil, "2025-2026", "1",
		"typo in the entered value", status, completed, nil, nil, nil, nil, nil, nil, time.Now())
}

func TestEditRequestRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newEditRequestRepoMock(t)
	defer cleanup()
	repo := NewEditRequestRepository(db)

	mock.ExpectExec("INSERT INTO grade_edit_requests").
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := &models.EditRequest{
		TeacherID:     "t1",
		GradeID:       "g1",
		SubjectID:     "sub1",
		AcademicYear:  "2025-2026",
		Semester:      "1",
		RequestReason: "typo in the entered value",
	}
	require.NoError(t, repo.Create(context.Background(), req))
	assert.NotEmpty(t, req.ID)
	assert.Equal(t, models.EditRequestPending, req.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEditRequestRepositoryFindOpenTokenByGrade(t *testing.T) {
	db, mock, cleanup := newEditRequestRepoMock(t)
	defer cleanup()
	repo := NewEditRequestRepository(db)

	rows := addEditRequestRow(sqlmock.NewRows(editRequestRows), "req1", models.EditRequestApproved, false)
	mock.ExpectQuery(regexp.QuoteMeta("AND edit_completed = FALSE LIMIT 1")).
		WithArgs("g1", "approved").
		WillReturnRows(rows)

	token, err := repo.FindOpenTokenByGrade(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, "req1", token.ID)
	assert.False(t, token.EditCompleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEditRequestRepositoryApproveUnlocksGrade(t *testing.T) {
	db, mock, cleanup := newEditRequestRepoMock(t)
	defer cleanup()
	repo := NewEditRequestRepository(db)

	reviewedAt := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE grade_edit_requests").
		WithArgs("approved", "a1", reviewedAt, nil, "req1", "pending").
		WillReturnRows(addEditRequestRow(sqlmock.NewRows(editRequestRows), "req1", models.EditRequestApproved, false))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE grades SET is_locked = FALSE")).
		WithArgs("req1", reviewedAt, "g1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	approved, err := repo.Approve(context.Background(), "req1", "a1", nil, reviewedAt)
	require.NoError(t, err)
	assert.Equal(t, models.EditRequestApproved, approved.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEditRequestRepositoryApproveNotPending(t *testing.T) {
	db, mock, cleanup := newEditRequestRepoMock(t)
	defer cleanup()
	repo := NewEditRequestRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE grade_edit_requests").
		WillReturnRows(sqlmock.NewRows(editRequestRows))
	mock.ExpectRollback()

	_, err := repo.Approve(context.Background(), "req1", "a1", nil, time.Now().UTC())
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEditRequestRepositoryDeny(t *testing.T) {
	db, mock, cleanup := newEditRequestRepoMock(t)
	defer cleanup()
	repo := NewEditRequestRepository(db)

	reviewedAt := time.Now().UTC()
	notes := "value matches the submitted roster"
	rows := addEditRequestRow(sqlmock.NewRows(editRequestRows), "req1", models.EditRequestDenied, false)
	mock.ExpectQuery("UPDATE grade_edit_requests").
		WithArgs("denied", "a1", reviewedAt, &notes, "req1", "pending").
		WillReturnRows(rows)

	denied, err := repo.Deny(context.Background(), "req1", "a1", &notes, reviewedAt)
	require.NoError(t, err)
	assert.Equal(t, models.EditRequestDenied, denied.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEditRequestRepositoryCompleteRelocksGrade(t *testing.T) {
	db, mock, cleanup := newEditRequestRepoMock(t)
	defer cleanup()
	repo := NewEditRequestRepository(db)

	completedAt := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE grade_edit_requests").
		WithArgs("completed", completedAt, "a1", "g1", "approved").
		WillReturnRows(addEditRequestRow(sqlmock.NewRows(editRequestRows), "req1", models.EditRequestCompleted, true))
	mock.ExpectExec(regexp.QuoteMeta("SET is_locked = TRUE")).
		WithArgs("approved", "a1", completedAt, "g1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	completed, err := repo.Complete(context.Background(), "g1", "a1", completedAt)
	require.NoError(t, err)
	assert.Equal(t, models.EditRequestCompleted, completed.Status)
	assert.True(t, completed.EditCompleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEditRequestRepositoryCompleteWithoutOpenToken(t *testing.T) {
	db, mock, cleanup := newEditRequestRepoMock(t)
	defer cleanup()
	repo := NewEditRequestRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE grade_edit_requests").
		WillReturnRows(sqlmock.NewRows(editRequestRows))
	mock.ExpectRollback()

	_, err := repo.Complete(context.Background(), "g1", "a1", time.Now().UTC())
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEditRequestRepositoryListFiltersByTeacherAndStatus(t *testing.T) {
	db, mock, cleanup := newEditRequestRepoMock(t)
	defer cleanup()
	repo := NewEditRequestRepository(db)

	rows := addEditRequestRow(sqlmock.NewRows(editRequestRows), "req1", models.EditRequestPending, false)
	mock.ExpectQuery(regexp.QuoteMeta("teacher_id = $1 AND status = $2 ORDER BY created_at DESC")).
		WithArgs("t1", "pending").
		WillReturnRows(rows)

	list, err := repo.List(context.Background(), models.EditRequestFilter{TeacherID: "t1", Status: models.EditRequestPending})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
