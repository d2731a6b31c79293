package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eskolar/grading-api/internal/models"
)

func newAuditRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAuditRepositoryCreateFillsDefaults(t *testing.T) {
	db, mock, cleanup := newAuditRepoMock(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	mock.ExpectExec("INSERT INTO grade_audit_log").
		WillReturnResult(sqlmock.NewResult(0, 1))

	entry := &models.GradeAuditEntry{
		GradeID:    "g1",
		ActionType: models.GradeActionSubmitted,
		ActorID:    "t1",
		ActorRole:  "TEACHER",
	}
	require.NoError(t, repo.Create(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepositoryListByGrade(t *testing.T) {
	db, mock, cleanup := newAuditRepoMock(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	rows := sqlmock.NewRows([]string{"id", "grade_id", "action_type", "actor_id", "actor_role", "previous_status", "new_status", "notes", "created_at"}).
		AddRow("e1", "g1", "SUBMITTED", "t1", "TEACHER", nil, "submitted", nil, time.Now()).
		AddRow("e2", "g1", "EDIT_REQUESTED", "t1", "TEACHER", "approved", "approved", "typo", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM grade_audit_log WHERE grade_id = $1 ORDER BY created_at ASC")).
		WithArgs("g1").
		WillReturnRows(rows)

	entries, err := repo.ListByGrade(context.Background(), "g1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.GradeActionSubmitted, entries[0].ActionType)
	assert.Equal(t, models.GradeActionEditRequested, entries[1].ActionType)
	assert.NoError(t, mock.ExpectationsWereMet())
}
