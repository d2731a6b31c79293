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

func newTermRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTermRepositoryFind(t *testing.T) {
	db, mock, cleanup := newTermRepoMock(t)
	defer cleanup()
	repo := NewTermRepository(db)

	rows := sqlmock.NewRows([]string{"id", "academic_year", "semester", "status", "start_date", "end_date"}).
		AddRow("term1", "2025-2026", "1", "active", time.Now().Add(-30*24*time.Hour), time.Now().Add(60*24*time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("FROM terms WHERE academic_year = $1 AND semester = $2")).
		WithArgs("2025-2026", "1").
		WillReturnRows(rows)

	term, err := repo.Find(context.Background(), "2025-2026", "1")
	require.NoError(t, err)
	assert.Equal(t, models.TermStatusActive, term.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTermRepositoryFindMissing(t *testing.T) {
	db, mock, cleanup := newTermRepoMock(t)
	defer cleanup()
	repo := NewTermRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM terms")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "academic_year", "semester", "status", "start_date", "end_date"}))

	_, err := repo.Find(context.Background(), "2030-2031", "1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
