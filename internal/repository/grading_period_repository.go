package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/eskolar/grading-api/internal/models"
)

// GradingPeriodRepository reads administrator-configured grading windows.
type GradingPeriodRepository struct {
	db *sqlx.DB
}

// NewGradingPeriodRepository creates a new grading period repository.
func NewGradingPeriodRepository(db *sqlx.DB) *GradingPeriodRepository {
	return &GradingPeriodRepository{db: db}
}

// FindFinals returns the finals-type grading period for a term.
// sql.ErrNoRows passes through untouched so callers can distinguish
// "no period configured" from a storage failure.
func (r *GradingPeriodRepository) FindFinals(ctx context.Context, academicYear, semester string) (*models.GradingPeriod, error) {
	const query = `SELECT id, academic_year, semester, period_type, start_date, end_date, status
        FROM grading_periods
        WHERE academic_year = $1 AND semester = $2 AND period_type = $3`
	var period models.GradingPeriod
	if err := r.db.GetContext(ctx, &period, query, academicYear, semester, models.PeriodTypeFinals); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find grading period: %w", err)
	}
	return &period, nil
}
