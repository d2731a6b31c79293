package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/eskolar/grading-api/internal/models"
)

// TermRepository reads the school calendar.
type TermRepository struct {
	db *sqlx.DB
}

// NewTermRepository instantiates a term repository.
func NewTermRepository(db *sqlx.DB) *TermRepository {
	return &TermRepository{db: db}
}

// Find returns the term row for an (academic_year, semester) key.
func (r *TermRepository) Find(ctx context.Context, academicYear, semester string) (*models.Term, error) {
	const query = `SELECT id, academic_year, semester, status, start_date, end_date
        FROM terms WHERE academic_year = $1 AND semester = $2`
	var term models.Term
	if err := r.db.GetContext(ctx, &term, query, academicYear, semester); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find term: %w", err)
	}
	return &term, nil
}
