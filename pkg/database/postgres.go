package database

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/eskolar/grading-api/pkg/config"
)

// NewPostgres returns a configured PostgreSQL client.
func NewPostgres(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// gradingTables are the tables the workflow assumes present. The legacy
// application probed column existence on every call; here the schema is
// verified once at startup and the process refuses to boot without it.
var gradingTables = []string{
	"grades",
	"grading_periods",
	"grade_edit_requests",
	"grade_audit_log",
	"archived_courses",
	"section_schedules",
	"classrooms",
	"terms",
}

// VerifySchema checks that every table the grading workflow depends on exists.
func VerifySchema(db *sqlx.DB) error {
	for _, table := range gradingTables {
		var regclass *string
		if err := db.Get(&regclass, "SELECT to_regclass($1)", table); err != nil {
			return fmt.Errorf("verify schema: %w", err)
		}
		if regclass == nil {
			return fmt.Errorf("verify schema: required table %q is missing", table)
		}
	}
	return nil
}
