package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS hourly_rates (
	user_id TEXT NOT NULL,
	work_type TEXT NOT NULL,
	rate NUMERIC(10,2) NOT NULL CHECK (rate > 0),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (user_id, work_type)
);

CREATE TABLE IF NOT EXISTS equipment_rates (
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	price_per_day NUMERIC(10,2),
	price_per_hour NUMERIC(10,2),
	is_rented BOOLEAN NOT NULL DEFAULT FALSE,
	PRIMARY KEY (user_id, name)
);

CREATE TABLE IF NOT EXISTS industry_benchmarks (
	category TEXT PRIMARY KEY,
	median_value NUMERIC(12,2) NOT NULL,
	min_value NUMERIC(12,2) NOT NULL,
	max_value NUMERIC(12,2) NOT NULL,
	sample_size INTEGER NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS quotes (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	job_type TEXT NOT NULL,
	category TEXT NOT NULL,
	area NUMERIC(10,2),
	quality_level TEXT,
	complexity TEXT,
	accessibility TEXT,
	customer_provides_material BOOLEAN NOT NULL DEFAULT FALSE,
	total_before_vat NUMERIC(12,2) NOT NULL,
	deduction_type TEXT NOT NULL,
	confidence NUMERIC(4,2) NOT NULL,
	payload JSONB NOT NULL,
	status TEXT NOT NULL DEFAULT 'draft',
	created_at TIMESTAMPTZ NOT NULL,
	accepted_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_quotes_accepted_lookup ON quotes (user_id, job_type, status);
CREATE INDEX IF NOT EXISTS idx_quotes_category_status ON quotes (category, status);

CREATE TABLE IF NOT EXISTS regional_multipliers (
	location TEXT PRIMARY KEY,
	factor NUMERIC(5,3) NOT NULL CHECK (factor > 0)
);

CREATE TABLE IF NOT EXISTS seasonal_multipliers (
	month SMALLINT PRIMARY KEY CHECK (month BETWEEN 1 AND 12),
	factor NUMERIC(5,3) NOT NULL CHECK (factor > 0)
);
`

// EnsureSchema creates the pricing tables when they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2025060101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}
	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create pricing schema: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}
