package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
)

// minBenchmarkSamples keeps a handful of accepted quotes from defining an industry range.
const minBenchmarkSamples = 5

type BenchmarkRepository struct {
	db *sql.DB
}

func NewBenchmarkRepository(db *sql.DB) *BenchmarkRepository {
	return &BenchmarkRepository{db: db}
}

// GetBenchmark returns nil without error when the category has no aggregate yet.
func (r *BenchmarkRepository) GetBenchmark(ctx context.Context, category string) (*domain.Benchmark, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT category, median_value, min_value, max_value, sample_size, updated_at
FROM industry_benchmarks
WHERE category = $1
`, category)

	var b domain.Benchmark
	if err := row.Scan(&b.Category, &b.MedianValue, &b.MinValue, &b.MaxValue, &b.SampleSize, &b.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get benchmark: %w", err)
	}
	return &b, nil
}

// RecomputeBenchmark aggregates accepted quote totals for category into the
// 10th, 50th and 90th percentile. Categories with too few samples keep their
// previous aggregate and return nil.
func (r *BenchmarkRepository) RecomputeBenchmark(ctx context.Context, category string) (*domain.Benchmark, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT
	COUNT(*),
	COALESCE(percentile_cont(0.5) WITHIN GROUP (ORDER BY total_before_vat), 0),
	COALESCE(percentile_cont(0.1) WITHIN GROUP (ORDER BY total_before_vat), 0),
	COALESCE(percentile_cont(0.9) WITHIN GROUP (ORDER BY total_before_vat), 0)
FROM quotes
WHERE category = $1 AND status = 'accepted'
`, category)

	b := domain.Benchmark{Category: category}
	if err := row.Scan(&b.SampleSize, &b.MedianValue, &b.MinValue, &b.MaxValue); err != nil {
		return nil, fmt.Errorf("aggregate benchmark: %w", err)
	}
	if b.SampleSize < minBenchmarkSamples {
		return nil, nil
	}

	if err := r.db.QueryRowContext(ctx, `
INSERT INTO industry_benchmarks (category, median_value, min_value, max_value, sample_size, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW())
ON CONFLICT (category) DO UPDATE SET
	median_value = EXCLUDED.median_value,
	min_value = EXCLUDED.min_value,
	max_value = EXCLUDED.max_value,
	sample_size = EXCLUDED.sample_size,
	updated_at = EXCLUDED.updated_at
RETURNING updated_at
`, b.Category, b.MedianValue, b.MinValue, b.MaxValue, b.SampleSize).Scan(&b.UpdatedAt); err != nil {
		return nil, fmt.Errorf("store benchmark: %w", err)
	}
	return &b, nil
}
