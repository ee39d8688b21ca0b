package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
)

type RateRepository struct {
	db *sql.DB
}

func NewRateRepository(db *sql.DB) *RateRepository {
	return &RateRepository{db: db}
}

func (r *RateRepository) GetHourlyRates(ctx context.Context, userID string) ([]domain.HourlyRate, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT work_type, rate
FROM hourly_rates
WHERE user_id = $1
ORDER BY work_type
`, userID)
	if err != nil {
		return nil, fmt.Errorf("get hourly rates: %w", err)
	}
	defer rows.Close()

	out := make([]domain.HourlyRate, 0)
	for rows.Next() {
		var rate domain.HourlyRate
		if err := rows.Scan(&rate.WorkType, &rate.Rate); err != nil {
			return nil, fmt.Errorf("scan hourly rate: %w", err)
		}
		out = append(out, rate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hourly rates: %w", err)
	}
	return out, nil
}

func (r *RateRepository) GetEquipmentRates(ctx context.Context, userID string) ([]domain.EquipmentRate, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT name, price_per_day, price_per_hour, is_rented
FROM equipment_rates
WHERE user_id = $1
ORDER BY name
`, userID)
	if err != nil {
		return nil, fmt.Errorf("get equipment rates: %w", err)
	}
	defer rows.Close()

	out := make([]domain.EquipmentRate, 0)
	for rows.Next() {
		var (
			rate    domain.EquipmentRate
			perDay  sql.NullFloat64
			perHour sql.NullFloat64
		)
		if err := rows.Scan(&rate.Name, &perDay, &perHour, &rate.IsRented); err != nil {
			return nil, fmt.Errorf("scan equipment rate: %w", err)
		}
		rate.PricePerDay = perDay.Float64
		rate.PricePerHour = perHour.Float64
		out = append(out, rate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate equipment rates: %w", err)
	}
	return out, nil
}

// UpsertHourlyRates replaces rates for the given work types in one transaction.
func (r *RateRepository) UpsertHourlyRates(ctx context.Context, userID string, rates []domain.HourlyRate) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rates tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, rate := range rates {
		if rate.Rate <= 0 {
			return domain.WrapError(domain.ErrInvalidInput, "upsert hourly rates", fmt.Errorf("rate for %q must be positive", rate.WorkType))
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO hourly_rates (user_id, work_type, rate, updated_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (user_id, work_type) DO UPDATE SET rate = EXCLUDED.rate, updated_at = NOW()
`, userID, rate.WorkType, rate.Rate); err != nil {
			return fmt.Errorf("upsert hourly rate %s: %w", rate.WorkType, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rates tx: %w", err)
	}
	return nil
}
