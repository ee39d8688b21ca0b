package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
)

type MultiplierRepository struct {
	db *sql.DB
}

func NewMultiplierRepository(db *sql.DB) *MultiplierRepository {
	return &MultiplierRepository{db: db}
}

// GetMultipliers leaves a factor at zero when location or month has no row.
func (r *MultiplierRepository) GetMultipliers(ctx context.Context, location string, month int) (domain.Multipliers, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT
	COALESCE((SELECT factor FROM regional_multipliers WHERE location = $1), 0),
	COALESCE((SELECT factor FROM seasonal_multipliers WHERE month = $2), 0)
`, strings.ToLower(strings.TrimSpace(location)), month)

	var m domain.Multipliers
	if err := row.Scan(&m.Regional, &m.Seasonal); err != nil {
		return domain.Multipliers{}, fmt.Errorf("get multipliers: %w", err)
	}
	return m, nil
}
