package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
	"github.com/kirillkom/quote-assistant/internal/core/jobs"
)

const (
	quoteStatusDraft    = "draft"
	quoteStatusAccepted = "accepted"

	similarQuotesLimit = 50
)

type QuoteRepository struct {
	db       *sql.DB
	registry *jobs.Registry
}

func NewQuoteRepository(db *sql.DB, registry *jobs.Registry) *QuoteRepository {
	if registry == nil {
		registry = jobs.NewRegistry()
	}
	return &QuoteRepository{db: db, registry: registry}
}

// RecordGenerated stores a generated quote as a draft owned by userID.
func (r *QuoteRepository) RecordGenerated(ctx context.Context, userID string, quote domain.Quote, interp domain.Interpretation) error {
	payload, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("encode quote payload: %w", err)
	}
	var area sql.NullFloat64
	if interp.Area != nil {
		area = sql.NullFloat64{Float64: *interp.Area, Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO quotes (
	id, user_id, job_type, category, area, quality_level, complexity, accessibility,
	customer_provides_material, total_before_vat, deduction_type, confidence, payload, status, created_at
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
ON CONFLICT (id) DO NOTHING
`,
		quote.ID,
		userID,
		quote.JobType,
		r.registry.Find(quote.JobType).Category,
		area,
		string(interp.QualityLevel),
		string(interp.Complexity),
		string(interp.Accessibility),
		interp.CustomerProvidesMaterial,
		quote.Summary.TotalBeforeVAT,
		string(quote.DeductionType),
		quote.Confidence,
		payload,
		quoteStatusDraft,
		quote.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record generated quote: %w", err)
	}
	return nil
}

// MarkAccepted moves a draft into the accepted history that feeds confidence
// and benchmarks, returning the row the acceptance event is built from.
func (r *QuoteRepository) MarkAccepted(ctx context.Context, userID, quoteID string, at time.Time) (domain.AcceptedQuote, error) {
	accepted := domain.AcceptedQuote{QuoteID: quoteID, UserID: userID, AcceptedAt: at.UTC()}
	var deduction string
	err := r.db.QueryRowContext(ctx, `
UPDATE quotes
SET status = $3, accepted_at = $4
WHERE user_id = $1 AND id = $2 AND status = $5
RETURNING job_type, category, total_before_vat, deduction_type, confidence, created_at
`, userID, quoteID, quoteStatusAccepted, accepted.AcceptedAt, quoteStatusDraft).Scan(
		&accepted.JobType,
		&accepted.Category,
		&accepted.TotalBeforeVAT,
		&deduction,
		&accepted.Confidence,
		&accepted.GeneratedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.AcceptedQuote{}, domain.WrapError(domain.ErrNotFound, "accept quote", fmt.Errorf("draft quote not found: id=%s", quoteID))
	}
	if err != nil {
		return domain.AcceptedQuote{}, fmt.Errorf("accept quote: %w", err)
	}
	accepted.DeductionType = domain.DeductionType(deduction)
	return accepted, nil
}

func (r *QuoteRepository) FindSimilarAcceptedQuotes(ctx context.Context, userID, jobType string, areaRange domain.AreaRange) ([]domain.HistoricalQuote, error) {
	query := `
SELECT id, job_type, COALESCE(area, 0), COALESCE(quality_level, ''), COALESCE(complexity, ''),
	COALESCE(accessibility, ''), customer_provides_material, total_before_vat, accepted_at
FROM quotes
WHERE user_id = $1 AND job_type = $2 AND status = 'accepted'
`
	args := []any{userID, jobType}
	if !areaRange.Open() {
		query += "AND area BETWEEN $3 AND $4\n"
		args = append(args, areaRange.Min, areaRange.Max)
	}
	query += fmt.Sprintf("ORDER BY accepted_at DESC\nLIMIT %d", similarQuotesLimit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find similar quotes: %w", err)
	}
	defer rows.Close()

	out := make([]domain.HistoricalQuote, 0)
	for rows.Next() {
		var (
			q             domain.HistoricalQuote
			quality       string
			complexity    string
			accessibility string
		)
		if err := rows.Scan(&q.ID, &q.JobType, &q.Area, &quality, &complexity, &accessibility, &q.CustomerProvidesMaterial, &q.TotalBeforeVAT, &q.AcceptedAt); err != nil {
			return nil, fmt.Errorf("scan similar quote: %w", err)
		}
		q.QualityLevel = domain.QualityLevel(quality)
		q.Complexity = domain.Complexity(complexity)
		q.Accessibility = domain.Accessibility(accessibility)
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate similar quotes: %w", err)
	}
	return out, nil
}
