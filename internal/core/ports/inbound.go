package ports

import (
	"context"
	"time"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
)

// QuoteGenerator is the single inbound entry point of the quote pipeline.
type QuoteGenerator interface {
	GenerateQuote(ctx context.Context, req domain.GenerateQuoteRequest) (*domain.GenerateQuoteResult, error)
}

// DeductionClassifier decides whether a job qualifies for ROT, RUT or no deduction.
type DeductionClassifier interface {
	Classify(ctx context.Context, description, workType string, items []domain.WorkItem) domain.Classification
}

// JobCatalog is the inbound read model for registered job types.
type JobCatalog interface {
	Definitions() []domain.JobDefinition
	Find(key string) domain.JobDefinition
}

// BenchmarkRefresher recomputes benchmark aggregates after new quotes arrive.
type BenchmarkRefresher interface {
	Refresh(ctx context.Context, event domain.QuoteGeneratedEvent) error
}

// QuoteAcceptor marks a generated quote as accepted by the customer.
type QuoteAcceptor interface {
	MarkAccepted(ctx context.Context, userID, quoteID string, at time.Time) error
}
