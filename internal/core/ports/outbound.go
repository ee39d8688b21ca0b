package ports

import (
	"context"
	"io"
	"time"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
)

// TextGenerator is the external text-understanding call. The response must be a JSON object.
type TextGenerator interface {
	GenerateJSON(ctx context.Context, req domain.TextRequest) (string, error)
}

// DeductionReasoner is consulted only for phrasing no classification rule covers.
type DeductionReasoner interface {
	ReasonDeduction(ctx context.Context, description, workType string) (domain.ReasonerVerdict, error)
}

// RateStore reads per-user pricing data. A missing entry is not an error.
type RateStore interface {
	GetHourlyRates(ctx context.Context, userID string) ([]domain.HourlyRate, error)
	GetEquipmentRates(ctx context.Context, userID string) ([]domain.EquipmentRate, error)
}

// BenchmarkStore reads aggregated industry benchmarks; nil means no data for the category.
type BenchmarkStore interface {
	GetBenchmark(ctx context.Context, category string) (*domain.Benchmark, error)
}

// BenchmarkWriter stores recomputed benchmark aggregates.
type BenchmarkWriter interface {
	RecomputeBenchmark(ctx context.Context, category string) (*domain.Benchmark, error)
}

// QuoteHistory reads accepted quotes and records generated drafts.
type QuoteHistory interface {
	FindSimilarAcceptedQuotes(ctx context.Context, userID, jobType string, areaRange domain.AreaRange) ([]domain.HistoricalQuote, error)
}

// QuoteRecorder persists generated quotes for later acceptance tracking.
type QuoteRecorder interface {
	RecordGenerated(ctx context.Context, userID string, quote domain.Quote, interp domain.Interpretation) error
}

// QuoteAcceptanceStore moves a recorded draft to the accepted history.
type QuoteAcceptanceStore interface {
	MarkAccepted(ctx context.Context, userID, quoteID string, at time.Time) (domain.AcceptedQuote, error)
}

// MultiplierStore reads regional and seasonal multipliers.
type MultiplierStore interface {
	GetMultipliers(ctx context.Context, location string, month int) (domain.Multipliers, error)
}

// QuoteArchive stores immutable quote snapshots for audit.
type QuoteArchive interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// EventPublisher publishes and consumes quote lifecycle events.
type EventPublisher interface {
	PublishQuoteGenerated(ctx context.Context, event domain.QuoteGeneratedEvent) error
	SubscribeQuoteGenerated(ctx context.Context, handler func(context.Context, domain.QuoteGeneratedEvent) error) error
}

// PolicySource returns the current pricing policy snapshot.
type PolicySource interface {
	Current() domain.PricingPolicy
}

// PipelineObserver records pipeline outcomes. Implementations must be safe for concurrent use.
type PipelineObserver interface {
	ObserveQuote(outcome string, duration time.Duration)
	ObserveInterpretation(source domain.InterpretationSource)
	ObserveValidation(passed, corrected bool)
	ObserveDeduction(kind domain.DeductionType, source domain.ClassificationSource)
	ObserveConfidence(confidence float64)
}

// BenchmarkInvalidator drops a cached benchmark so the next read hits the store.
type BenchmarkInvalidator interface {
	Invalidate(category string)
}
