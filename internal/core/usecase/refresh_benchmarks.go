package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
	"github.com/kirillkom/quote-assistant/internal/core/ports"
)

type RefreshBenchmarksUseCase struct {
	writer      ports.BenchmarkWriter
	invalidator ports.BenchmarkInvalidator
}

func NewRefreshBenchmarksUseCase(writer ports.BenchmarkWriter, invalidator ports.BenchmarkInvalidator) *RefreshBenchmarksUseCase {
	return &RefreshBenchmarksUseCase{writer: writer, invalidator: invalidator}
}

// Refresh recomputes the benchmark for the event's category. Events without a
// category are rejected as invalid input so the consumer can drop them.
func (uc *RefreshBenchmarksUseCase) Refresh(ctx context.Context, event domain.QuoteGeneratedEvent) error {
	category := strings.TrimSpace(event.Category)
	if category == "" {
		return domain.WrapError(domain.ErrInvalidInput, "refresh benchmark", fmt.Errorf("event %s has no category", event.QuoteID))
	}

	if _, err := uc.writer.RecomputeBenchmark(ctx, category); err != nil {
		return fmt.Errorf("recompute benchmark %s: %w", category, err)
	}
	if uc.invalidator != nil {
		uc.invalidator.Invalidate(category)
	}
	return nil
}
