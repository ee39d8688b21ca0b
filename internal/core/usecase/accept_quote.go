package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
	"github.com/kirillkom/quote-assistant/internal/core/ports"
)

// AcceptQuoteUseCase records a customer's acceptance and announces it so the
// benchmark worker recomputes the category with the accepted price.
type AcceptQuoteUseCase struct {
	store   ports.QuoteAcceptanceStore
	events  ports.EventPublisher
	timeout time.Duration
}

func NewAcceptQuoteUseCase(store ports.QuoteAcceptanceStore, events ports.EventPublisher, timeout time.Duration) *AcceptQuoteUseCase {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &AcceptQuoteUseCase{store: store, events: events, timeout: timeout}
}

// MarkAccepted fails only when the acceptance itself could not be stored. A
// lost event delays the benchmark until the next event for the category.
func (uc *AcceptQuoteUseCase) MarkAccepted(ctx context.Context, userID, quoteID string, at time.Time) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(quoteID) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "accept quote", errors.New("user_id and quote_id are required"))
	}

	accepted, err := uc.store.MarkAccepted(ctx, userID, quoteID, at)
	if err != nil {
		return err
	}
	slog.Info("quote_accepted", "quote_id", quoteID, "job_type", accepted.JobType, "category", accepted.Category)

	if uc.events == nil {
		return nil
	}
	callCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()
	if err := uc.events.PublishQuoteGenerated(callCtx, accepted.Event()); err != nil {
		slog.Warn("quote_accept_publish_failed", "quote_id", quoteID, "error", err)
	}
	return nil
}
