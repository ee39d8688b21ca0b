package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
)

type acceptanceStoreFake struct {
	calls int
}

func (f *acceptanceStoreFake) MarkAccepted(_ context.Context, userID, quoteID string, at time.Time) (domain.AcceptedQuote, error) {
	f.calls++
	if quoteID == "missing" {
		return domain.AcceptedQuote{}, domain.WrapError(domain.ErrNotFound, "accept quote", fmt.Errorf("draft quote not found: id=%s", quoteID))
	}
	return domain.AcceptedQuote{
		QuoteID:        quoteID,
		UserID:         userID,
		JobType:        "badrum",
		Category:       "bathroom",
		TotalBeforeVAT: 80000,
		DeductionType:  domain.DeductionROT,
		Confidence:     0.8,
		GeneratedAt:    pipelineNow,
		AcceptedAt:     at,
	}, nil
}

func TestAcceptQuotePublishesAcceptanceForBenchmarks(t *testing.T) {
	store := &acceptanceStoreFake{}
	events := &publisherFake{}
	acceptedAt := pipelineNow.Add(24 * time.Hour)

	err := NewAcceptQuoteUseCase(store, events, time.Second).MarkAccepted(context.Background(), "u1", "01Q", acceptedAt)
	require.NoError(t, err)

	require.Len(t, events.events, 1)
	event := events.events[0]
	assert.Equal(t, "01Q", event.QuoteID)
	assert.Equal(t, "bathroom", event.Category)
	require.NotNil(t, event.AcceptedAt)
	assert.Equal(t, acceptedAt, event.OccurredAt())
	assert.Equal(t, pipelineNow, event.GeneratedAt)
}

func TestAcceptQuoteFeedsBenchmarkRefresh(t *testing.T) {
	events := &publisherFake{}
	require.NoError(t, NewAcceptQuoteUseCase(&acceptanceStoreFake{}, events, 0).MarkAccepted(context.Background(), "u1", "01Q", pipelineNow))

	writer := &benchmarkWriterFake{}
	require.NoError(t, NewRefreshBenchmarksUseCase(writer, nil).Refresh(context.Background(), events.events[0]))
	assert.Equal(t, []string{"bathroom"}, writer.categories)
}

func TestAcceptQuoteMissingDraftPublishesNothing(t *testing.T) {
	events := &publisherFake{}

	err := NewAcceptQuoteUseCase(&acceptanceStoreFake{}, events, time.Second).MarkAccepted(context.Background(), "u1", "missing", pipelineNow)

	assert.True(t, domain.IsKind(err, domain.ErrNotFound))
	assert.Empty(t, events.events)
}

func TestAcceptQuoteSurvivesPublishFailure(t *testing.T) {
	store := &acceptanceStoreFake{}
	events := &publisherFake{err: errors.New("nats down")}

	err := NewAcceptQuoteUseCase(store, events, time.Second).MarkAccepted(context.Background(), "u1", "01Q", pipelineNow)

	require.NoError(t, err)
	assert.Equal(t, 1, store.calls)
}

func TestAcceptQuoteRequiresOwnerAndID(t *testing.T) {
	store := &acceptanceStoreFake{}
	uc := NewAcceptQuoteUseCase(store, nil, time.Second)

	assert.True(t, domain.IsKind(uc.MarkAccepted(context.Background(), " ", "01Q", pipelineNow), domain.ErrInvalidInput))
	assert.True(t, domain.IsKind(uc.MarkAccepted(context.Background(), "u1", "", pipelineNow), domain.ErrInvalidInput))
	assert.Zero(t, store.calls)
}
