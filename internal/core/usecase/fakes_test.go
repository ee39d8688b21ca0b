package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
)

type generatorFake struct {
	mu        sync.Mutex
	responses []string
	err       error
	requests  []domain.TextRequest
}

func (f *generatorFake) GenerateJSON(_ context.Context, req domain.TextRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", errors.New("no scripted response")
	}
	out := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return out, nil
}

type classifierFake struct {
	result domain.Classification
}

func (f classifierFake) Classify(context.Context, string, string, []domain.WorkItem) domain.Classification {
	return f.result
}

type rateStoreFake struct {
	hourly    []domain.HourlyRate
	equipment []domain.EquipmentRate
	err       error
}

func (f rateStoreFake) GetHourlyRates(context.Context, string) ([]domain.HourlyRate, error) {
	return f.hourly, f.err
}

func (f rateStoreFake) GetEquipmentRates(context.Context, string) ([]domain.EquipmentRate, error) {
	return f.equipment, f.err
}

type benchmarkStoreFake struct {
	benchmark *domain.Benchmark
	err       error
}

func (f benchmarkStoreFake) GetBenchmark(context.Context, string) (*domain.Benchmark, error) {
	return f.benchmark, f.err
}

type historyFake struct {
	quotes []domain.HistoricalQuote
	err    error
}

func (f historyFake) FindSimilarAcceptedQuotes(context.Context, string, string, domain.AreaRange) ([]domain.HistoricalQuote, error) {
	return f.quotes, f.err
}

type multiplierFake struct {
	m   domain.Multipliers
	err error
}

func (f multiplierFake) GetMultipliers(context.Context, string, int) (domain.Multipliers, error) {
	return f.m, f.err
}

type archiveFake struct {
	mu    sync.Mutex
	saved map[string][]byte
}

func (f *archiveFake) Save(_ context.Context, key string, data io.Reader) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	payload, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	if f.saved == nil {
		f.saved = make(map[string][]byte)
	}
	f.saved[key] = payload
	return nil
}

func (f *archiveFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	payload, ok := f.saved[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(payload)), nil
}

type publisherFake struct {
	mu     sync.Mutex
	events []domain.QuoteGeneratedEvent
	err    error
}

func (f *publisherFake) PublishQuoteGenerated(_ context.Context, event domain.QuoteGeneratedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *publisherFake) SubscribeQuoteGenerated(context.Context, func(context.Context, domain.QuoteGeneratedEvent) error) error {
	return nil
}

type recorderFake struct {
	mu     sync.Mutex
	quotes []domain.Quote
}

func (f *recorderFake) RecordGenerated(_ context.Context, _ string, quote domain.Quote, _ domain.Interpretation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quotes = append(f.quotes, quote)
	return nil
}

type observerFake struct {
	mu          sync.Mutex
	outcomes    []string
	sources     []domain.InterpretationSource
	corrected   bool
	confidences []float64
}

func (f *observerFake) ObserveQuote(outcome string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes = append(f.outcomes, outcome)
}

func (f *observerFake) ObserveInterpretation(source domain.InterpretationSource) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sources = append(f.sources, source)
}

func (f *observerFake) ObserveValidation(_, corrected bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.corrected = f.corrected || corrected
}

func (f *observerFake) ObserveDeduction(domain.DeductionType, domain.ClassificationSource) {}

func (f *observerFake) ObserveConfidence(confidence float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confidences = append(f.confidences, confidence)
}
