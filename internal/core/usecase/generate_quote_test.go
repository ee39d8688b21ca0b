package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirillkom/quote-assistant/internal/core/classifier"
	"github.com/kirillkom/quote-assistant/internal/core/domain"
	"github.com/kirillkom/quote-assistant/internal/core/jobs"
	"github.com/kirillkom/quote-assistant/internal/core/ports"
)

var pipelineNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

type pipelineDeps struct {
	gen         *generatorFake
	registry    *jobs.Registry
	rates       rateStoreFake
	benchmarks  benchmarkStoreFake
	history     historyFake
	multipliers multiplierFake
	archive     *archiveFake
	events      *publisherFake
	recorder    *recorderFake
	observer    *observerFake
}

func newPipeline(d pipelineDeps) *GenerateQuoteUseCase {
	if d.registry == nil {
		d.registry = jobs.NewRegistry()
	}
	interpreter := NewInterpretUseCase(d.gen, d.registry, time.Second)
	uc := NewGenerateQuoteUseCase(
		interpreter,
		d.registry,
		classifier.New(nil),
		nil,
		d.rates,
		d.benchmarks,
		d.history,
		d.multipliers,
		domain.PipelineLimits{},
	)
	uc.now = func() time.Time { return pipelineNow }
	uc.newID = func() string { return "01TESTQUOTE" }
	if d.archive != nil || d.events != nil || d.recorder != nil {
		uc.WithSinks(nilArchive(d.archive), nilPublisher(d.events), nilRecorder(d.recorder))
	}
	if d.observer != nil {
		uc.WithObserver(d.observer)
	}
	return uc
}

func TestGenerateQuotePaintingScenario(t *testing.T) {
	gen := &generatorFake{responses: []string{`{"jobType":"målning","area":45,"rooms":3,"qualityLevel":"standard"}`}}
	observer := &observerFake{}
	uc := newPipeline(pipelineDeps{gen: gen, observer: observer})

	res, err := uc.GenerateQuote(context.Background(), domain.GenerateQuoteRequest{
		Description: "Måla 3 rum, totalt 45 kvm, standardkvalitet",
		UserID:      "u1",
	})
	require.NoError(t, err)
	require.Equal(t, domain.ResultQuote, res.Type)
	require.NotNil(t, res.Quote)

	q := res.Quote
	assert.Equal(t, "01TESTQUOTE", q.ID)
	assert.Equal(t, "målning", q.JobType)
	assert.Equal(t, domain.DeductionROT, q.DeductionType)
	assert.Equal(t, 7920.0, q.Summary.WorkCost)
	assert.Equal(t, 1755.0, q.Summary.MaterialCost)
	assert.Equal(t, 9675.0, q.Summary.TotalBeforeVAT)
	assert.Equal(t, 2419.0, q.Summary.VATAmount)
	assert.Equal(t, 12094.0, q.Summary.TotalWithVAT)
	require.NotNil(t, q.Summary.RotRutDeduction)
	assert.Equal(t, 4950.0, q.Summary.RotRutDeduction.DeductionAmount)
	assert.Equal(t, 7144.0, q.Summary.CustomerPays)
	assert.Nil(t, q.RiskMargin)

	assert.Len(t, q.Assumptions, 3)
	assert.Equal(t, 0.42, res.Confidence)
	assert.True(t, res.NeedsReview)
	assert.Equal(t, []string{outcomeQuote}, observer.outcomes)
	assert.Equal(t, []domain.InterpretationSource{domain.InterpretationFromModel}, observer.sources)
}

func TestGenerateQuotePaintingInNamedDistrictKeepsROT(t *testing.T) {
	gen := &generatorFake{responses: []string{`{"jobType":"målning","area":45,"rooms":3,"qualityLevel":"standard"}`}}
	uc := newPipeline(pipelineDeps{gen: gen})

	res, err := uc.GenerateQuote(context.Background(), domain.GenerateQuoteRequest{
		Description: "Måla 3 rum i vår lägenhet i stadsdelen Majorna, totalt 45 kvm",
		UserID:      "u1",
	})
	require.NoError(t, err)
	require.Equal(t, domain.ResultQuote, res.Type)

	q := res.Quote
	assert.Equal(t, domain.DeductionROT, q.DeductionType)
	require.NotNil(t, q.Summary.RotRutDeduction)
	assert.Equal(t, domain.DeductionROT, q.Summary.RotRutDeduction.Type)
	assert.Equal(t, 50000.0, q.Summary.RotRutDeduction.DeductionCap)
}

func TestGenerateQuoteHistoryRaisesConfidence(t *testing.T) {
	gen := &generatorFake{responses: []string{`{"jobType":"målning","area":45,"qualityLevel":"standard"}`}}
	uc := newPipeline(pipelineDeps{gen: gen, history: historyFake{quotes: standardHistory(10)}})

	res, err := uc.GenerateQuote(context.Background(), domain.GenerateQuoteRequest{
		Description: "Måla 3 rum, totalt 45 kvm, standardkvalitet",
		UserID:      "u1",
	})
	require.NoError(t, err)
	assert.Equal(t, 0.95, res.Confidence)
	assert.False(t, res.NeedsReview)
}

func TestGenerateQuoteAsksForMissingBathroomArea(t *testing.T) {
	gen := &generatorFake{responses: []string{`{"jobType":"badrum","area":6,"qualityLevel":"standard"}`}}
	archive := &archiveFake{}
	observer := &observerFake{}
	uc := newPipeline(pipelineDeps{gen: gen, archive: archive, observer: observer})

	res, err := uc.GenerateQuote(context.Background(), domain.GenerateQuoteRequest{Description: "Renovera badrum", UserID: "u1"})
	require.NoError(t, err)

	assert.Equal(t, domain.ResultClarification, res.Type)
	assert.Nil(t, res.Quote)
	assert.Equal(t, jobs.NewRegistry().Find("badrum").Question(domain.FieldArea), res.Question)
	assert.Nil(t, res.Interpretation.Area)
	assert.Empty(t, archive.saved)
	assert.Equal(t, []string{outcomeClarification}, observer.outcomes)
}

func TestGenerateQuoteFallbackInterpretationAsks(t *testing.T) {
	gen := &generatorFake{err: errors.New("model unavailable")}
	uc := newPipeline(pipelineDeps{gen: gen})

	res, err := uc.GenerateQuote(context.Background(), domain.GenerateQuoteRequest{Description: "Måla 45 kvm"})
	require.NoError(t, err)
	assert.Equal(t, domain.ResultClarification, res.Type)
	assert.Equal(t, domain.InterpretationFromFallback, res.Interpretation.Source)
}

func TestGenerateQuoteRejectsEmptyDescription(t *testing.T) {
	uc := newPipeline(pipelineDeps{gen: &generatorFake{}})

	_, err := uc.GenerateQuote(context.Background(), domain.GenerateQuoteRequest{Description: "   "})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.ErrInvalidInput))

	_, err = uc.GenerateQuote(context.Background(), domain.GenerateQuoteRequest{Description: "Måla", Mode: "preview"})
	assert.True(t, domain.IsKind(err, domain.ErrInvalidInput))
}

func TestGenerateQuoteDegradesWhenStoresFail(t *testing.T) {
	gen := &generatorFake{responses: []string{`{"jobType":"målning","area":45,"qualityLevel":"standard"}`}}
	storeErr := errors.New("db down")
	uc := newPipeline(pipelineDeps{
		gen:         gen,
		rates:       rateStoreFake{err: storeErr},
		benchmarks:  benchmarkStoreFake{err: storeErr},
		history:     historyFake{err: storeErr},
		multipliers: multiplierFake{err: storeErr},
	})

	res, err := uc.GenerateQuote(context.Background(), domain.GenerateQuoteRequest{
		Description: "Måla 3 rum, totalt 45 kvm, standardkvalitet",
		UserID:      "u1",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Quote)
	assert.Equal(t, 9675.0, res.Quote.Summary.TotalBeforeVAT)
}

func TestGenerateQuoteCorrectivePassClampsRates(t *testing.T) {
	gen := &generatorFake{responses: []string{`{"jobType":"målning","area":45,"qualityLevel":"standard"}`}}
	observer := &observerFake{}
	uc := newPipeline(pipelineDeps{
		gen:      gen,
		rates:    rateStoreFake{hourly: []domain.HourlyRate{{WorkType: "målare", Rate: 200}}},
		observer: observer,
	})

	res, err := uc.GenerateQuote(context.Background(), domain.GenerateQuoteRequest{
		Description: "Måla 3 rum, totalt 45 kvm, standardkvalitet",
		UserID:      "u1",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Quote)

	for _, item := range res.Quote.WorkItems {
		assert.Equal(t, 500.0, item.HourlyRate, item.Name)
	}
	assert.Equal(t, 7200.0, res.Quote.Summary.WorkCost)
	assert.Contains(t, res.Warnings, "Timpriser justerades till tillåtet intervall efter en första validering")
	assert.True(t, observer.corrected)
}

func TestGenerateQuoteReturnsValidationErrorWhenCorrectionFails(t *testing.T) {
	registry := jobs.NewRegistryFrom([]domain.JobDefinition{{
		Key:      "kranlyft",
		Title:    "Kranlyft",
		Keywords: []string{"kranlyft"},
		Category: "kranlyft",
		WorkType: jobs.WorkGeneral,
		Tasks:    []domain.TaskFormula{{Name: "Arbete", WorkType: jobs.WorkGeneral, Basis: domain.BasisFixed, FixedHours: 2}},
		Equipment: []domain.EquipmentFormula{
			{Name: "Mobilkran", Unit: domain.EquipmentPerDay, Basis: domain.BasisFixed, FixedUnits: 1, Price: 20000, IsRented: true},
		},
	}})
	gen := &generatorFake{responses: []string{`{"jobType":"kranlyft"}`}}
	events := &publisherFake{}
	uc := newPipeline(pipelineDeps{gen: gen, registry: registry, events: events})

	res, err := uc.GenerateQuote(context.Background(), domain.GenerateQuoteRequest{Description: "Kranlyft av spabad", UserID: "u1"})
	require.Error(t, err)
	assert.Nil(t, res)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "kranlyft", verr.JobType)
	assert.True(t, verr.Result.HasError(domain.IssueEquipmentExceedsWork))
	assert.True(t, domain.IsKind(err, domain.ErrValidationFailed))
	assert.Empty(t, events.events)
}

func TestGenerateQuoteRevisionRemovesUnderfloorHeating(t *testing.T) {
	gen := &generatorFake{responses: []string{
		`{"jobType":"badrum","area":5,"qualityLevel":"standard"}`,
		`{"jobType":"badrum","area":5,"qualityLevel":"standard","exclusions":["golvvärme"]}`,
	}}
	uc := newPipeline(pipelineDeps{gen: gen})
	ctx := context.Background()

	first, err := uc.GenerateQuote(ctx, domain.GenerateQuoteRequest{Description: "Renovera badrum 5 kvm", UserID: "u1"})
	require.NoError(t, err)
	require.NotNil(t, first.Quote)

	second, err := uc.GenerateQuote(ctx, domain.GenerateQuoteRequest{
		Description:   "Ta bort golvvärmen",
		History:       []domain.Message{{Role: "user", Content: "Renovera badrum 5 kvm"}},
		UserID:        "u1",
		PreviousQuote: first.Quote,
	})
	require.NoError(t, err)
	require.NotNil(t, second.Quote)
	require.NotNil(t, second.Delta)

	assert.Less(t, second.Quote.Summary.TotalWithVAT, first.Quote.Summary.TotalWithVAT)
	assert.Equal(t, IntentRemove, second.Delta.Intent)
	removed := make([]string, 0, len(second.Delta.Removed))
	for _, line := range second.Delta.Removed {
		removed = append(removed, line.Name)
	}
	assert.ElementsMatch(t, []string{"Golvvärme", "Golvvärmematta"}, removed)
	assert.Empty(t, second.ConsistencyWarnings)
}

func TestGenerateQuoteFinalModeEmitsToSinks(t *testing.T) {
	response := `{"jobType":"målning","area":45,"qualityLevel":"standard"}`
	archive := &archiveFake{}
	events := &publisherFake{}
	recorder := &recorderFake{}
	uc := newPipeline(pipelineDeps{
		gen:      &generatorFake{responses: []string{response}},
		archive:  archive,
		events:   events,
		recorder: recorder,
	})
	req := domain.GenerateQuoteRequest{Description: "Måla 3 rum, totalt 45 kvm, standardkvalitet", UserID: "u1"}

	_, err := uc.GenerateQuote(context.Background(), req)
	require.NoError(t, err)

	require.Contains(t, archive.saved, "quotes/u1/01TESTQUOTE.json")
	var archived domain.Quote
	require.NoError(t, json.Unmarshal(archive.saved["quotes/u1/01TESTQUOTE.json"], &archived))
	assert.Equal(t, 9675.0, archived.Summary.TotalBeforeVAT)
	require.Len(t, events.events, 1)
	assert.Equal(t, "målning", events.events[0].JobType)
	assert.Equal(t, domain.DeductionROT, events.events[0].DeductionType)
	assert.Len(t, recorder.quotes, 1)

	req.Mode = domain.ModeDraft
	_, err = uc.GenerateQuote(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, events.events, 1, "drafts are not published")
	assert.Len(t, recorder.quotes, 1)
}

func TestGenerateQuoteSinkFailureDoesNotFailQuote(t *testing.T) {
	events := &publisherFake{err: errors.New("nats down")}
	uc := newPipeline(pipelineDeps{
		gen:    &generatorFake{responses: []string{`{"jobType":"målning","area":45}`}},
		events: events,
	})

	res, err := uc.GenerateQuote(context.Background(), domain.GenerateQuoteRequest{Description: "Måla 45 kvm", UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, domain.ResultQuote, res.Type)
}

// The nil* helpers keep typed-nil pointers from becoming non-nil interfaces.
func nilArchive(a *archiveFake) ports.QuoteArchive {
	if a == nil {
		return nil
	}
	return a
}

func nilPublisher(p *publisherFake) ports.EventPublisher {
	if p == nil {
		return nil
	}
	return p
}

func nilRecorder(r *recorderFake) ports.QuoteRecorder {
	if r == nil {
		return nil
	}
	return r
}
