package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
	"github.com/kirillkom/quote-assistant/internal/core/jobs"
	"github.com/kirillkom/quote-assistant/internal/core/ports"
	"github.com/kirillkom/quote-assistant/internal/core/pricing"
	"github.com/kirillkom/quote-assistant/internal/core/validation"
)

const (
	outcomeQuote            = "quote"
	outcomeClarification    = "clarification"
	outcomeValidationFailed = "validation_failed"
	outcomeInvalidInput     = "invalid_input"

	historyAreaTolerance = 0.25
)

type GenerateQuoteUseCase struct {
	interpreter *InterpretUseCase
	registry    *jobs.Registry
	gate        jobs.Gate
	classifier  ports.DeductionClassifier
	policies    ports.PolicySource
	rates       ports.RateStore
	benchmarks  ports.BenchmarkStore
	history     ports.QuoteHistory
	multipliers ports.MultiplierStore
	archive     ports.QuoteArchive
	events      ports.EventPublisher
	recorder    ports.QuoteRecorder
	observer    ports.PipelineObserver
	limits      domain.PipelineLimits
	now         func() time.Time
	newID       func() string
}

func NewGenerateQuoteUseCase(
	interpreter *InterpretUseCase,
	registry *jobs.Registry,
	classifier ports.DeductionClassifier,
	policies ports.PolicySource,
	rates ports.RateStore,
	benchmarks ports.BenchmarkStore,
	history ports.QuoteHistory,
	multipliers ports.MultiplierStore,
	limits domain.PipelineLimits,
) *GenerateQuoteUseCase {
	if limits.StoreTimeout <= 0 {
		limits.StoreTimeout = 3 * time.Second
	}
	if limits.SinkTimeout <= 0 {
		limits.SinkTimeout = 5 * time.Second
	}
	if limits.MaxDescriptionLength <= 0 {
		limits.MaxDescriptionLength = 4000
	}
	return &GenerateQuoteUseCase{
		interpreter: interpreter,
		registry:    registry,
		classifier:  classifier,
		policies:    policies,
		rates:       rates,
		benchmarks:  benchmarks,
		history:     history,
		multipliers: multipliers,
		limits:      limits,
		now:         time.Now,
		newID:       func() string { return ulid.Make().String() },
	}
}

// WithSinks attaches best-effort outputs for final quotes. Any of them may be nil.
func (uc *GenerateQuoteUseCase) WithSinks(archive ports.QuoteArchive, events ports.EventPublisher, recorder ports.QuoteRecorder) *GenerateQuoteUseCase {
	uc.archive = archive
	uc.events = events
	uc.recorder = recorder
	return uc
}

func (uc *GenerateQuoteUseCase) WithObserver(observer ports.PipelineObserver) *GenerateQuoteUseCase {
	uc.observer = observer
	return uc
}

// pricingContext is everything fetched from stores for one pricing run.
type pricingContext struct {
	hourly      []domain.HourlyRate
	equipment   []domain.EquipmentRate
	benchmark   *domain.Benchmark
	history     []domain.HistoricalQuote
	multipliers domain.Multipliers
}

func (uc *GenerateQuoteUseCase) GenerateQuote(ctx context.Context, req domain.GenerateQuoteRequest) (*domain.GenerateQuoteResult, error) {
	started := uc.now()
	description := strings.TrimSpace(req.Description)
	if description == "" {
		uc.observeQuote(outcomeInvalidInput, started)
		return nil, domain.WrapError(domain.ErrInvalidInput, "generate quote", fmt.Errorf("description is required"))
	}
	if utf8.RuneCountInString(description) > uc.limits.MaxDescriptionLength {
		uc.observeQuote(outcomeInvalidInput, started)
		return nil, domain.WrapError(domain.ErrInvalidInput, "generate quote", fmt.Errorf("description exceeds %d characters", uc.limits.MaxDescriptionLength))
	}
	if req.Mode == "" {
		req.Mode = domain.ModeFinal
	}
	if req.Mode != domain.ModeDraft && req.Mode != domain.ModeFinal {
		uc.observeQuote(outcomeInvalidInput, started)
		return nil, domain.WrapError(domain.ErrInvalidInput, "generate quote", fmt.Errorf("unknown mode %q", req.Mode))
	}

	policy := uc.currentPolicy()
	conversation := conversationText(description, req.History)
	required := uc.registry.RequiredFieldsFor(conversation)

	var (
		interp domain.Interpretation
		pc     pricingContext
		g      errgroup.Group
	)
	g.Go(func() error {
		interp = uc.interpreter.Interpret(ctx, description, req.History, required)
		return nil
	})
	g.Go(func() error {
		pc.hourly, pc.equipment = uc.fetchRates(ctx, req.UserID)
		return nil
	})
	_ = g.Wait()
	uc.observeInterpretation(interp.Source)

	if req.PreviousQuote != nil {
		if _, matched := uc.registry.Lookup(interp.JobType); !matched && req.PreviousQuote.JobType != "" {
			interp.JobType = req.PreviousQuote.JobType
		}
	}
	def := uc.registry.Find(interp.JobType)
	interp.JobType = def.Key

	decision := uc.gate.Evaluate(interp, def)
	if decision.NeedsClarification {
		uc.observeQuote(outcomeClarification, started)
		return &domain.GenerateQuoteResult{
			Type:           domain.ResultClarification,
			Question:       decision.Question,
			Questions:      decision.Questions,
			Interpretation: interp,
		}, nil
	}

	now := uc.now()
	location := firstNonEmpty(interp.Location, req.Location)
	month := int(now.Month())
	if interp.StartMonth != nil {
		month = *interp.StartMonth
	}
	uc.fetchContext(ctx, req.UserID, def, interp, location, month, &pc)

	classification := uc.classifier.Classify(ctx, conversation, def.WorkType, taskItems(def))
	uc.observeDeduction(classification)

	assumptions := BuildAssumptions(AssumptionInput{
		Interpretation: interp,
		Definition:     def,
		Description:    conversation,
		History:        pc.history,
		Policy:         policy,
	})

	engine := pricing.NewEngine(policy)
	validator := validation.New(policy, uc.registry)
	in := pricing.Input{
		Interpretation: interp,
		Definition:     def,
		HourlyRates:    pc.hourly,
		EquipmentRates: pc.equipment,
		Multipliers:    pc.multipliers,
		DeductionType:  classification.DeductionType,
		Recipients:     req.Recipients,
		At:             now,
	}
	build := func(clampRates bool) domain.Quote {
		in.ClampRates = clampRates
		quote, _ := engine.Price(in)
		quote = applyItemDeductions(quote, classification.PerItem)
		quote = engine.Resummarize(quote, req.Recipients, now)
		quote.Assumptions = assumptions
		return engine.ApplyRiskMargin(quote, assumptions, req.Recipients, now)
	}
	validate := func(q domain.Quote) domain.ValidationResult {
		return validator.Validate(validation.Request{
			Quote:       q,
			JobType:     def.Key,
			Description: conversation,
			Area:        interp.NumericValue(domain.FieldArea),
			Benchmark:   pc.benchmark,
		})
	}

	quote := build(false)
	result := validate(quote)
	corrected := false
	if !result.Passed {
		slog.Info("quote_corrective_pass", "job_type", def.Key, "errors", len(result.Errors))
		quote = build(true)
		result = validate(quote)
		corrected = true
	}
	uc.observeValidation(result.Passed, corrected)
	if !result.Passed {
		uc.observeQuote(outcomeValidationFailed, started)
		return nil, &domain.ValidationError{JobType: def.Key, Result: result}
	}

	confidence := OverallConfidence(assumptions, len(interp.ClarificationsNeeded), policy)
	uc.observeConfidence(confidence)

	warnings := result.WarningMessages()
	if corrected {
		warnings = append(warnings, "Timpriser justerades till tillåtet intervall efter en första validering")
	}
	if classification.Source == domain.ClassifiedByDefault {
		warnings = append(warnings, "Avdragstyp kunde inte fastställas; kontrollera ROT/RUT manuellt")
	}

	quote.ID = uc.newID()
	quote.CreatedAt = now
	quote.Confidence = confidence
	quote.NeedsReview = confidence < policy.ReviewThreshold
	quote.Warnings = warnings

	out := &domain.GenerateQuoteResult{
		Type:           domain.ResultQuote,
		Quote:          &quote,
		Confidence:     confidence,
		Warnings:       warnings,
		NeedsReview:    quote.NeedsReview,
		Interpretation: interp,
	}
	if req.PreviousQuote != nil {
		delta := CompareQuotes(*req.PreviousQuote, quote, description)
		out.Delta = &delta
		out.ConsistencyWarnings = delta.Warnings
	}

	if req.Mode == domain.ModeFinal {
		uc.emit(ctx, req.UserID, def, quote, interp)
	}
	uc.observeQuote(outcomeQuote, started)
	return out, nil
}

func (uc *GenerateQuoteUseCase) currentPolicy() domain.PricingPolicy {
	if uc.policies == nil {
		return domain.DefaultPricingPolicy()
	}
	return uc.policies.Current()
}

func (uc *GenerateQuoteUseCase) fetchRates(ctx context.Context, userID string) ([]domain.HourlyRate, []domain.EquipmentRate) {
	if uc.rates == nil || strings.TrimSpace(userID) == "" {
		return nil, nil
	}
	callCtx, cancel := context.WithTimeout(ctx, uc.limits.StoreTimeout)
	defer cancel()

	hourly, err := uc.rates.GetHourlyRates(callCtx, userID)
	if err != nil {
		slog.Warn("hourly_rates_unavailable", "user_id", userID, "error", err)
		hourly = nil
	}
	equipment, err := uc.rates.GetEquipmentRates(callCtx, userID)
	if err != nil {
		slog.Warn("equipment_rates_unavailable", "user_id", userID, "error", err)
		equipment = nil
	}
	return hourly, equipment
}

// fetchContext loads benchmark, history and multipliers concurrently. Every
// failure degrades to "no data" so pricing still runs on defaults.
func (uc *GenerateQuoteUseCase) fetchContext(ctx context.Context, userID string, def domain.JobDefinition, interp domain.Interpretation, location string, month int, pc *pricingContext) {
	var g errgroup.Group
	if uc.benchmarks != nil {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, uc.limits.StoreTimeout)
			defer cancel()
			b, err := uc.benchmarks.GetBenchmark(callCtx, def.Category)
			if err != nil {
				slog.Warn("benchmark_unavailable", "category", def.Category, "error", err)
				return nil
			}
			pc.benchmark = b
			return nil
		})
	}
	if uc.history != nil && strings.TrimSpace(userID) != "" {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, uc.limits.StoreTimeout)
			defer cancel()
			window := domain.AreaRangeAround(interp.NumericValue(domain.FieldArea), historyAreaTolerance)
			h, err := uc.history.FindSimilarAcceptedQuotes(callCtx, userID, def.Key, window)
			if err != nil {
				slog.Warn("quote_history_unavailable", "job_type", def.Key, "error", err)
				return nil
			}
			pc.history = h
			return nil
		})
	}
	if uc.multipliers != nil {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, uc.limits.StoreTimeout)
			defer cancel()
			m, err := uc.multipliers.GetMultipliers(callCtx, location, month)
			if err != nil {
				slog.Warn("multipliers_unavailable", "location", location, "month", month, "error", err)
				return nil
			}
			pc.multipliers = m
			return nil
		})
	}
	_ = g.Wait()
}

// emit archives, records and announces a final quote. Failures are logged only;
// the caller already has a valid quote.
func (uc *GenerateQuoteUseCase) emit(ctx context.Context, userID string, def domain.JobDefinition, quote domain.Quote, interp domain.Interpretation) {
	if uc.archive != nil {
		if payload, err := json.Marshal(quote); err != nil {
			slog.Warn("quote_archive_encode_failed", "quote_id", quote.ID, "error", err)
		} else {
			callCtx, cancel := context.WithTimeout(ctx, uc.limits.SinkTimeout)
			if err := uc.archive.Save(callCtx, ArchiveKey(userID, quote.ID), bytes.NewReader(payload)); err != nil {
				slog.Warn("quote_archive_failed", "quote_id", quote.ID, "error", err)
			}
			cancel()
		}
	}
	if uc.recorder != nil && strings.TrimSpace(userID) != "" {
		callCtx, cancel := context.WithTimeout(ctx, uc.limits.SinkTimeout)
		if err := uc.recorder.RecordGenerated(callCtx, userID, quote, interp); err != nil {
			slog.Warn("quote_record_failed", "quote_id", quote.ID, "error", err)
		}
		cancel()
	}
	if uc.events != nil {
		callCtx, cancel := context.WithTimeout(ctx, uc.limits.SinkTimeout)
		err := uc.events.PublishQuoteGenerated(callCtx, domain.QuoteGeneratedEvent{
			QuoteID:        quote.ID,
			UserID:         userID,
			JobType:        def.Key,
			Category:       def.Category,
			TotalBeforeVAT: quote.Summary.TotalBeforeVAT,
			DeductionType:  quote.DeductionType,
			Confidence:     quote.Confidence,
			GeneratedAt:    quote.CreatedAt,
		})
		if err != nil {
			slog.Warn("quote_event_publish_failed", "quote_id", quote.ID, "error", err)
		}
		cancel()
	}
}

// ArchiveKey is where the snapshot of a generated quote is stored.
func ArchiveKey(userID, quoteID string) string {
	owner := strings.TrimSpace(userID)
	if owner == "" {
		owner = "anonymous"
	}
	return fmt.Sprintf("quotes/%s/%s.json", owner, quoteID)
}

// taskItems lists the definition's work lines so the classifier can judge each one.
func taskItems(def domain.JobDefinition) []domain.WorkItem {
	items := make([]domain.WorkItem, 0, len(def.Tasks))
	for _, task := range def.Tasks {
		item := domain.WorkItem{Name: task.Name, Description: task.Description, WorkerType: task.WorkType}
		items = append(items, item)
	}
	return items
}

// applyItemDeductions withdraws eligibility from lines an exclusion rule covers.
// A line matching another allow rule stays eligible under the quote's type.
func applyItemDeductions(q domain.Quote, perItem []domain.ItemClassification) domain.Quote {
	if len(perItem) == 0 {
		return q
	}
	kinds := make(map[string]domain.DeductionType, len(perItem))
	for _, ic := range perItem {
		kinds[ic.Name] = ic.DeductionType
	}
	for i := range q.WorkItems {
		if kind, ok := kinds[q.WorkItems[i].Name]; ok && kind == domain.DeductionNone {
			q.WorkItems[i].RotEligible = false
		}
	}
	return q
}

func conversationText(description string, history []domain.Message) string {
	parts := make([]string, 0, len(history)+1)
	for _, m := range history {
		if strings.EqualFold(m.Role, "user") && strings.TrimSpace(m.Content) != "" {
			parts = append(parts, strings.TrimSpace(m.Content))
		}
	}
	parts = append(parts, description)
	return strings.Join(parts, "\n")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func (uc *GenerateQuoteUseCase) observeQuote(outcome string, started time.Time) {
	if uc.observer != nil {
		uc.observer.ObserveQuote(outcome, uc.now().Sub(started))
	}
}

func (uc *GenerateQuoteUseCase) observeInterpretation(source domain.InterpretationSource) {
	if uc.observer != nil {
		uc.observer.ObserveInterpretation(source)
	}
}

func (uc *GenerateQuoteUseCase) observeValidation(passed, corrected bool) {
	if uc.observer != nil {
		uc.observer.ObserveValidation(passed, corrected)
	}
}

func (uc *GenerateQuoteUseCase) observeDeduction(c domain.Classification) {
	if uc.observer != nil {
		uc.observer.ObserveDeduction(c.DeductionType, c.Source)
	}
}

func (uc *GenerateQuoteUseCase) observeConfidence(confidence float64) {
	if uc.observer != nil {
		uc.observer.ObserveConfidence(confidence)
	}
}
