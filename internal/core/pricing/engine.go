package pricing

import (
	"fmt"
	"strings"
	"time"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
)

// Input is the full, already-fetched state a pricing run depends on.
type Input struct {
	Interpretation domain.Interpretation
	Definition     domain.JobDefinition
	HourlyRates    []domain.HourlyRate
	EquipmentRates []domain.EquipmentRate
	Multipliers    domain.Multipliers
	DeductionType  domain.DeductionType
	Recipients     []domain.Recipient
	// ClampRates forces every selected hourly rate into the policy bounds.
	ClampRates bool
	At         time.Time
}

type TraceLine struct {
	Name       string     `json:"name"`
	Basis      string     `json:"basis"`
	BaseValue  float64    `json:"base_value"`
	Hours      float64    `json:"hours"`
	Rate       float64    `json:"rate"`
	RateSource RateSource `json:"rate_source"`
}

// Trace records how each number was derived so a quote can be audited.
type Trace struct {
	PolicyVersion    string      `json:"policy_version"`
	WorkTypeFactor   float64     `json:"work_type_factor"`
	PriceMultiplier  float64     `json:"price_multiplier"`
	QualityFactor    float64     `json:"quality_factor"`
	Lines            []TraceLine `json:"lines"`
	SkippedOptions   []string    `json:"skipped_options,omitempty"`
	MaterialsSkipped bool        `json:"materials_skipped"`
}

// Engine is the deterministic formula engine. It holds no mutable state.
type Engine struct {
	policy domain.PricingPolicy
}

func NewEngine(policy domain.PricingPolicy) *Engine {
	return &Engine{policy: policy}
}

func (e *Engine) Policy() domain.PricingPolicy {
	return e.policy
}

// Price converts an interpretation and rate data into a summarized quote.
func (e *Engine) Price(in Input) (domain.Quote, Trace) {
	interp := in.Interpretation
	def := in.Definition
	multiplier := in.Multipliers.Combined()
	workFactor := e.policy.ComplexityFactor(interp.Complexity) * e.policy.AccessibilityFactor(interp.Accessibility)
	qualityFactor := e.policy.QualityFactor(interp.QualityLevel)
	deductible := in.DeductionType == domain.DeductionROT || in.DeductionType == domain.DeductionRUT

	trace := Trace{
		PolicyVersion:   e.policy.Version,
		WorkTypeFactor:  workFactor,
		PriceMultiplier: multiplier,
		QualityFactor:   qualityFactor,
	}

	rates := NewRateTable(in.HourlyRates)
	items := make([]domain.WorkItem, 0, len(def.Tasks))
	for _, task := range def.Tasks {
		if !optionIncluded(task.Option, task.DefaultIncluded, interp) {
			trace.SkippedOptions = append(trace.SkippedOptions, task.Name)
			continue
		}
		base := basisValue(task.Basis, interp)
		hours := (base*task.HoursPerUnit + task.FixedHours) * workFactor
		if hours < task.MinHours {
			hours = task.MinHours
		}
		if hours <= 0 {
			continue
		}

		rate, source := rates.Select(task, e.policy)
		rate *= multiplier
		if in.ClampRates {
			if clamped := clamp(rate, e.policy.MinHourlyRate, e.policy.MaxHourlyRate); clamped != rate {
				rate, source = clamped, RateFromClamped
			}
		}

		item := domain.NewWorkItem(task.Name, task.WorkType, hours, rate)
		item.Description = task.Description
		item.RotEligible = deductible && !task.NotDeductible
		items = append(items, item)
		trace.Lines = append(trace.Lines, TraceLine{
			Name:       task.Name,
			Basis:      string(task.Basis),
			BaseValue:  base,
			Hours:      item.Hours,
			Rate:       item.HourlyRate,
			RateSource: source,
		})
	}

	materials := make([]domain.Material, 0, len(def.Materials))
	if interp.CustomerProvidesMaterial {
		trace.MaterialsSkipped = true
	} else {
		for _, m := range def.Materials {
			if !optionIncluded(m.Option, m.DefaultIncluded, interp) {
				trace.SkippedOptions = append(trace.SkippedOptions, m.Name)
				continue
			}
			qty := basisValue(m.Basis, interp)*m.QuantityPerUnit + m.FixedQuantity
			if qty <= 0 {
				continue
			}
			materials = append(materials, domain.NewMaterial(m.Name, m.Unit, qty, m.PricePerUnit*qualityFactor*multiplier))
		}
	}

	equipment := make([]domain.EquipmentLine, 0, len(def.Equipment))
	for _, eq := range def.Equipment {
		qty := basisValue(eq.Basis, interp)*eq.UnitsPerUnit + eq.FixedUnits
		if qty <= 0 {
			continue
		}
		price, rented := eq.Price, eq.IsRented
		if userPrice, userRented, ok := equipmentPrice(in.EquipmentRates, eq.Name, eq.Unit); ok {
			price, rented = userPrice, userRented
		}
		equipment = append(equipment, domain.NewEquipmentLine(eq.Name, eq.Unit, qty, price*multiplier, rented))
	}

	quote := domain.Quote{
		Title:          quoteTitle(def, interp),
		JobType:        def.Key,
		WorkItems:      items,
		Materials:      materials,
		EquipmentLines: equipment,
		DeductionType:  normalizeDeduction(in.DeductionType),
		CreatedAt:      in.At,
	}
	quote.Summary = Summarize(e.policy, SummaryInput{
		WorkItems:     items,
		Materials:     materials,
		Equipment:     equipment,
		DeductionType: quote.DeductionType,
		Recipients:    in.Recipients,
		At:            in.At,
	})
	return quote, trace
}

// Resummarize recomputes a quote's summary from its lines, e.g. after a risk margin is attached.
func (e *Engine) Resummarize(q domain.Quote, recipients []domain.Recipient, at time.Time) domain.Quote {
	var margin float64
	if q.RiskMargin != nil {
		margin = q.RiskMargin.Amount
	}
	q.Summary = Summarize(e.policy, SummaryInput{
		WorkItems:     q.WorkItems,
		Materials:     q.Materials,
		Equipment:     q.EquipmentLines,
		RiskMargin:    margin,
		DeductionType: q.DeductionType,
		Recipients:    recipients,
		At:            at,
	})
	return q
}

func basisValue(b domain.Basis, interp domain.Interpretation) float64 {
	switch b {
	case domain.BasisArea:
		return interp.NumericValue(domain.FieldArea)
	case domain.BasisLength:
		return interp.NumericValue(domain.FieldLength)
	case domain.BasisQuantity:
		return interp.NumericValue(domain.FieldQuantity)
	case domain.BasisRooms:
		return interp.NumericValue(domain.FieldRooms)
	default:
		return 0
	}
}

// optionIncluded applies inclusion/exclusion keywords to optional formula lines.
// Exclusions win over inclusions.
func optionIncluded(option string, defaultIncluded bool, interp domain.Interpretation) bool {
	if option == "" {
		return true
	}
	if domain.Mentions(interp.Exclusions, option) {
		return false
	}
	if domain.Mentions(interp.Inclusions, option) || domain.Mentions(interp.SpecialRequirements, option) {
		return true
	}
	return defaultIncluded
}

func quoteTitle(def domain.JobDefinition, interp domain.Interpretation) string {
	title := def.Title
	if title == "" {
		title = def.Key
	}
	switch def.PrimaryBasis() {
	case domain.BasisArea:
		if v := interp.NumericValue(domain.FieldArea); v > 0 {
			return fmt.Sprintf("%s %s kvm", title, formatQuantity(v))
		}
	case domain.BasisQuantity:
		if v := interp.NumericValue(domain.FieldQuantity); v > 0 {
			return fmt.Sprintf("%s %s st", title, formatQuantity(v))
		}
	case domain.BasisRooms:
		if v := interp.NumericValue(domain.FieldRooms); v > 0 {
			return fmt.Sprintf("%s %s rum", title, formatQuantity(v))
		}
	case domain.BasisLength:
		if v := interp.NumericValue(domain.FieldLength); v > 0 {
			return fmt.Sprintf("%s %s m", title, formatQuantity(v))
		}
	}
	return title
}

func formatQuantity(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	s = strings.TrimSuffix(s, ".0")
	return strings.ReplaceAll(s, ".", ",")
}

func normalizeDeduction(d domain.DeductionType) domain.DeductionType {
	if d == "" {
		return domain.DeductionNone
	}
	return d
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if hi > 0 && v > hi {
		return hi
	}
	return v
}
