package usecase

import (
	"fmt"
	"math"
	"strings"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
)

// Fallback confidences used when too few similar accepted quotes exist.
const (
	fallbackQuality       = 45
	fallbackComplexity    = 45
	fallbackAccessibility = 40
	fallbackMaterial      = 40
	fallbackScope         = 30
	fallbackModel         = 35
	noAssumptionBase      = 0.95
)

type AssumptionInput struct {
	Interpretation domain.Interpretation
	Definition     domain.JobDefinition
	Description    string
	History        []domain.HistoricalQuote
	Policy         domain.PricingPolicy
}

// BuildAssumptions produces one assumption per field pricing had to infer.
func BuildAssumptions(in AssumptionInput) []domain.Assumption {
	interp := in.Interpretation
	n := len(in.History)
	var out []domain.Assumption

	if !interp.HasField(domain.FieldQualityLevel) {
		agree := agreement(in.History, func(h domain.HistoricalQuote) bool {
			return h.QualityLevel == "" || h.QualityLevel == domain.QualityStandard
		})
		out = append(out, newAssumption("Standardkvalitet på material antagen", domain.FieldQualityLevel,
			historyConfidence(n, agree, fallbackQuality, in.Policy.HistoryMinSamples), n, in.Policy.HistoryMinSamples))
	}
	if !interp.HasField(domain.FieldComplexity) {
		agree := agreement(in.History, func(h domain.HistoricalQuote) bool {
			return h.Complexity == "" || h.Complexity == domain.ComplexityNormal
		})
		out = append(out, newAssumption("Normal komplexitet antagen", domain.FieldComplexity,
			historyConfidence(n, agree, fallbackComplexity, in.Policy.HistoryMinSamples), n, in.Policy.HistoryMinSamples))
	}
	if !interp.HasField(domain.FieldAccessibility) {
		agree := agreement(in.History, func(h domain.HistoricalQuote) bool {
			return h.Accessibility == "" || h.Accessibility == domain.AccessibilityNormal
		})
		out = append(out, newAssumption("Normal åtkomst till arbetsplatsen antagen", domain.FieldAccessibility,
			historyConfidence(n, agree, fallbackAccessibility, in.Policy.HistoryMinSamples), n, in.Policy.HistoryMinSamples))
	}
	if len(in.Definition.Materials) > 0 && !interp.CustomerProvidesMaterial && !strings.Contains(strings.ToLower(in.Description), "material") {
		agree := agreement(in.History, func(h domain.HistoricalQuote) bool { return !h.CustomerProvidesMaterial })
		out = append(out, newAssumption("Material ingår och köps in av hantverkaren", domain.FieldMaterial,
			historyConfidence(n, agree, fallbackMaterial, in.Policy.HistoryMinSamples), n, in.Policy.HistoryMinSamples))
	}

	for _, field := range unusedBasisFields(in.Definition, interp) {
		out = append(out, domain.Assumption{
			Text:          fmt.Sprintf("%s saknas; minsta omfattning antagen", fieldLabel(field)),
			Confidence:    fallbackScope,
			SourceOfTruth: domain.SourceDefault,
			CanConfirm:    domain.ConfirmableFields[field],
			Field:         field,
		})
	}

	for _, text := range interp.Assumptions {
		out = append(out, domain.Assumption{
			Text:          text,
			Confidence:    fallbackModel,
			SourceOfTruth: domain.SourceModel,
		})
	}
	return out
}

func newAssumption(text, field string, confidence, samples, minSamples int) domain.Assumption {
	source := domain.SourceDefault
	if samples >= minSamples && minSamples > 0 {
		source = domain.SourceHistory
		text = fmt.Sprintf("%s (baserat på %d liknande offerter)", text, samples)
	}
	return domain.Assumption{
		Text:          text,
		Confidence:    confidence,
		SourceOfTruth: source,
		CanConfirm:    domain.ConfirmableFields[field],
		Field:         field,
	}
}

// historyConfidence scores an assumption from similar accepted quotes. Below the
// minimum sample size the branch fallback applies, always capped under 50.
func historyConfidence(samples int, agreement float64, fallback, minSamples int) int {
	if minSamples <= 0 {
		minSamples = 3
	}
	if samples < minSamples {
		return min(fallback, 49)
	}
	weight := math.Min(1, float64(samples)/10)
	return int(math.Round(50 + 45*agreement*weight))
}

func agreement(history []domain.HistoricalQuote, match func(domain.HistoricalQuote) bool) float64 {
	if len(history) == 0 {
		return 0
	}
	hits := 0
	for _, h := range history {
		if match(h) {
			hits++
		}
	}
	return float64(hits) / float64(len(history))
}

// unusedBasisFields lists non-required quantities the formula uses but the text never stated.
func unusedBasisFields(def domain.JobDefinition, interp domain.Interpretation) []string {
	required := make(map[string]bool, len(def.RequiredInput))
	for _, f := range def.RequiredInput {
		required[f] = true
	}
	seen := make(map[string]bool)
	var out []string
	for _, task := range def.Tasks {
		field := string(task.Basis)
		if task.Basis == domain.BasisFixed || task.Basis == "" || required[field] || seen[field] {
			continue
		}
		seen[field] = true
		if !interp.HasField(field) {
			out = append(out, field)
		}
	}
	return out
}

// OverallConfidence combines assumption confidences with unresolved clarifications into [0,1].
func OverallConfidence(assumptions []domain.Assumption, unresolvedClarifications int, policy domain.PricingPolicy) float64 {
	base := noAssumptionBase
	if len(assumptions) > 0 {
		var sum float64
		for _, a := range assumptions {
			sum += float64(a.Confidence)
		}
		base = sum / float64(len(assumptions)) / 100
	}
	penalty := policy.ClarificationPenalty
	if penalty <= 0 {
		penalty = 0.1
	}
	score := base - penalty*float64(unresolvedClarifications)
	return domain.RoundTo(math.Max(0, math.Min(1, score)), 2)
}
