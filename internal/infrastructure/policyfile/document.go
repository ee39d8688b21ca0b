package policyfile

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
)

type hourlyRateDoc struct {
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
	Default float64 `yaml:"default"`
}

type deductionDoc struct {
	Type          string  `yaml:"type"`
	Rate          float64 `yaml:"rate"`
	Cap           float64 `yaml:"cap"`
	EffectiveFrom string  `yaml:"effective_from"`
}

type riskMarginDoc struct {
	ThresholdTotal     float64 `yaml:"threshold_total"`
	LowConfidenceBelow int     `yaml:"low_confidence_below"`
	MaxLowConfidence   int     `yaml:"max_low_confidence"`
	Rate               float64 `yaml:"rate"`
	Label              string  `yaml:"label"`
}

// document is the YAML shape of a pricing policy. Absent fields keep the
// built-in defaults.
type document struct {
	Version              string             `yaml:"version"`
	VATRate              *float64           `yaml:"vat_rate"`
	HourlyRate           *hourlyRateDoc     `yaml:"hourly_rate"`
	Complexity           map[string]float64 `yaml:"complexity_multipliers"`
	Accessibility        map[string]float64 `yaml:"accessibility_multipliers"`
	Quality              map[string]float64 `yaml:"quality_multipliers"`
	Deductions           []deductionDoc     `yaml:"deductions"`
	RiskMargin           *riskMarginDoc     `yaml:"risk_margin"`
	ReviewThreshold      *float64           `yaml:"review_threshold"`
	HistoryMinSamples    *int               `yaml:"history_min_samples"`
	ClarificationPenalty *float64           `yaml:"clarification_penalty"`
}

// Parse overlays a YAML policy onto the default policy and validates the result.
func Parse(data []byte) (domain.PricingPolicy, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return domain.PricingPolicy{}, fmt.Errorf("decode policy yaml: %w", err)
	}

	p := domain.DefaultPricingPolicy()
	if doc.Version != "" {
		p.Version = doc.Version
	}
	if doc.VATRate != nil {
		p.VATRate = *doc.VATRate
	}
	if doc.HourlyRate != nil {
		p.MinHourlyRate = doc.HourlyRate.Min
		p.MaxHourlyRate = doc.HourlyRate.Max
		p.DefaultHourlyRate = doc.HourlyRate.Default
	}
	for k, v := range doc.Complexity {
		p.ComplexityMultipliers[domain.Complexity(k)] = v
	}
	for k, v := range doc.Accessibility {
		p.AccessibilityMultipliers[domain.Accessibility(k)] = v
	}
	for k, v := range doc.Quality {
		p.QualityMultipliers[domain.QualityLevel(k)] = v
	}
	if len(doc.Deductions) > 0 {
		p.Deductions = make([]domain.DeductionRule, 0, len(doc.Deductions))
		for _, d := range doc.Deductions {
			kind, ok := domain.ParseDeductionType(d.Type)
			if !ok || kind == domain.DeductionNone {
				return domain.PricingPolicy{}, fmt.Errorf("deduction type %q unknown", d.Type)
			}
			from, err := time.Parse(time.DateOnly, d.EffectiveFrom)
			if err != nil {
				return domain.PricingPolicy{}, fmt.Errorf("deduction %s effective_from: %w", d.Type, err)
			}
			p.Deductions = append(p.Deductions, domain.DeductionRule{Type: kind, Rate: d.Rate, Cap: d.Cap, EffectiveFrom: from})
		}
		p.SortDeductions()
	}
	if rm := doc.RiskMargin; rm != nil {
		p.RiskMargin.ThresholdTotal = rm.ThresholdTotal
		p.RiskMargin.LowConfidenceBelow = rm.LowConfidenceBelow
		p.RiskMargin.MaxLowConfidence = rm.MaxLowConfidence
		p.RiskMargin.Rate = rm.Rate
		if rm.Label != "" {
			p.RiskMargin.Label = rm.Label
		}
	}
	if doc.ReviewThreshold != nil {
		p.ReviewThreshold = *doc.ReviewThreshold
	}
	if doc.HistoryMinSamples != nil {
		p.HistoryMinSamples = *doc.HistoryMinSamples
	}
	if doc.ClarificationPenalty != nil {
		p.ClarificationPenalty = *doc.ClarificationPenalty
	}

	if err := p.Validate(); err != nil {
		return domain.PricingPolicy{}, fmt.Errorf("validate policy: %w", err)
	}
	return p, nil
}
