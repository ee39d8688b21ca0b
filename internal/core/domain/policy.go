package domain

import (
	"fmt"
	"sort"
	"time"
)

// DeductionRule is one dated ROT/RUT parameter set. Rules for a type apply from
// EffectiveFrom until the next rule of the same type takes over.
type DeductionRule struct {
	Type          DeductionType `json:"type"`
	Rate          float64       `json:"rate"`
	Cap           float64       `json:"cap"`
	EffectiveFrom time.Time     `json:"effective_from"`
}

type RiskMarginPolicy struct {
	ThresholdTotal     float64 `json:"threshold_total"`
	LowConfidenceBelow int     `json:"low_confidence_below"`
	MaxLowConfidence   int     `json:"max_low_confidence"`
	Rate               float64 `json:"rate"`
	Label              string  `json:"label"`
}

type ValidatorPolicy struct {
	MinTotalHours       float64 `json:"min_total_hours"`
	MaxItemHoursShare   float64 `json:"max_item_hours_share"`
	MinMaterialRatio    float64 `json:"min_material_ratio"`
	MaxMaterialRatio    float64 `json:"max_material_ratio"`
	EquipmentWarnRatio  float64 `json:"equipment_warn_ratio"`
	EquipmentErrorRatio float64 `json:"equipment_error_ratio"`
	BenchmarkLowFactor  float64 `json:"benchmark_low_factor"`
	BenchmarkHighFactor float64 `json:"benchmark_high_factor"`
}

// PricingPolicy carries every legislated or business-tunable constant used by the pipeline.
// Callers take one snapshot per request and never mutate it.
type PricingPolicy struct {
	Version                  string                    `json:"version"`
	VATRate                  float64                   `json:"vat_rate"`
	MinHourlyRate            float64                   `json:"min_hourly_rate"`
	MaxHourlyRate            float64                   `json:"max_hourly_rate"`
	DefaultHourlyRate        float64                   `json:"default_hourly_rate"`
	ComplexityMultipliers    map[Complexity]float64    `json:"complexity_multipliers"`
	AccessibilityMultipliers map[Accessibility]float64 `json:"accessibility_multipliers"`
	QualityMultipliers       map[QualityLevel]float64  `json:"quality_multipliers"`
	Deductions               []DeductionRule           `json:"deductions"`
	RiskMargin               RiskMarginPolicy          `json:"risk_margin"`
	ReviewThreshold          float64                   `json:"review_threshold"`
	HistoryMinSamples        int                       `json:"history_min_samples"`
	ClarificationPenalty     float64                   `json:"clarification_penalty"`
	Validator                ValidatorPolicy           `json:"validator"`
}

func DefaultPricingPolicy() PricingPolicy {
	return PricingPolicy{
		Version:           "default",
		VATRate:           0.25,
		MinHourlyRate:     500,
		MaxHourlyRate:     1500,
		DefaultHourlyRate: 550,
		ComplexityMultipliers: map[Complexity]float64{
			ComplexitySimple:  0.85,
			ComplexityNormal:  1.0,
			ComplexityComplex: 1.3,
		},
		AccessibilityMultipliers: map[Accessibility]float64{
			AccessibilityEasy:   0.95,
			AccessibilityNormal: 1.0,
			AccessibilityHard:   1.15,
		},
		QualityMultipliers: map[QualityLevel]float64{
			QualityBudget:   0.75,
			QualityStandard: 1.0,
			QualityPremium:  1.5,
		},
		Deductions: []DeductionRule{
			{Type: DeductionROT, Rate: 0.5, Cap: 50000, EffectiveFrom: mustDate("2025-05-12")},
			{Type: DeductionROT, Rate: 0.3, Cap: 50000, EffectiveFrom: mustDate("2026-01-01")},
			{Type: DeductionRUT, Rate: 0.5, Cap: 75000, EffectiveFrom: mustDate("2007-07-01")},
		},
		RiskMargin: RiskMarginPolicy{
			ThresholdTotal:     100000,
			LowConfidenceBelow: 60,
			MaxLowConfidence:   3,
			Rate:               0.05,
			Label:              "Riskmarginal",
		},
		ReviewThreshold:      0.7,
		HistoryMinSamples:    3,
		ClarificationPenalty: 0.1,
		Validator: ValidatorPolicy{
			MinTotalHours:       1,
			MaxItemHoursShare:   0.7,
			MinMaterialRatio:    0.05,
			MaxMaterialRatio:    3.0,
			EquipmentWarnRatio:  0.5,
			EquipmentErrorRatio: 1.0,
			BenchmarkLowFactor:  0.5,
			BenchmarkHighFactor: 1.5,
		},
	}
}

// DeductionRule returns the rule in force for the type at the given instant.
func (p PricingPolicy) DeductionRule(kind DeductionType, at time.Time) (DeductionRule, bool) {
	var (
		best  DeductionRule
		found bool
	)
	for _, rule := range p.Deductions {
		if rule.Type != kind || rule.EffectiveFrom.After(at) {
			continue
		}
		if !found || rule.EffectiveFrom.After(best.EffectiveFrom) {
			best = rule
			found = true
		}
	}
	return best, found
}

func (p PricingPolicy) ComplexityFactor(c Complexity) float64 {
	return factor(p.ComplexityMultipliers[c])
}

func (p PricingPolicy) AccessibilityFactor(a Accessibility) float64 {
	return factor(p.AccessibilityMultipliers[a])
}

func (p PricingPolicy) QualityFactor(q QualityLevel) float64 {
	return factor(p.QualityMultipliers[q])
}

// Validate rejects policies that would produce nonsensical quotes.
func (p PricingPolicy) Validate() error {
	if p.VATRate < 0 || p.VATRate >= 1 {
		return fmt.Errorf("vat rate %.3f out of range", p.VATRate)
	}
	if p.MinHourlyRate <= 0 || p.MaxHourlyRate < p.MinHourlyRate {
		return fmt.Errorf("hourly rate bounds [%.0f, %.0f] invalid", p.MinHourlyRate, p.MaxHourlyRate)
	}
	if p.DefaultHourlyRate < p.MinHourlyRate || p.DefaultHourlyRate > p.MaxHourlyRate {
		return fmt.Errorf("default hourly rate %.0f outside bounds", p.DefaultHourlyRate)
	}
	for _, rule := range p.Deductions {
		if rule.Rate < 0 || rule.Rate > 1 || rule.Cap < 0 {
			return fmt.Errorf("deduction rule %s from %s invalid", rule.Type, rule.EffectiveFrom.Format(time.DateOnly))
		}
	}
	if p.ReviewThreshold < 0 || p.ReviewThreshold > 1 {
		return fmt.Errorf("review threshold %.2f out of range", p.ReviewThreshold)
	}
	return nil
}

// SortDeductions orders rules by type then effective date.
func (p *PricingPolicy) SortDeductions() {
	sort.SliceStable(p.Deductions, func(i, j int) bool {
		if p.Deductions[i].Type != p.Deductions[j].Type {
			return p.Deductions[i].Type < p.Deductions[j].Type
		}
		return p.Deductions[i].EffectiveFrom.Before(p.Deductions[j].EffectiveFrom)
	})
}

func factor(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v
}

func mustDate(raw string) time.Time {
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		panic(err)
	}
	return t
}
