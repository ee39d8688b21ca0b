package pricing

import (
	"math"
	"time"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
)

// SummaryInput is everything Summarize needs; it never reads the clock itself.
type SummaryInput struct {
	WorkItems     []domain.WorkItem
	Materials     []domain.Material
	Equipment     []domain.EquipmentLine
	RiskMargin    float64
	DeductionType domain.DeductionType
	Recipients    []domain.Recipient
	At            time.Time
}

// Summarize aggregates line items into whole-currency totals and applies the
// ROT/RUT deduction in force at in.At.
func Summarize(policy domain.PricingPolicy, in SummaryInput) domain.Summary {
	var work, material, equipment, eligible float64
	for _, item := range in.WorkItems {
		work += item.Subtotal
		if item.RotEligible {
			eligible += item.Subtotal
		}
	}
	for _, m := range in.Materials {
		material += m.Subtotal
	}
	for _, e := range in.Equipment {
		equipment += e.Subtotal
	}

	s := domain.Summary{
		WorkCost:      math.Round(work),
		MaterialCost:  math.Round(material),
		EquipmentCost: math.Round(equipment),
		RiskMargin:    math.Round(in.RiskMargin),
	}
	s.TotalBeforeVAT = s.WorkCost + s.MaterialCost + s.EquipmentCost + s.RiskMargin
	s.VATAmount = math.Round(s.TotalBeforeVAT * policy.VATRate)
	s.TotalWithVAT = s.TotalBeforeVAT + s.VATAmount
	s.CustomerPays = s.TotalWithVAT

	if in.DeductionType == domain.DeductionROT || in.DeductionType == domain.DeductionRUT {
		if rule, ok := policy.DeductionRule(in.DeductionType, in.At); ok && eligible > 0 {
			s.RotRutDeduction = computeDeduction(policy, rule, math.Round(eligible), s.TotalWithVAT, in.Recipients)
			s.CustomerPays = s.TotalWithVAT - s.RotRutDeduction.DeductionAmount
		}
	}
	return s
}

// computeDeduction splits the deduction between recipients. Each recipient gets
// their share of the potential deduction, bounded by the single-person cap, their
// pro-rata share of the pooled cap, and whatever cap they have left this year.
func computeDeduction(policy domain.PricingPolicy, rule domain.DeductionRule, laborExcl, totalWithVAT float64, recipients []domain.Recipient) *domain.RotRutDeduction {
	laborIncl := math.Round(laborExcl * (1 + policy.VATRate))
	potential := laborIncl * rule.Rate

	shares := NormalizeRecipients(recipients)
	pooledCap := rule.Cap * float64(len(shares))

	d := &domain.RotRutDeduction{
		Type:             rule.Type,
		LaborCostExclVAT: laborExcl,
		LaborCostInclVAT: laborIncl,
		DeductionRate:    rule.Rate,
		DeductionCap:     pooledCap,
	}
	for _, r := range shares {
		limit := math.Min(rule.Cap, r.Share*pooledCap)
		if r.RemainingCap != nil {
			limit = math.Min(limit, math.Max(0, *r.RemainingCap))
		}
		amount := math.Floor(math.Min(r.Share*potential, limit))
		d.Recipients = append(d.Recipients, domain.RecipientDeduction{
			Name:   r.Name,
			Share:  r.Share,
			Cap:    limit,
			Amount: amount,
		})
		d.DeductionAmount += amount
	}
	d.PriceAfterDeduction = totalWithVAT - d.DeductionAmount
	return d
}

// NormalizeRecipients drops non-positive shares and rescales the rest to sum to 1.
// An empty list becomes one recipient owning everything.
func NormalizeRecipients(recipients []domain.Recipient) []domain.Recipient {
	var total float64
	out := make([]domain.Recipient, 0, len(recipients))
	for _, r := range recipients {
		if r.Share > 0 && !math.IsInf(r.Share, 0) && !math.IsNaN(r.Share) {
			out = append(out, r)
			total += r.Share
		}
	}
	if len(out) == 0 || total <= 0 {
		return []domain.Recipient{{Share: 1}}
	}
	for i := range out {
		out[i].Share = out[i].Share / total
	}
	return out
}
