package pricing

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
)

func laborOnly(subtotal float64) []domain.WorkItem {
	item := domain.NewWorkItem("Arbete", "snickare", subtotal/500, 500)
	item.RotEligible = true
	return []domain.WorkItem{item}
}

func TestSummarizeCapsSingleRecipient(t *testing.T) {
	s := Summarize(domain.DefaultPricingPolicy(), SummaryInput{
		WorkItems:     laborOnly(400000),
		DeductionType: domain.DeductionROT,
		At:            summer2025,
	})

	require.NotNil(t, s.RotRutDeduction)
	assert.Equal(t, 50000.0, s.RotRutDeduction.DeductionAmount)
	assert.Equal(t, 50000.0, s.RotRutDeduction.DeductionCap)
	assert.Equal(t, s.TotalWithVAT-50000, s.CustomerPays)
}

func TestSummarizeUsesDatedDeductionRate(t *testing.T) {
	policy := domain.DefaultPricingPolicy()
	in := SummaryInput{WorkItems: laborOnly(10000), DeductionType: domain.DeductionROT}

	in.At = summer2025
	before := Summarize(policy, in)
	in.At = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	after := Summarize(policy, in)
	in.At = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	none := Summarize(policy, in)

	assert.Equal(t, 0.5, before.RotRutDeduction.DeductionRate)
	assert.Equal(t, 6250.0, before.RotRutDeduction.DeductionAmount)
	assert.Equal(t, 0.3, after.RotRutDeduction.DeductionRate)
	assert.Equal(t, 3750.0, after.RotRutDeduction.DeductionAmount)
	assert.Nil(t, none.RotRutDeduction)
	assert.Equal(t, none.TotalWithVAT, none.CustomerPays)
}

func TestSummarizeRUTUsesItsOwnCap(t *testing.T) {
	s := Summarize(domain.DefaultPricingPolicy(), SummaryInput{
		WorkItems:     laborOnly(200000),
		DeductionType: domain.DeductionRUT,
		At:            summer2025,
	})
	assert.Equal(t, 75000.0, s.RotRutDeduction.DeductionAmount)
}

func TestSummarizeIgnoresIneligibleLabor(t *testing.T) {
	items := laborOnly(10000)
	extra := domain.NewWorkItem("Frakt", "allmänt", 4, 500)
	items = append(items, extra)

	s := Summarize(domain.DefaultPricingPolicy(), SummaryInput{WorkItems: items, DeductionType: domain.DeductionROT, At: summer2025})
	assert.Equal(t, 12000.0, s.WorkCost)
	assert.Equal(t, 10000.0, s.RotRutDeduction.LaborCostExclVAT)
}

func TestSummarizeRespectsRemainingCap(t *testing.T) {
	remaining := 1200.0
	s := Summarize(domain.DefaultPricingPolicy(), SummaryInput{
		WorkItems:     laborOnly(40000),
		DeductionType: domain.DeductionROT,
		Recipients:    []domain.Recipient{{Name: "Anna", Share: 1, RemainingCap: &remaining}},
		At:            summer2025,
	})
	assert.Equal(t, 1200.0, s.RotRutDeduction.DeductionAmount)
}

func TestSummarizeSplitsBetweenRecipients(t *testing.T) {
	s := Summarize(domain.DefaultPricingPolicy(), SummaryInput{
		WorkItems:     laborOnly(500000),
		DeductionType: domain.DeductionROT,
		Recipients:    []domain.Recipient{{Name: "A", Share: 3}, {Name: "B", Share: 7}},
		At:            summer2025,
	})

	d := s.RotRutDeduction
	require.Len(t, d.Recipients, 2)
	assert.Equal(t, 100000.0, d.DeductionCap)
	assert.Equal(t, 30000.0, d.Recipients[0].Amount)
	assert.Equal(t, 50000.0, d.Recipients[1].Amount)
	assert.Equal(t, 80000.0, d.DeductionAmount)
}

func TestDeductionCapHoldsForRandomSplits(t *testing.T) {
	policy := domain.DefaultPricingPolicy()
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		n := 1 + rng.Intn(4)
		recipients := make([]domain.Recipient, n)
		for j := range recipients {
			recipients[j] = domain.Recipient{Share: 0.05 + rng.Float64()}
		}
		labor := 1000 + rng.Float64()*800000

		s := Summarize(policy, SummaryInput{
			WorkItems:     laborOnly(labor),
			DeductionType: domain.DeductionROT,
			Recipients:    recipients,
			At:            summer2025,
		})
		d := s.RotRutDeduction
		require.NotNil(t, d)

		var sum, shares float64
		for _, r := range d.Recipients {
			shares += r.Share
			assert.LessOrEqual(t, r.Amount, r.Share*50000*float64(n)+1e-6)
			assert.LessOrEqual(t, r.Amount, 50000.0)
			sum += r.Amount
		}
		assert.InDelta(t, 1.0, shares, 1e-9)
		assert.Equal(t, sum, d.DeductionAmount)
		assert.LessOrEqual(t, d.DeductionAmount, 50000*float64(n))
		assert.LessOrEqual(t, d.DeductionAmount, d.LaborCostInclVAT*d.DeductionRate)
		assert.Equal(t, s.TotalWithVAT-d.DeductionAmount, s.CustomerPays)
	}
}

func TestNormalizeRecipients(t *testing.T) {
	assert.Equal(t, []domain.Recipient{{Share: 1}}, NormalizeRecipients(nil))
	assert.Equal(t, []domain.Recipient{{Share: 1}}, NormalizeRecipients([]domain.Recipient{{Share: 0}, {Share: -2}}))

	out := NormalizeRecipients([]domain.Recipient{{Name: "A", Share: 1}, {Name: "B", Share: 1}, {Name: "C", Share: 0}})
	require.Len(t, out, 2)
	assert.Equal(t, 0.5, out[0].Share)
}

func TestApplyRiskMargin(t *testing.T) {
	engine := NewEngine(domain.DefaultPricingPolicy())
	quote, _ := engine.Price(paintingInput(700))
	require.Greater(t, quote.Summary.TotalBeforeVAT, 100000.0)

	weak := []domain.Assumption{{Confidence: 30}, {Confidence: 40}, {Confidence: 45}, {Confidence: 55}}
	withMargin := engine.ApplyRiskMargin(quote, weak, nil, summer2025)

	require.NotNil(t, withMargin.RiskMargin)
	assert.Equal(t, math5(quote.Summary.TotalBeforeVAT), withMargin.RiskMargin.Amount)
	assert.Equal(t, quote.Summary.TotalBeforeVAT+withMargin.RiskMargin.Amount, withMargin.Summary.TotalBeforeVAT)
	assert.Equal(t, quote.Summary.WorkCost, withMargin.Summary.WorkCost)
	assertSummaryInvariants(t, withMargin)

	three := engine.ApplyRiskMargin(quote, weak[:3], nil, summer2025)
	assert.Nil(t, three.RiskMargin)

	small, _ := engine.Price(paintingInput(45))
	assert.Nil(t, engine.ApplyRiskMargin(small, weak, nil, summer2025).RiskMargin)
}

func math5(total float64) float64 {
	return float64(int64(total*0.05 + 0.5))
}
