package pricing

import (
	"fmt"
	"math"
	"time"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
)

// CountLowConfidence counts assumptions below the policy's low-confidence threshold.
func CountLowConfidence(assumptions []domain.Assumption, below int) int {
	n := 0
	for _, a := range assumptions {
		if a.Confidence < below {
			n++
		}
	}
	return n
}

// ApplyRiskMargin attaches a labeled contingency line to high-value quotes that
// rest on many weak assumptions. The margin is a distinct line, never folded
// into work cost.
func (e *Engine) ApplyRiskMargin(q domain.Quote, assumptions []domain.Assumption, recipients []domain.Recipient, at time.Time) domain.Quote {
	rm := e.policy.RiskMargin
	if rm.Rate <= 0 {
		return q
	}
	base := q.Summary.TotalBeforeVAT - q.Summary.RiskMargin
	low := CountLowConfidence(assumptions, rm.LowConfidenceBelow)
	if base <= rm.ThresholdTotal || low <= rm.MaxLowConfidence {
		return q
	}

	label := rm.Label
	if label == "" {
		label = "Riskmarginal"
	}
	q.RiskMargin = &domain.AdjustmentLine{
		Label:  label,
		Reason: fmt.Sprintf("%d antaganden med låg säkerhet på en offert över %.0f kr", low, rm.ThresholdTotal),
		Rate:   rm.Rate,
		Amount: math.Round(base * rm.Rate),
	}
	return e.Resummarize(q, recipients, at)
}
