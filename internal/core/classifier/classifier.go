package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
	"github.com/kirillkom/quote-assistant/internal/core/ports"
)

const (
	ruleConfidence     = 0.95
	maxModelConfidence = 0.8
	defaultConfidence  = 0.2
)

// Classifier decides ROT/RUT eligibility. The rule table always runs first; the
// reasoner is consulted only when no rule fires and can never override an exclusion.
type Classifier struct {
	rules    RuleTable
	reasoner ports.DeductionReasoner
}

func New(reasoner ports.DeductionReasoner) *Classifier {
	return NewWithRules(DefaultRules(), reasoner)
}

func NewWithRules(rules RuleTable, reasoner ports.DeductionReasoner) *Classifier {
	return &Classifier{rules: rules, reasoner: reasoner}
}

func (c *Classifier) Classify(ctx context.Context, description, workType string, items []domain.WorkItem) domain.Classification {
	text := strings.TrimSpace(description + " " + workType)

	result := c.classifyText(ctx, text, workType)
	result.RuleVersion = c.rules.Version
	if len(items) > 0 {
		result.PerItem = c.ClassifyItems(items, result)
	}
	return result
}

func (c *Classifier) classifyText(ctx context.Context, text, workType string) domain.Classification {
	if rule, ok := c.rules.Evaluate(text); ok {
		return domain.Classification{
			DeductionType: rule.Deduction,
			Confidence:    ruleConfidence,
			Reasoning:     rule.Reason,
			Source:        domain.ClassifiedByRule,
			RuleID:        rule.ID,
		}
	}

	if c.reasoner != nil {
		verdict, err := c.reasoner.ReasonDeduction(ctx, text, workType)
		if err == nil {
			return fromVerdict(verdict)
		}
		slog.Warn("deduction_reasoner_failed", "error", err)
	}

	return domain.Classification{
		DeductionType: domain.DeductionNone,
		Confidence:    defaultConfidence,
		Reasoning:     "Ingen regel matchade beskrivningen; avdrag antas inte gälla utan manuell kontroll.",
		Source:        domain.ClassifiedByDefault,
	}
}

// ClassifyItems classifies each work item on its own name. Items no rule covers
// inherit the overall decision, except that an overall exclusion applies to all.
func (c *Classifier) ClassifyItems(items []domain.WorkItem, overall domain.Classification) []domain.ItemClassification {
	out := make([]domain.ItemClassification, 0, len(items))
	excluded := overall.Source == domain.ClassifiedByRule && overall.DeductionType == domain.DeductionNone
	for _, item := range items {
		ic := domain.ItemClassification{Name: item.Name, DeductionType: overall.DeductionType, RuleID: overall.RuleID}
		if !excluded {
			if rule, ok := c.rules.Evaluate(item.Name + " " + item.Description); ok {
				ic.DeductionType = rule.Deduction
				ic.RuleID = rule.ID
			}
		}
		out = append(out, ic)
	}
	return out
}

func fromVerdict(v domain.ReasonerVerdict) domain.Classification {
	kind, ok := domain.ParseDeductionType(strings.ToLower(strings.TrimSpace(string(v.DeductionType))))
	confidence := v.Confidence
	if confidence > 1 {
		confidence = confidence / 100
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > maxModelConfidence {
		confidence = maxModelConfidence
	}
	reasoning := strings.TrimSpace(v.Reasoning)
	if !ok {
		kind = domain.DeductionNone
		confidence = defaultConfidence
		reasoning = fmt.Sprintf("Okänd avdragstyp %q från extern bedömning; avdrag antas inte gälla.", v.DeductionType)
	}
	if reasoning == "" {
		reasoning = fmt.Sprintf("Extern bedömning: %s.", kind)
	}
	return domain.Classification{
		DeductionType: kind,
		Confidence:    confidence,
		Reasoning:     reasoning,
		Source:        domain.ClassifiedByModel,
	}
}
