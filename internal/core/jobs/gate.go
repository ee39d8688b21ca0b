package jobs

import (
	"strings"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
)

// GateDecision is the outcome of the clarification check.
type GateDecision struct {
	NeedsClarification bool
	MissingFields      []string
	Question           string
	Questions          []string
}

// Gate decides whether pricing may proceed. The registry's required-input
// check is authoritative: a model-side missing-info flag with nothing actually
// missing does not trigger a question.
type Gate struct{}

func (Gate) Evaluate(interp domain.Interpretation, def domain.JobDefinition) GateDecision {
	missing := MissingFields(interp, def)

	decision := GateDecision{MissingFields: missing}
	fallback := interp.Source == domain.InterpretationFromFallback
	if len(missing) == 0 && !fallback {
		return decision
	}

	seen := make(map[string]bool)
	add := func(q string) {
		q = strings.TrimSpace(q)
		if q == "" || seen[strings.ToLower(q)] {
			return
		}
		seen[strings.ToLower(q)] = true
		decision.Questions = append(decision.Questions, q)
	}
	for _, field := range missing {
		add(def.Question(field))
	}
	for _, q := range interp.ClarificationsNeeded {
		add(q)
	}
	if len(decision.Questions) == 0 {
		add(def.Question(""))
	}
	decision.NeedsClarification = true
	decision.Question = decision.Questions[0]
	return decision
}

// MissingFields lists required fields without an explicit value, in definition order.
func MissingFields(interp domain.Interpretation, def domain.JobDefinition) []string {
	var missing []string
	for _, field := range def.RequiredInput {
		if !interp.HasField(field) {
			missing = append(missing, field)
		}
	}
	return missing
}
