package usecase

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
	"github.com/kirillkom/quote-assistant/internal/core/jobs"
)

const (
	IntentAdd     = "add"
	IntentRemove  = "remove"
	IntentCheaper = "cheaper"
	IntentUpgrade = "upgrade"
	IntentUnknown = "unknown"

	// unexplainedJumpRatio is the relative total change that needs a structural reason.
	unexplainedJumpRatio = 0.3
	amountTolerance      = 0.5
)

// Cue order matters: removal phrasing is checked before additive phrasing so
// "ta bort även golvvärmen" reads as a removal. Cues match whole words unless
// they end in "*"; unaccented variants cover messages typed without å, ä or ö.
var intentCues = []struct {
	intent string
	cues   []string
}{
	{IntentRemove, []string{"ta bort", "stryk", "stryka", "utan", "skippa", "exkludera*", "hoppa över", "hoppa over", "remove", "without", "drop", "skip", "exclude"}},
	{IntentCheaper, []string{"billigare", "sänk*", "spara", "sparar", "budget*", "cheaper", "lower", "reduce"}},
	{IntentUpgrade, []string{"dyrare", "premium*", "uppgradera*", "exklusiv*", "lyx*", "bättre", "battre", "upgrade*", "better"}},
	{IntentAdd, []string{"lägg till", "lagg till", "även", "aven", "också", "ocksa", "dessutom", "inkludera*", "utöka*", "utoka*", "plus", "add", "also", "include"}},
}

// DetectIntent classifies a revision message by its wording.
func DetectIntent(text string) string {
	lowered := jobs.Lower(text)
	for _, group := range intentCues {
		for _, cue := range group.cues {
			if jobs.MatchTerm(lowered, cue) {
				return group.intent
			}
		}
	}
	return IntentUnknown
}

type deltaLine struct {
	kind   string
	name   string
	amount float64
}

// CompareQuotes diffs a revised quote against its predecessor and flags price
// movements that contradict the requested change. The result is advisory.
func CompareQuotes(previous, next domain.Quote, changeText string) domain.QuoteDelta {
	prevLines := indexLines(previous)
	nextLines := indexLines(next)

	delta := domain.QuoteDelta{
		PreviousTotal: previous.Summary.TotalWithVAT,
		NewTotal:      next.Summary.TotalWithVAT,
		PriceDelta:    next.Summary.TotalWithVAT - previous.Summary.TotalWithVAT,
		Intent:        DetectIntent(changeText),
	}

	for _, key := range sortedKeys(nextLines) {
		line := nextLines[key]
		prev, ok := prevLines[key]
		switch {
		case !ok:
			delta.Added = append(delta.Added, domain.LineChange{Kind: line.kind, Name: line.name, NewAmount: line.amount})
		case math.Abs(prev.amount-line.amount) > amountTolerance:
			delta.Changed = append(delta.Changed, domain.LineChange{Kind: line.kind, Name: line.name, PreviousAmount: prev.amount, NewAmount: line.amount})
		}
	}
	for _, key := range sortedKeys(prevLines) {
		if _, ok := nextLines[key]; !ok {
			line := prevLines[key]
			delta.Removed = append(delta.Removed, domain.LineChange{Kind: line.kind, Name: line.name, PreviousAmount: line.amount})
		}
	}

	delta.Warnings = consistencyWarnings(delta)
	return delta
}

func consistencyWarnings(d domain.QuoteDelta) []string {
	var warnings []string
	switch d.Intent {
	case IntentRemove:
		if d.PriceDelta >= 0 {
			warnings = append(warnings, fmt.Sprintf("Borttagning begärdes men totalen sjönk inte (%+.0f kr)", d.PriceDelta))
		}
		if len(d.Removed) == 0 {
			warnings = append(warnings, "Borttagning begärdes men ingen rad togs bort från offerten")
		}
	case IntentCheaper:
		if d.PriceDelta >= 0 {
			warnings = append(warnings, fmt.Sprintf("Ett billigare alternativ begärdes men totalen sjönk inte (%+.0f kr)", d.PriceDelta))
		}
	case IntentAdd:
		if d.PriceDelta <= 0 {
			warnings = append(warnings, fmt.Sprintf("Tillägg begärdes men totalen ökade inte (%+.0f kr)", d.PriceDelta))
		}
	case IntentUpgrade:
		if d.PriceDelta <= 0 {
			warnings = append(warnings, fmt.Sprintf("Uppgradering begärdes men totalen ökade inte (%+.0f kr)", d.PriceDelta))
		}
	}
	if !d.Structural() && d.PreviousTotal > 0 {
		ratio := math.Abs(d.PriceDelta) / d.PreviousTotal
		if ratio > unexplainedJumpRatio {
			warnings = append(warnings, fmt.Sprintf("Totalen ändrades med %.0f %% utan att några rader lades till eller togs bort", ratio*100))
		}
	}
	return warnings
}

func indexLines(q domain.Quote) map[string]deltaLine {
	out := make(map[string]deltaLine, len(q.WorkItems)+len(q.Materials)+len(q.EquipmentLines)+1)
	add := func(kind, name string, amount float64) {
		key := kind + ":" + lineKey(name)
		if existing, ok := out[key]; ok {
			existing.amount += amount
			out[key] = existing
			return
		}
		out[key] = deltaLine{kind: kind, name: name, amount: amount}
	}
	for _, item := range q.WorkItems {
		add("work", item.Name, item.Subtotal)
	}
	for _, m := range q.Materials {
		add("material", m.Name, m.Subtotal)
	}
	for _, e := range q.EquipmentLines {
		add("equipment", e.Name, e.Subtotal)
	}
	if q.RiskMargin != nil {
		add("risk", q.RiskMargin.Label, q.RiskMargin.Amount)
	}
	return out
}

func lineKey(name string) string {
	normalized := jobs.Normalize(name)
	fields := strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, " ")
}

func sortedKeys(m map[string]deltaLine) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
