package classifier

import (
	"sort"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
	"github.com/kirillkom/quote-assistant/internal/core/jobs"
)

// RulesVersion identifies the rule table a classification was produced with.
const RulesVersion = "2025.3"

type RuleKind string

const (
	// KindExclusion rules force "none" and are final.
	KindExclusion RuleKind = "exclusion"
	KindAllow     RuleKind = "allow"
)

// Rule fires when any pattern occurs in the lower-cased text and no Unless
// pattern does. A pattern matches a whole word or phrase; a trailing "*" makes
// it a stem. Diacritics are significant, so "städ*" never matches "staden".
type Rule struct {
	ID         string
	Kind       RuleKind
	Patterns   []string
	Unless     []string
	Deduction  domain.DeductionType
	Precedence int
	Reason     string
}

func (r Rule) matches(text string) bool {
	for _, u := range r.Unless {
		if jobs.MatchTerm(text, jobs.Lower(u)) {
			return false
		}
	}
	for _, p := range r.Patterns {
		if jobs.MatchTerm(text, jobs.Lower(p)) {
			return true
		}
	}
	return false
}

type RuleTable struct {
	Version string
	Rules   []Rule
}

// Evaluate returns the first firing rule: exclusions before allow rules, then
// by descending precedence, then table order.
func (t RuleTable) Evaluate(text string) (Rule, bool) {
	lowered := jobs.Lower(text)
	for _, rule := range t.ordered() {
		if rule.matches(lowered) {
			return rule, true
		}
	}
	return Rule{}, false
}

func (t RuleTable) ordered() []Rule {
	rules := append([]Rule(nil), t.Rules...)
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Kind != rules[j].Kind {
			return rules[i].Kind == KindExclusion
		}
		return rules[i].Precedence > rules[j].Precedence
	})
	return rules
}

func DefaultRules() RuleTable {
	return RuleTable{
		Version: RulesVersion,
		Rules: []Rule{
			{
				ID:        "excl-new-construction",
				Kind:      KindExclusion,
				Patterns:  []string{"nybygg*", "nyproduktion*", "nytt hus", "new construction", "new build*"},
				Deduction: domain.DeductionNone,
				Reason:    "Nybyggnation ger inte rätt till ROT-avdrag.",
			},
			{
				ID:        "excl-third-party-property",
				Kind:      KindExclusion,
				Patterns:  []string{"grannens", "grannarnas", "hyresvärdens", "annans fastighet", "annans bostad", "kommersiell lokal", "kommersiella lokaler", "företagets lokal*", "someone else's"},
				Deduction: domain.DeductionNone,
				Reason:    "Arbete på någon annans fastighet ger inte rätt till avdrag för beställaren.",
			},
			{
				ID:        "excl-tree-felling",
				Kind:      KindExclusion,
				Patterns:  []string{"fälla", "fällning*", "trädfällning*", "tree felling", "fell tree*"},
				Unless:    []string{"beskär*"},
				Deduction: domain.DeductionNone,
				Reason:    "Trädfällning utan beskärning omfattas inte av RUT-avdraget.",
			},
			{
				ID:        "excl-material-only",
				Kind:      KindExclusion,
				Patterns:  []string{"endast material", "bara material", "enbart material", "material only", "materialleverans*"},
				Deduction: domain.DeductionNone,
				Reason:    "Avdrag gäller endast arbetskostnad, inte material.",
			},
			{
				ID:         "rut-window-cleaning",
				Kind:       KindAllow,
				Patterns:   []string{"fönsterputs*", "putsa fönster", "putsa fönstren", "window cleaning"},
				Deduction:  domain.DeductionRUT,
				Precedence: 20,
				Reason:     "Fönsterputs är ett RUT-berättigat hushållsnära tjänst.",
			},
			{
				ID:   "rut-household",
				Kind: KindAllow,
				Patterns: []string{
					"städa", "städar", "städas", "städning*", "storstäd*", "flyttstäd*", "hemstäd*", "veckostäd*",
					"flytt", "flyttning*", "flytthjälp*", "trädgård*", "gräsklippning*", "klippa gräs*", "häck", "häcken",
					"häckar*", "häckklipp*", "snöskottning*", "skotta snö", "beskär*", "ogräs*", "cleaning", "moving", "gardening",
				},
				Deduction:  domain.DeductionRUT,
				Precedence: 10,
				Reason:     "Hushållsnära tjänst som omfattas av RUT-avdraget.",
			},
			{
				ID:   "rot-renovation",
				Kind: KindAllow,
				Patterns: []string{
					"rivning*", "riva", "river", "målning*", "ommålning*", "måla*", "målar*", "tapet*", "vvs*",
					"rör", "rören", "rörarbete*", "rörmokare*", "stambyte*", "avlopp*", "badrum*", "kakel*", "kakla*",
					"plattsättning*", "golv*", "snickeri*", "snickar*", "fönster", "fönsterbyte*", "byta fönster*",
					"tak", "taket", "takbyte*", "takläggning*", "takomläggning*", "el", "elen", "elarbete*",
					"elinstallation*", "eluttag*", "elcentral*", "elektriker*", "dränering*", "fasad*", "kök*",
					"isolering*", "isolera*", "renovering*", "renovera*", "painting", "plumbing", "renovation", "renovate*",
				},
				Deduction:  domain.DeductionROT,
				Precedence: 5,
				Reason:     "Reparation, underhåll eller ombyggnad av bostad omfattas av ROT-avdraget.",
			},
		},
	}
}
