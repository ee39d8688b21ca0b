package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
)

func TestRegistryFindIsDiacriticAndAliasTolerant(t *testing.T) {
	r := NewRegistry()

	cases := map[string]string{
		"målning":  "målning",
		"MALNING":  "målning",
		"painting": "målning",
		"Badrum":   "badrum",
		"kitchen":  "kök",
		"kok":      "kök",
		"cleaning": "städning",
	}
	for input, want := range cases {
		def, ok := r.Lookup(input)
		assert.True(t, ok, input)
		assert.Equal(t, want, def.Key, input)
	}
}

func TestRegistryFindFallsBackToGeneric(t *testing.T) {
	r := NewRegistry()

	def, ok := r.Lookup("rymdraket")
	assert.False(t, ok)
	assert.Equal(t, GenericKey, def.Key)
	assert.Equal(t, GenericKey, r.Find("").Key)
}

func TestRegistryAlwaysHasGeneric(t *testing.T) {
	r := NewRegistryFrom([]domain.JobDefinition{{Key: "special", RequiredInput: []string{domain.FieldArea}}})

	assert.Equal(t, GenericKey, r.Find("unknown").Key)
	assert.Equal(t, "special", r.Find("special").Key)
}

func TestRegistryMatch(t *testing.T) {
	r := NewRegistry()

	cases := []struct {
		text string
		want string
	}{
		{"Måla 3 rum, totalt 45 kvm, standardkvalitet", "målning"},
		{"Renovera badrummet, ca 6 kvm", "badrum"},
		{"Byta golvvärme i badrum", "badrum"},
		{"Nytt kök med bänkskiva", "kök"},
		{"Byta 4 fönster i villan", "fönsterbyte"},
		{"Storstädning av lägenhet 70 kvm", "städning"},
	}
	for _, tc := range cases {
		def, ok := r.Match(tc.text)
		require.True(t, ok, tc.text)
		assert.Equal(t, tc.want, def.Key, tc.text)
	}

	def, ok := r.Match("hej hej")
	assert.False(t, ok)
	assert.Equal(t, GenericKey, def.Key)
}

func TestDefinitionsHaveValidFormulas(t *testing.T) {
	for _, def := range NewRegistry().Definitions() {
		require.NotEmpty(t, def.Tasks, def.Key)
		require.NotEmpty(t, def.Category, def.Key)
		for _, task := range def.Tasks {
			assert.NotEmpty(t, task.WorkType, "%s/%s", def.Key, task.Name)
			if task.Basis == domain.BasisFixed {
				assert.Positive(t, task.FixedHours, "%s/%s", def.Key, task.Name)
			} else {
				assert.Positive(t, task.HoursPerUnit, "%s/%s", def.Key, task.Name)
			}
		}
		for _, field := range def.RequiredInput {
			assert.NotEmpty(t, def.Question(field), "%s/%s", def.Key, field)
		}
	}
}

func TestContainsWord(t *testing.T) {
	assert.True(t, ContainsWord("byta eluttag", "el"))
	assert.False(t, ContainsWord("falla granar", "alla"))
	assert.True(t, ContainsWord("mala vaggar", "mala"))
	assert.False(t, ContainsWord("", "mala"))
}

func TestMatchTerm(t *testing.T) {
	cases := []struct {
		text, term string
		want       bool
	}{
		{"byta el i köket", "el", true},
		{"tvätta bilen eller lasta", "el", false},
		{"byta eluttag", "el*", true},
		{"i stadsdelen haga", "städ*", false},
		{"storstädning av villa", "storstäd*", true},
		{"nu ska vi städa", "städa", true},
		{"fönsterputs, putsa fönster", "putsa fönster", true},
		{"putsa fönsterkarmar", "putsa fönster", false},
		{"fasaden utanför köket", "utan", false},
		{"göra det utan tätskikt", "utan", true},
		{"koka kaffe", "kök*", false},
		{"", "el", false},
		{"el", "*", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MatchTerm(Lower(tc.text), tc.term), "%q ~ %q", tc.text, tc.term)
	}
}

func TestLowerKeepsDiacritics(t *testing.T) {
	assert.Equal(t, "städning", Lower("  Städning "))
	assert.Equal(t, "å", Lower("A\u030a"))
	assert.Equal(t, "stadning", Normalize("Städning"))
}
