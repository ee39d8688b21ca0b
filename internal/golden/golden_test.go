package golden

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
)

type generatorFake struct {
	results map[string]*domain.GenerateQuoteResult
	modes   []domain.QuoteMode
}

func (f *generatorFake) GenerateQuote(_ context.Context, req domain.GenerateQuoteRequest) (*domain.GenerateQuoteResult, error) {
	f.modes = append(f.modes, req.Mode)
	result, ok := f.results[req.Description]
	if !ok {
		return nil, errors.New("unscripted description")
	}
	return result, nil
}

func quoteResult(jobType string, total float64, deduction domain.DeductionType) *domain.GenerateQuoteResult {
	return &domain.GenerateQuoteResult{
		Type: domain.ResultQuote,
		Quote: &domain.Quote{
			JobType:       jobType,
			DeductionType: deduction,
			Summary:       domain.Summary{TotalWithVAT: total},
		},
	}
}

func TestLoadShippedCases(t *testing.T) {
	cases, err := LoadCases(filepath.Join("testdata", "cases.yaml"))
	require.NoError(t, err)
	require.Len(t, cases, 5)

	assert.Equal(t, "bathroom-without-floor-heating", cases[2].Name)
	require.Len(t, cases[2].History, 1)
	assert.Equal(t, "user", cases[2].History[0].Role)
	assert.Equal(t, domain.ResultClarification, cases[4].Expect.Type)
	assert.Equal(t, domain.DeductionROT, cases[0].Expect.Deduction)
}

func TestParseCasesRejectsBrokenFiles(t *testing.T) {
	broken := map[string]string{
		"empty":     "cases: []",
		"no name":   "cases:\n  - description: x",
		"duplicate": "cases:\n  - {name: a, description: x}\n  - {name: a, description: y}",
		"no text":   "cases:\n  - {name: a}",
		"bad range": "cases:\n  - {name: a, description: x, expect: {min_total: 10, max_total: 5}}",
		"not yaml":  "cases: [",
	}
	for name, doc := range broken {
		_, err := ParseCases([]byte(doc))
		require.Error(t, err, name)
		assert.True(t, domain.IsKind(err, domain.ErrInvalidInput), name)
	}
}

func TestRunChecksShapeAndPriceBand(t *testing.T) {
	gen := &generatorFake{results: map[string]*domain.GenerateQuoteResult{
		"måla":   quoteResult("målning", 12000, domain.DeductionROT),
		"badrum": quoteResult("badrum", 250000, domain.DeductionROT),
		"städa":  quoteResult("städning", 3000, domain.DeductionROT),
		"fråga": {
			Type:           domain.ResultClarification,
			Interpretation: domain.Interpretation{JobType: "målning"},
		},
	}}
	cases := []Case{
		{Name: "ok", Description: "måla", Expect: Expectation{Type: domain.ResultQuote, JobType: "målning", MinTotal: 8000, MaxTotal: 30000}},
		{Name: "too expensive", Description: "badrum", Expect: Expectation{MaxTotal: 180000}},
		{Name: "wrong deduction", Description: "städa", Expect: Expectation{Deduction: domain.DeductionRUT}},
		{Name: "clarify", Description: "fråga", Expect: Expectation{Type: domain.ResultClarification, JobType: "målning"}},
		{Name: "error", Description: "okänt"},
	}

	outcomes := Run(context.Background(), gen, cases)
	require.Len(t, outcomes, 5)

	assert.True(t, outcomes[0].Passed())
	assert.Equal(t, 12000.0, outcomes[0].Total)
	assert.Equal(t, []string{"total 250000 above 180000"}, outcomes[1].Failures)
	assert.Equal(t, []string{"deduction: want rut, got rot"}, outcomes[2].Failures)
	assert.True(t, outcomes[3].Passed())
	assert.False(t, outcomes[4].Passed())

	passed, failed := Summarize(outcomes)
	assert.Equal(t, 2, passed)
	assert.Equal(t, 3, failed)

	for _, mode := range gen.modes {
		assert.Equal(t, domain.ModeDraft, mode)
	}
}
