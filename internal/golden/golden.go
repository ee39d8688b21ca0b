// Package golden replays recorded job descriptions through the quote pipeline
// and checks each result against an expected shape and price band.
package golden

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
	"github.com/kirillkom/quote-assistant/internal/core/ports"
)

type Case struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	History     []domain.Message `yaml:"history"`
	UserID      string           `yaml:"user_id"`
	Location    string           `yaml:"location"`
	Expect      Expectation      `yaml:"expect"`
}

// Expectation bounds are inclusive; zero means unchecked.
type Expectation struct {
	Type      domain.ResultType    `yaml:"type"`
	JobType   string               `yaml:"job_type"`
	Deduction domain.DeductionType `yaml:"deduction"`
	MinTotal  float64              `yaml:"min_total"`
	MaxTotal  float64              `yaml:"max_total"`
}

type Outcome struct {
	Case     string
	Type     domain.ResultType
	Total    float64
	Failures []string
}

func (o Outcome) Passed() bool {
	return len(o.Failures) == 0
}

func LoadCases(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read golden cases: %w", err)
	}
	return ParseCases(data)
}

func ParseCases(data []byte) ([]Case, error) {
	var doc struct {
		Cases []Case `yaml:"cases"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse golden cases", err)
	}
	if len(doc.Cases) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse golden cases", errors.New("no cases"))
	}

	seen := make(map[string]struct{}, len(doc.Cases))
	for i, c := range doc.Cases {
		if strings.TrimSpace(c.Name) == "" {
			return nil, domain.WrapError(domain.ErrInvalidInput, "parse golden cases", fmt.Errorf("case %d has no name", i))
		}
		if _, dup := seen[c.Name]; dup {
			return nil, domain.WrapError(domain.ErrInvalidInput, "parse golden cases", fmt.Errorf("duplicate case %q", c.Name))
		}
		seen[c.Name] = struct{}{}
		if strings.TrimSpace(c.Description) == "" {
			return nil, domain.WrapError(domain.ErrInvalidInput, "parse golden cases", fmt.Errorf("case %q has no description", c.Name))
		}
		if c.Expect.MaxTotal > 0 && c.Expect.MinTotal > c.Expect.MaxTotal {
			return nil, domain.WrapError(domain.ErrInvalidInput, "parse golden cases", fmt.Errorf("case %q: min_total above max_total", c.Name))
		}
	}
	return doc.Cases, nil
}

// Run replays every case in draft mode so nothing is archived or published.
func Run(ctx context.Context, generator ports.QuoteGenerator, cases []Case) []Outcome {
	outcomes := make([]Outcome, 0, len(cases))
	for _, c := range cases {
		outcomes = append(outcomes, runCase(ctx, generator, c))
	}
	return outcomes
}

func runCase(ctx context.Context, generator ports.QuoteGenerator, c Case) Outcome {
	out := Outcome{Case: c.Name}

	result, err := generator.GenerateQuote(ctx, domain.GenerateQuoteRequest{
		Description: c.Description,
		History:     c.History,
		UserID:      c.UserID,
		Location:    c.Location,
		Mode:        domain.ModeDraft,
	})
	if err != nil {
		out.Failures = append(out.Failures, fmt.Sprintf("pipeline error: %v", err))
		return out
	}
	out.Type = result.Type

	if c.Expect.Type != "" && result.Type != c.Expect.Type {
		out.Failures = append(out.Failures, fmt.Sprintf("type: want %s, got %s", c.Expect.Type, result.Type))
	}
	if result.Quote == nil {
		if c.Expect.JobType != "" && result.Interpretation.JobType != c.Expect.JobType {
			out.Failures = append(out.Failures, fmt.Sprintf("job type: want %s, got %s", c.Expect.JobType, result.Interpretation.JobType))
		}
		return out
	}

	q := result.Quote
	out.Total = q.Summary.TotalWithVAT
	if c.Expect.JobType != "" && q.JobType != c.Expect.JobType {
		out.Failures = append(out.Failures, fmt.Sprintf("job type: want %s, got %s", c.Expect.JobType, q.JobType))
	}
	if c.Expect.Deduction != "" && q.DeductionType != c.Expect.Deduction {
		out.Failures = append(out.Failures, fmt.Sprintf("deduction: want %s, got %s", c.Expect.Deduction, q.DeductionType))
	}
	if c.Expect.MinTotal > 0 && out.Total < c.Expect.MinTotal {
		out.Failures = append(out.Failures, fmt.Sprintf("total %.0f below %.0f", out.Total, c.Expect.MinTotal))
	}
	if c.Expect.MaxTotal > 0 && out.Total > c.Expect.MaxTotal {
		out.Failures = append(out.Failures, fmt.Sprintf("total %.0f above %.0f", out.Total, c.Expect.MaxTotal))
	}
	return out
}

// Summarize counts passing and failing outcomes.
func Summarize(outcomes []Outcome) (passed, failed int) {
	for _, o := range outcomes {
		if o.Passed() {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}
