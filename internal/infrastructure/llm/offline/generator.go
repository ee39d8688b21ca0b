// Package offline interprets job descriptions with keyword rules so the quote
// pipeline can run without a model endpoint.
package offline

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
	"github.com/kirillkom/quote-assistant/internal/core/jobs"
)

const descriptionMarker = "Beskrivning: "

var (
	areaPattern     = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(?:kvm|m2|m²|kvadrat)`)
	lengthPattern   = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(?:löpmeter|meter|lpm|m)\b`)
	roomsPattern    = regexp.MustCompile(`(\d+)\s*(?:rum|sovrum)\b`)
	quantityPattern = regexp.MustCompile(`(\d+)\s*(?:st|stycken|fönster|dörrar|dörr|uttag|punkter)\b`)
	monthNames      = []string{"januari", "februari", "mars", "april", "maj", "juni", "juli", "augusti", "september", "oktober", "november", "december"}
)

type Generator struct {
	registry *jobs.Registry
}

func New(registry *jobs.Registry) *Generator {
	if registry == nil {
		registry = jobs.NewRegistry()
	}
	return &Generator{registry: registry}
}

type interpretation struct {
	JobType                  string   `json:"jobType"`
	Area                     *float64 `json:"area"`
	Length                   *float64 `json:"length"`
	Quantity                 *float64 `json:"quantity"`
	Rooms                    *float64 `json:"rooms"`
	Complexity               string   `json:"complexity,omitempty"`
	Accessibility            string   `json:"accessibility,omitempty"`
	QualityLevel             string   `json:"qualityLevel,omitempty"`
	Exclusions               []string `json:"exclusions,omitempty"`
	CustomerProvidesMaterial bool     `json:"customerProvidesMaterial"`
	MissingCriticalInfo      bool     `json:"missingCriticalInfo"`
	StartMonth               *int     `json:"startMonth,omitempty"`
}

// GenerateJSON reads the whole conversation in the prompt. Later turns override
// measurements from earlier ones.
func (g *Generator) GenerateJSON(ctx context.Context, req domain.TextRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	description := req.UserPrompt
	if idx := strings.LastIndex(description, descriptionMarker); idx >= 0 {
		description = description[idx+len(descriptionMarker):]
	}
	conversation := strings.ToLower(req.UserPrompt)

	def, _ := g.registry.Match(req.UserPrompt)

	out := interpretation{
		JobType:                  def.Key,
		Area:                     lastNumber(areaPattern, conversation),
		Rooms:                    lastNumber(roomsPattern, conversation),
		Quantity:                 lastNumber(quantityPattern, conversation),
		Complexity:               keyword(conversation, map[string][]string{"complex": {"komplex", "krånglig", "svår"}, "simple": {"enkel", "enkelt"}}),
		Accessibility:            keyword(conversation, map[string][]string{"hard": {"svåråtkomlig", "trång", "vind", "hög höjd"}, "easy": {"lättåtkomlig", "bottenplan"}}),
		QualityLevel:             keyword(conversation, map[string][]string{"premium": {"premium", "lyx", "exklusiv"}, "budget": {"budget", "billig", "enklaste"}, "standard": {"standard"}}),
		Exclusions:               exclusions(strings.ToLower(description)),
		CustomerProvidesMaterial: strings.Contains(conversation, "eget material") || strings.Contains(conversation, "kunden står för material"),
		StartMonth:               startMonth(conversation),
	}
	if out.Area == nil {
		out.Length = lastNumber(lengthPattern, conversation)
	}
	for _, field := range def.RequiredInput {
		if !present(out, field) {
			out.MissingCriticalInfo = true
		}
	}

	payload, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

func lastNumber(pattern *regexp.Regexp, text string) *float64 {
	matches := pattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(matches[len(matches)-1][1], ",", "."), 64)
	if err != nil || v <= 0 {
		return nil
	}
	return &v
}

func keyword(text string, options map[string][]string) string {
	for _, value := range []string{"premium", "budget", "complex", "simple", "hard", "easy", "standard"} {
		for _, cue := range options[value] {
			if strings.Contains(text, cue) {
				return value
			}
		}
	}
	return ""
}

func exclusions(text string) []string {
	var out []string
	for _, marker := range []string{"ta bort ", "utan "} {
		idx := strings.Index(text, marker)
		if idx < 0 {
			continue
		}
		rest := strings.Fields(text[idx+len(marker):])
		if len(rest) > 0 {
			out = append(out, strings.Trim(rest[0], ".,!?"))
		}
	}
	return out
}

func startMonth(text string) *int {
	for i, name := range monthNames {
		if jobs.ContainsWord(text, name) {
			month := i + 1
			return &month
		}
	}
	return nil
}

func present(out interpretation, field string) bool {
	switch field {
	case domain.FieldArea:
		return out.Area != nil
	case domain.FieldLength:
		return out.Length != nil
	case domain.FieldQuantity:
		return out.Quantity != nil
	case domain.FieldRooms:
		return out.Rooms != nil
	default:
		return true
	}
}

// ReasonDeduction never has an opinion; rule coverage decides offline.
func (g *Generator) ReasonDeduction(context.Context, string, string) (domain.ReasonerVerdict, error) {
	return domain.ReasonerVerdict{DeductionType: domain.DeductionNone, Reasoning: "offline: ingen modell tillgänglig"}, nil
}
