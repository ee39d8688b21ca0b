package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
)

// ParseError reports why a model response could not be read as an interpretation.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse interpretation: %s: %v", e.Reason, e.Err)
	}
	return "parse interpretation: " + e.Reason
}

func (e *ParseError) Unwrap() error {
	return domain.ErrInterpretation
}

// flexNumber accepts 45, "45", "45,5", "ca 45 kvm" and null.
type flexNumber struct {
	value *float64
}

var firstNumber = regexp.MustCompile(`-?\d+(?:[.,]\d+)?`)

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		n.value = &f
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("number: unsupported value %s", string(data))
	}
	match := firstNumber.FindString(s)
	if match == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", "."), 64)
	if err != nil {
		return nil
	}
	n.value = &parsed
	return nil
}

// flexStrings accepts either a list of strings or a single string.
type flexStrings []string

func (s *flexStrings) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = compactStrings(list)
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("string list: unsupported value %s", string(data))
	}
	*s = compactStrings([]string{single})
	return nil
}

// flexBool accepts true, "true", "ja", "yes".
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*b = flexBool(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "ja", "yes", "1":
		*b = true
	}
	return nil
}

type modelInterpretation struct {
	JobType                  string      `json:"jobType"`
	Area                     flexNumber  `json:"area"`
	Length                   flexNumber  `json:"length"`
	Quantity                 flexNumber  `json:"quantity"`
	Rooms                    flexNumber  `json:"rooms"`
	Complexity               string      `json:"complexity"`
	Accessibility            string      `json:"accessibility"`
	QualityLevel             string      `json:"qualityLevel"`
	SpecialRequirements      flexStrings `json:"specialRequirements"`
	Exclusions               flexStrings `json:"exclusions"`
	Inclusions               flexStrings `json:"inclusions"`
	CustomerProvidesMaterial flexBool    `json:"customerProvidesMaterial"`
	Assumptions              flexStrings `json:"assumptions"`
	ClarificationsNeeded     flexStrings `json:"clarificationsNeeded"`
	MissingCriticalInfo      flexBool    `json:"missingCriticalInfo"`
	StartMonth               flexNumber  `json:"startMonth"`
	Location                 string      `json:"location"`
}

var codeFence = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)```")

// parseInterpretation is the only place untrusted model output becomes a typed
// Interpretation. It never guesses: unknown enum values are left empty.
func parseInterpretation(raw string) (domain.Interpretation, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return domain.Interpretation{}, &ParseError{Reason: "empty response"}
	}
	if m := codeFence.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}
	text = extractJSONObject(text)
	if !strings.HasPrefix(text, "{") {
		return domain.Interpretation{}, &ParseError{Reason: "no json object in response"}
	}

	var m modelInterpretation
	if err := json.Unmarshal([]byte(text), &m); err != nil {
		return domain.Interpretation{}, &ParseError{Reason: "invalid json", Err: err}
	}

	interp := domain.Interpretation{
		JobType:                  strings.TrimSpace(m.JobType),
		Area:                     positiveOrNil(m.Area.value),
		Length:                   positiveOrNil(m.Length.value),
		Quantity:                 positiveOrNil(m.Quantity.value),
		Rooms:                    positiveOrNil(m.Rooms.value),
		Complexity:               parseComplexity(m.Complexity),
		Accessibility:            parseAccessibility(m.Accessibility),
		QualityLevel:             parseQuality(m.QualityLevel),
		SpecialRequirements:      []string(m.SpecialRequirements),
		Exclusions:               []string(m.Exclusions),
		Inclusions:               []string(m.Inclusions),
		CustomerProvidesMaterial: bool(m.CustomerProvidesMaterial),
		Assumptions:              []string(m.Assumptions),
		ClarificationsNeeded:     []string(m.ClarificationsNeeded),
		MissingCriticalInfo:      bool(m.MissingCriticalInfo),
		Location:                 strings.TrimSpace(m.Location),
		Source:                   domain.InterpretationFromModel,
	}
	if m.StartMonth.value != nil {
		month := int(*m.StartMonth.value)
		if month >= 1 && month <= 12 {
			interp.StartMonth = &month
		}
	}
	return interp, nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}

func positiveOrNil(v *float64) *float64 {
	if v == nil || *v <= 0 {
		return nil
	}
	return v
}

func parseComplexity(raw string) domain.Complexity {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "simple", "enkel", "enkelt", "low", "låg":
		return domain.ComplexitySimple
	case "normal", "medium", "medel", "standard":
		return domain.ComplexityNormal
	case "complex", "komplex", "komplext", "high", "hög", "svår":
		return domain.ComplexityComplex
	default:
		return ""
	}
}

func parseAccessibility(raw string) domain.Accessibility {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "easy", "lätt", "enkel", "god", "good":
		return domain.AccessibilityEasy
	case "normal", "medium", "medel":
		return domain.AccessibilityNormal
	case "hard", "svår", "dålig", "difficult", "poor":
		return domain.AccessibilityHard
	default:
		return ""
	}
}

func parseQuality(raw string) domain.QualityLevel {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "budget", "billig", "ekonomi", "low", "enkel":
		return domain.QualityBudget
	case "standard", "normal", "mellan", "medium":
		return domain.QualityStandard
	case "premium", "exklusiv", "lyx", "high", "hög":
		return domain.QualityPremium
	default:
		return ""
	}
}

func compactStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
