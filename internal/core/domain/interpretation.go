package domain

import "strings"

type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityNormal  Complexity = "normal"
	ComplexityComplex Complexity = "complex"
)

type Accessibility string

const (
	AccessibilityEasy   Accessibility = "easy"
	AccessibilityNormal Accessibility = "normal"
	AccessibilityHard   Accessibility = "hard"
)

type QualityLevel string

const (
	QualityBudget   QualityLevel = "budget"
	QualityStandard QualityLevel = "standard"
	QualityPremium  QualityLevel = "premium"
)

type InterpretationSource string

const (
	InterpretationFromModel    InterpretationSource = "model"
	InterpretationFromFallback InterpretationSource = "fallback"
)

// Field names accepted in JobDefinition.RequiredInput and Assumption.Field.
const (
	FieldArea          = "area"
	FieldLength        = "length"
	FieldQuantity      = "quantity"
	FieldRooms         = "rooms"
	FieldComplexity    = "complexity"
	FieldAccessibility = "accessibility"
	FieldQualityLevel  = "qualityLevel"
	FieldStartMonth    = "startMonth"
	FieldLocation      = "location"
	FieldMaterial      = "customerProvidesMaterial"
)

// NumericFields are the interpretation fields that carry measured quantities.
var NumericFields = []string{FieldArea, FieldLength, FieldQuantity, FieldRooms}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Interpretation is the structured understanding of one user turn. It is built once
// per request and only read afterwards.
type Interpretation struct {
	JobType                  string               `json:"job_type"`
	Area                     *float64             `json:"area,omitempty"`
	Length                   *float64             `json:"length,omitempty"`
	Quantity                 *float64             `json:"quantity,omitempty"`
	Rooms                    *float64             `json:"rooms,omitempty"`
	Complexity               Complexity           `json:"complexity,omitempty"`
	Accessibility            Accessibility        `json:"accessibility,omitempty"`
	QualityLevel             QualityLevel         `json:"quality_level,omitempty"`
	SpecialRequirements      []string             `json:"special_requirements,omitempty"`
	Exclusions               []string             `json:"exclusions,omitempty"`
	Inclusions               []string             `json:"inclusions,omitempty"`
	CustomerProvidesMaterial bool                 `json:"customer_provides_material"`
	Assumptions              []string             `json:"assumptions,omitempty"`
	ClarificationsNeeded     []string             `json:"clarifications_needed,omitempty"`
	MissingCriticalInfo      bool                 `json:"missing_critical_info"`
	StartMonth               *int                 `json:"start_month,omitempty"`
	Location                 string               `json:"location,omitempty"`
	Source                   InterpretationSource `json:"source"`
}

// HasField reports whether the named field carries an explicit value.
func (i Interpretation) HasField(name string) bool {
	switch name {
	case FieldArea:
		return positive(i.Area)
	case FieldLength:
		return positive(i.Length)
	case FieldQuantity:
		return positive(i.Quantity)
	case FieldRooms:
		return positive(i.Rooms)
	case FieldComplexity:
		return i.Complexity != ""
	case FieldAccessibility:
		return i.Accessibility != ""
	case FieldQualityLevel:
		return i.QualityLevel != ""
	case FieldStartMonth:
		return i.StartMonth != nil && *i.StartMonth >= 1 && *i.StartMonth <= 12
	case FieldLocation:
		return strings.TrimSpace(i.Location) != ""
	default:
		return false
	}
}

// NumericValue returns the value of a numeric field or zero when absent.
func (i Interpretation) NumericValue(name string) float64 {
	var v *float64
	switch name {
	case FieldArea:
		v = i.Area
	case FieldLength:
		v = i.Length
	case FieldQuantity:
		v = i.Quantity
	case FieldRooms:
		v = i.Rooms
	}
	if v == nil {
		return 0
	}
	return *v
}

// Mentions reports whether any inclusion/exclusion/special requirement names key.
func Mentions(list []string, key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return false
	}
	for _, item := range list {
		if strings.Contains(strings.ToLower(item), key) {
			return true
		}
	}
	return false
}

func positive(v *float64) bool {
	return v != nil && *v > 0
}

func Float(v float64) *float64 {
	return &v
}
