package domain

// Basis selects which interpretation quantity drives a formula line.
type Basis string

const (
	BasisArea     Basis = "area"
	BasisLength   Basis = "length"
	BasisQuantity Basis = "quantity"
	BasisRooms    Basis = "rooms"
	BasisFixed    Basis = "fixed"
)

type ValidatorKind string

const (
	ValidatorGeneric  ValidatorKind = "generic"
	ValidatorKitchen  ValidatorKind = "kitchen"
	ValidatorBathroom ValidatorKind = "bathroom"
	ValidatorPainting ValidatorKind = "painting"
)

// TaskFormula converts a basis quantity into labor hours for one work item.
type TaskFormula struct {
	Name         string  `json:"name" yaml:"name"`
	Description  string  `json:"description,omitempty" yaml:"description,omitempty"`
	WorkType     string  `json:"work_type" yaml:"work_type"`
	Basis        Basis   `json:"basis" yaml:"basis"`
	HoursPerUnit float64 `json:"hours_per_unit" yaml:"hours_per_unit"`
	FixedHours   float64 `json:"fixed_hours,omitempty" yaml:"fixed_hours,omitempty"`
	MinHours     float64 `json:"min_hours,omitempty" yaml:"min_hours,omitempty"`
	DefaultRate  float64 `json:"default_rate,omitempty" yaml:"default_rate,omitempty"`
	// Option names an inclusion/exclusion keyword that toggles the task.
	Option          string `json:"option,omitempty" yaml:"option,omitempty"`
	DefaultIncluded bool   `json:"default_included,omitempty" yaml:"default_included,omitempty"`
	NotDeductible   bool   `json:"not_deductible,omitempty" yaml:"not_deductible,omitempty"`
}

type MaterialFormula struct {
	Name            string  `json:"name" yaml:"name"`
	Unit            string  `json:"unit" yaml:"unit"`
	Basis           Basis   `json:"basis" yaml:"basis"`
	QuantityPerUnit float64 `json:"quantity_per_unit" yaml:"quantity_per_unit"`
	FixedQuantity   float64 `json:"fixed_quantity,omitempty" yaml:"fixed_quantity,omitempty"`
	PricePerUnit    float64 `json:"price_per_unit" yaml:"price_per_unit"`
	Option          string  `json:"option,omitempty" yaml:"option,omitempty"`
	DefaultIncluded bool    `json:"default_included,omitempty" yaml:"default_included,omitempty"`
}

type EquipmentFormula struct {
	Name         string  `json:"name" yaml:"name"`
	Unit         string  `json:"unit" yaml:"unit"`
	Basis        Basis   `json:"basis" yaml:"basis"`
	UnitsPerUnit float64 `json:"units_per_unit" yaml:"units_per_unit"`
	FixedUnits   float64 `json:"fixed_units,omitempty" yaml:"fixed_units,omitempty"`
	Price        float64 `json:"price" yaml:"price"`
	IsRented     bool    `json:"is_rented" yaml:"is_rented"`
}

// JobDefinition is one immutable registry entry.
type JobDefinition struct {
	Key           string             `json:"key" yaml:"key"`
	Title         string             `json:"title" yaml:"title"`
	Aliases       []string           `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Keywords      []string           `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Category      string             `json:"category" yaml:"category"`
	WorkType      string             `json:"work_type" yaml:"work_type"`
	RequiredInput []string           `json:"required_input" yaml:"required_input"`
	Questions     map[string]string  `json:"questions,omitempty" yaml:"questions,omitempty"`
	Validator     ValidatorKind      `json:"validator" yaml:"validator"`
	Tasks         []TaskFormula      `json:"tasks" yaml:"tasks"`
	Materials     []MaterialFormula  `json:"materials,omitempty" yaml:"materials,omitempty"`
	Equipment     []EquipmentFormula `json:"equipment,omitempty" yaml:"equipment,omitempty"`
	Deduction     DeductionType      `json:"deduction,omitempty" yaml:"deduction,omitempty"`
}

// PrimaryBasis returns the first non-fixed basis used by the definition's tasks.
func (d JobDefinition) PrimaryBasis() Basis {
	for _, task := range d.Tasks {
		if task.Basis != BasisFixed && task.Basis != "" {
			return task.Basis
		}
	}
	return BasisFixed
}

// Question returns the clarification question registered for a field.
func (d JobDefinition) Question(field string) string {
	if q, ok := d.Questions[field]; ok && q != "" {
		return q
	}
	if q, ok := defaultFieldQuestions[field]; ok {
		return q
	}
	return "Kan du beskriva jobbet lite mer i detalj?"
}

var defaultFieldQuestions = map[string]string{
	FieldArea:          "Hur många kvadratmeter gäller det?",
	FieldLength:        "Hur många löpmeter gäller det?",
	FieldQuantity:      "Hur många enheter gäller det?",
	FieldRooms:         "Hur många rum gäller det?",
	FieldQualityLevel:  "Vilken kvalitetsnivå önskas: budget, standard eller premium?",
	FieldComplexity:    "Är det något som gör jobbet extra komplicerat?",
	FieldAccessibility: "Hur är åtkomsten till arbetsplatsen?",
	FieldLocation:      "Var ligger arbetsplatsen?",
	FieldStartMonth:    "När vill du att arbetet ska starta?",
}
