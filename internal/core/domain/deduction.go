package domain

type DeductionType string

const (
	DeductionROT  DeductionType = "rot"
	DeductionRUT  DeductionType = "rut"
	DeductionNone DeductionType = "none"
)

func ParseDeductionType(raw string) (DeductionType, bool) {
	switch DeductionType(raw) {
	case DeductionROT, DeductionRUT, DeductionNone:
		return DeductionType(raw), true
	default:
		return DeductionNone, false
	}
}

type ClassificationSource string

const (
	ClassifiedByRule    ClassificationSource = "rule"
	ClassifiedByModel   ClassificationSource = "model"
	ClassifiedByDefault ClassificationSource = "default"
)

type ItemClassification struct {
	Name          string        `json:"name"`
	DeductionType DeductionType `json:"deduction_type"`
	RuleID        string        `json:"rule_id,omitempty"`
}

type Classification struct {
	DeductionType DeductionType        `json:"deduction_type"`
	Confidence    float64              `json:"confidence"`
	Reasoning     string               `json:"reasoning"`
	Source        ClassificationSource `json:"source"`
	RuleID        string               `json:"rule_id,omitempty"`
	RuleVersion   string               `json:"rule_version,omitempty"`
	PerItem       []ItemClassification `json:"per_item,omitempty"`
}

// ReasonerVerdict is what an external reasoning call may suggest for phrasing no rule covers.
type ReasonerVerdict struct {
	DeductionType DeductionType `json:"deduction_type"`
	Confidence    float64       `json:"confidence"`
	Reasoning     string        `json:"reasoning"`
}

// Recipient is one owner sharing a deduction; shares are normalized before use.
type Recipient struct {
	Name         string   `json:"name,omitempty"`
	Share        float64  `json:"share"`
	RemainingCap *float64 `json:"remaining_cap,omitempty"`
}
