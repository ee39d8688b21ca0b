package domain

type AssumptionSource string

const (
	SourceHistory  AssumptionSource = "history"
	SourceDefault  AssumptionSource = "default"
	SourceEstimate AssumptionSource = "estimate"
	SourceModel    AssumptionSource = "model"
)

type Assumption struct {
	Text          string           `json:"text"`
	Confidence    int              `json:"confidence"`
	SourceOfTruth AssumptionSource `json:"source_of_truth"`
	CanConfirm    bool             `json:"can_confirm"`
	Field         string           `json:"field,omitempty"`
}

// ConfirmableFields lists the field names a caller can re-supply to remove an assumption.
var ConfirmableFields = map[string]bool{
	FieldArea:          true,
	FieldLength:        true,
	FieldQuantity:      true,
	FieldRooms:         true,
	FieldComplexity:    true,
	FieldAccessibility: true,
	FieldQualityLevel:  true,
	FieldMaterial:      true,
	FieldStartMonth:    true,
	FieldLocation:      true,
}
