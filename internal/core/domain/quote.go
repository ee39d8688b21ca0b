package domain

import (
	"math"
	"time"
)

type WorkItem struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Hours       float64 `json:"hours"`
	HourlyRate  float64 `json:"hourly_rate"`
	Subtotal    float64 `json:"subtotal"`
	WorkerType  string  `json:"worker_type,omitempty"`
	RotEligible bool    `json:"rot_eligible"`
}

// NewWorkItem builds a work item with its subtotal derived from hours and rate.
func NewWorkItem(name, workerType string, hours, rate float64) WorkItem {
	item := WorkItem{Name: name, WorkerType: workerType, Hours: RoundTo(hours, 2), HourlyRate: RoundTo(rate, 2)}
	item.Recalculate()
	return item
}

func (w *WorkItem) Recalculate() {
	w.Subtotal = RoundTo(w.Hours*w.HourlyRate, 2)
}

type Material struct {
	Name         string  `json:"name"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	PricePerUnit float64 `json:"price_per_unit"`
	Subtotal     float64 `json:"subtotal"`
}

func NewMaterial(name, unit string, quantity, price float64) Material {
	m := Material{Name: name, Unit: unit, Quantity: RoundTo(quantity, 2), PricePerUnit: RoundTo(price, 2)}
	m.Recalculate()
	return m
}

func (m *Material) Recalculate() {
	m.Subtotal = RoundTo(m.Quantity*m.PricePerUnit, 2)
}

const (
	EquipmentPerDay  = "day"
	EquipmentPerHour = "hour"
)

type EquipmentLine struct {
	Name     string  `json:"name"`
	Unit     string  `json:"unit"`
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
	IsRented bool    `json:"is_rented"`
	Subtotal float64 `json:"subtotal"`
}

func NewEquipmentLine(name, unit string, quantity, price float64, rented bool) EquipmentLine {
	if unit != EquipmentPerHour {
		unit = EquipmentPerDay
	}
	e := EquipmentLine{Name: name, Unit: unit, Quantity: RoundTo(quantity, 2), Price: RoundTo(price, 2), IsRented: rented}
	e.Recalculate()
	return e
}

func (e *EquipmentLine) Recalculate() {
	e.Subtotal = RoundTo(e.Quantity*e.Price, 2)
}

// AdjustmentLine is a labeled amount added on top of the line items, such as a contingency.
type AdjustmentLine struct {
	Label  string  `json:"label"`
	Reason string  `json:"reason"`
	Rate   float64 `json:"rate"`
	Amount float64 `json:"amount"`
}

type RecipientDeduction struct {
	Name   string  `json:"name,omitempty"`
	Share  float64 `json:"share"`
	Cap    float64 `json:"cap"`
	Amount float64 `json:"amount"`
}

type RotRutDeduction struct {
	Type                DeductionType        `json:"type"`
	LaborCostExclVAT    float64              `json:"labor_cost_excl_vat"`
	LaborCostInclVAT    float64              `json:"labor_cost_incl_vat"`
	DeductionRate       float64              `json:"deduction_rate"`
	DeductionCap        float64              `json:"deduction_cap"`
	DeductionAmount     float64              `json:"deduction_amount"`
	PriceAfterDeduction float64              `json:"price_after_deduction"`
	Recipients          []RecipientDeduction `json:"recipients,omitempty"`
}

type Summary struct {
	WorkCost        float64          `json:"work_cost"`
	MaterialCost    float64          `json:"material_cost"`
	EquipmentCost   float64          `json:"equipment_cost"`
	RiskMargin      float64          `json:"risk_margin,omitempty"`
	TotalBeforeVAT  float64          `json:"total_before_vat"`
	VATAmount       float64          `json:"vat_amount"`
	TotalWithVAT    float64          `json:"total_with_vat"`
	RotRutDeduction *RotRutDeduction `json:"rot_rut_deduction,omitempty"`
	CustomerPays    float64          `json:"customer_pays"`
}

// TotalHours sums hours across work items.
func (q Quote) TotalHours() float64 {
	var total float64
	for _, item := range q.WorkItems {
		total += item.Hours
	}
	return total
}

type Quote struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	JobType        string          `json:"job_type"`
	WorkItems      []WorkItem      `json:"work_items"`
	Materials      []Material      `json:"materials"`
	EquipmentLines []EquipmentLine `json:"equipment_lines"`
	RiskMargin     *AdjustmentLine `json:"risk_margin,omitempty"`
	Summary        Summary         `json:"summary"`
	Assumptions    []Assumption    `json:"assumptions"`
	DeductionType  DeductionType   `json:"deduction_type"`
	Confidence     float64         `json:"confidence"`
	NeedsReview    bool            `json:"needs_review"`
	Warnings       []string        `json:"warnings,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Clone returns a deep copy so a revision never mutates the quote it derives from.
func (q Quote) Clone() Quote {
	out := q
	out.WorkItems = append([]WorkItem(nil), q.WorkItems...)
	out.Materials = append([]Material(nil), q.Materials...)
	out.EquipmentLines = append([]EquipmentLine(nil), q.EquipmentLines...)
	out.Assumptions = append([]Assumption(nil), q.Assumptions...)
	out.Warnings = append([]string(nil), q.Warnings...)
	if q.RiskMargin != nil {
		rm := *q.RiskMargin
		out.RiskMargin = &rm
	}
	if q.Summary.RotRutDeduction != nil {
		d := *q.Summary.RotRutDeduction
		d.Recipients = append([]RecipientDeduction(nil), d.Recipients...)
		out.Summary.RotRutDeduction = &d
	}
	return out
}

func RoundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
