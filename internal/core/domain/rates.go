package domain

import "time"

type HourlyRate struct {
	WorkType string  `json:"work_type"`
	Rate     float64 `json:"rate"`
}

type EquipmentRate struct {
	Name         string  `json:"name"`
	PricePerDay  float64 `json:"price_per_day,omitempty"`
	PricePerHour float64 `json:"price_per_hour,omitempty"`
	IsRented     bool    `json:"is_rented"`
}

type Benchmark struct {
	Category    string    `json:"category"`
	MedianValue float64   `json:"median_value"`
	MinValue    float64   `json:"min_value"`
	MaxValue    float64   `json:"max_value"`
	SampleSize  int       `json:"sample_size"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type AreaRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// AreaRangeAround returns a ±tolerance window around an area, or an open range when area is unknown.
func AreaRangeAround(area, tolerance float64) AreaRange {
	if area <= 0 {
		return AreaRange{}
	}
	return AreaRange{Min: area * (1 - tolerance), Max: area * (1 + tolerance)}
}

func (r AreaRange) Open() bool {
	return r.Min <= 0 && r.Max <= 0
}

// HistoricalQuote is the slice of an accepted quote the confidence engine compares against.
type HistoricalQuote struct {
	ID                       string        `json:"id"`
	JobType                  string        `json:"job_type"`
	Area                     float64       `json:"area"`
	QualityLevel             QualityLevel  `json:"quality_level"`
	Complexity               Complexity    `json:"complexity"`
	Accessibility            Accessibility `json:"accessibility"`
	CustomerProvidesMaterial bool          `json:"customer_provides_material"`
	TotalBeforeVAT           float64       `json:"total_before_vat"`
	AcceptedAt               time.Time     `json:"accepted_at"`
}

// Multipliers are regional and seasonal price factors; zero means no data.
type Multipliers struct {
	Regional float64 `json:"regional"`
	Seasonal float64 `json:"seasonal"`
}

func (m Multipliers) Combined() float64 {
	return factor(m.Regional) * factor(m.Seasonal)
}

// TextRequest is the payload for an external text-understanding call.
type TextRequest struct {
	SystemInstructions string `json:"system_instructions"`
	UserPrompt         string `json:"user_prompt"`
}

// QuoteGeneratedEvent is published after a quote leaves the pipeline and again
// when the customer accepts it, in which case AcceptedAt is set.
type QuoteGeneratedEvent struct {
	QuoteID        string        `json:"quote_id"`
	UserID         string        `json:"user_id"`
	JobType        string        `json:"job_type"`
	Category       string        `json:"category"`
	TotalBeforeVAT float64       `json:"total_before_vat"`
	DeductionType  DeductionType `json:"deduction_type"`
	Confidence     float64       `json:"confidence"`
	GeneratedAt    time.Time     `json:"generated_at"`
	AcceptedAt     *time.Time    `json:"accepted_at,omitempty"`
}

// OccurredAt is when the event's lifecycle step happened.
func (e QuoteGeneratedEvent) OccurredAt() time.Time {
	if e.AcceptedAt != nil {
		return *e.AcceptedAt
	}
	return e.GeneratedAt
}

// AcceptedQuote is a draft the customer has accepted.
type AcceptedQuote struct {
	QuoteID        string
	UserID         string
	JobType        string
	Category       string
	TotalBeforeVAT float64
	DeductionType  DeductionType
	Confidence     float64
	GeneratedAt    time.Time
	AcceptedAt     time.Time
}

func (q AcceptedQuote) Event() QuoteGeneratedEvent {
	at := q.AcceptedAt
	return QuoteGeneratedEvent{
		QuoteID:        q.QuoteID,
		UserID:         q.UserID,
		JobType:        q.JobType,
		Category:       q.Category,
		TotalBeforeVAT: q.TotalBeforeVAT,
		DeductionType:  q.DeductionType,
		Confidence:     q.Confidence,
		GeneratedAt:    q.GeneratedAt,
		AcceptedAt:     &at,
	}
}
