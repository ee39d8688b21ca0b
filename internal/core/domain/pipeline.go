package domain

import "time"

type QuoteMode string

const (
	ModeDraft QuoteMode = "draft"
	ModeFinal QuoteMode = "final"
)

type ResultType string

const (
	ResultClarification ResultType = "clarification"
	ResultQuote         ResultType = "quote"
)

type GenerateQuoteRequest struct {
	Description   string      `json:"description"`
	History       []Message   `json:"history,omitempty"`
	UserID        string      `json:"user_id"`
	PreviousQuote *Quote      `json:"previous_quote,omitempty"`
	Mode          QuoteMode   `json:"mode,omitempty"`
	Recipients    []Recipient `json:"recipients,omitempty"`
	Location      string      `json:"location,omitempty"`
}

// GenerateQuoteResult is either a clarification request or a priced quote.
type GenerateQuoteResult struct {
	Type                ResultType     `json:"type"`
	Question            string         `json:"question,omitempty"`
	Questions           []string       `json:"questions,omitempty"`
	Quote               *Quote         `json:"quote,omitempty"`
	Confidence          float64        `json:"confidence,omitempty"`
	Warnings            []string       `json:"warnings,omitempty"`
	ConsistencyWarnings []string       `json:"consistency_warnings,omitempty"`
	NeedsReview         bool           `json:"needs_review,omitempty"`
	Interpretation      Interpretation `json:"interpretation"`
	Delta               *QuoteDelta    `json:"delta,omitempty"`
}

type LineChange struct {
	Kind           string  `json:"kind"`
	Name           string  `json:"name"`
	PreviousAmount float64 `json:"previous_amount"`
	NewAmount      float64 `json:"new_amount"`
}

// QuoteDelta describes how a revision differs from the quote it was derived from.
type QuoteDelta struct {
	Added         []LineChange `json:"added,omitempty"`
	Removed       []LineChange `json:"removed,omitempty"`
	Changed       []LineChange `json:"changed,omitempty"`
	PreviousTotal float64      `json:"previous_total"`
	NewTotal      float64      `json:"new_total"`
	PriceDelta    float64      `json:"price_delta"`
	Intent        string       `json:"intent"`
	Warnings      []string     `json:"warnings,omitempty"`
}

func (d QuoteDelta) Structural() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0
}

// PipelineLimits bounds the orchestrator's external calls and input size.
type PipelineLimits struct {
	StoreTimeout         time.Duration
	SinkTimeout          time.Duration
	MaxDescriptionLength int
}
