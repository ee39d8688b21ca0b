package mcpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
	"github.com/kirillkom/quote-assistant/internal/core/ports"
)

type Handlers struct {
	quotes     ports.QuoteGenerator
	classifier ports.DeductionClassifier
	catalog    ports.JobCatalog
}

func NewHandlers(quotes ports.QuoteGenerator, classifier ports.DeductionClassifier, catalog ports.JobCatalog) *Handlers {
	return &Handlers{quotes: quotes, classifier: classifier, catalog: catalog}
}

type GenerateQuoteRequest struct {
	Description   string           `json:"description"`
	History       []domain.Message `json:"history,omitempty"`
	UserID        string           `json:"user_id,omitempty"`
	Mode          string           `json:"mode,omitempty"`
	Location      string           `json:"location,omitempty"`
	PreviousQuote *domain.Quote    `json:"previous_quote,omitempty"`
}

type ClassifyDeductionRequest struct {
	Description string `json:"description"`
	WorkType    string `json:"work_type,omitempty"`
}

func (h *Handlers) HandleGenerateQuote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GenerateQuoteRequest](req)
	if err != nil {
		return errorResult(domain.WrapError(domain.ErrInvalidInput, "decode generate_quote", err)), nil
	}
	if strings.TrimSpace(input.Description) == "" {
		return errorResult(domain.WrapError(domain.ErrInvalidInput, "generate_quote", errors.New("description is required"))), nil
	}

	mode := domain.ModeDraft
	if input.Mode == string(domain.ModeFinal) {
		mode = domain.ModeFinal
	}

	result, err := h.quotes.GenerateQuote(ctx, domain.GenerateQuoteRequest{
		Description:   input.Description,
		History:       input.History,
		UserID:        input.UserID,
		PreviousQuote: input.PreviousQuote,
		Mode:          mode,
		Location:      input.Location,
	})
	if err != nil {
		slog.Warn("mcp_generate_quote_failed", "error", err)
		return errorResult(err), nil
	}
	return successResult(result)
}

func (h *Handlers) HandleClassifyDeduction(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ClassifyDeductionRequest](req)
	if err != nil {
		return errorResult(domain.WrapError(domain.ErrInvalidInput, "decode classify_deduction", err)), nil
	}
	if strings.TrimSpace(input.Description) == "" {
		return errorResult(domain.WrapError(domain.ErrInvalidInput, "classify_deduction", errors.New("description is required"))), nil
	}
	return successResult(h.classifier.Classify(ctx, input.Description, input.WorkType, nil))
}

func (h *Handlers) HandleListJobs(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	type job struct {
		Key           string   `json:"key"`
		Category      string   `json:"category"`
		RequiredInput []string `json:"required_input"`
	}
	defs := h.catalog.Definitions()
	out := make([]job, 0, len(defs))
	for _, def := range defs {
		out = append(out, job{Key: def.Key, Category: def.Category, RequiredInput: def.RequiredInput})
	}
	return successResult(map[string]any{"jobs": out})
}

// errorResult reports failures as tool errors. Internal details stay out of
// the payload unless the error is the caller's fault.
func errorResult(err error) *mcp.CallToolResult {
	code, message := "INTERNAL", "an internal error occurred"
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		code, message = "VALIDATION_FAILED", vErr.Error()
	case domain.IsKind(err, domain.ErrInvalidInput):
		code, message = "INVALID_REQUEST", err.Error()
	case domain.IsKind(err, domain.ErrTemporary):
		code, message = "UNAVAILABLE", "service temporarily unavailable"
	}

	content, _ := json.Marshal(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

func successResult(data any) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(content)), nil
}
