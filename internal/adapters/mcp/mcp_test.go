package mcpadapter

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
	"github.com/kirillkom/quote-assistant/internal/core/jobs"
)

type quoteGeneratorFake struct {
	last   domain.GenerateQuoteRequest
	result *domain.GenerateQuoteResult
	err    error
}

func (f *quoteGeneratorFake) GenerateQuote(_ context.Context, req domain.GenerateQuoteRequest) (*domain.GenerateQuoteResult, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type classifierFake struct{}

func (classifierFake) Classify(_ context.Context, description, _ string, _ []domain.WorkItem) domain.Classification {
	return domain.Classification{DeductionType: domain.DeductionROT, Confidence: 0.9, Reasoning: description, Source: domain.ClassifiedByRule}
}

func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) != 1 {
		t.Fatalf("expected one content block, got %d", len(result.Content))
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return text.Text
}

func TestHandleGenerateQuoteDefaultsToDraft(t *testing.T) {
	quotes := &quoteGeneratorFake{result: &domain.GenerateQuoteResult{Type: domain.ResultClarification, Question: "Hur många kvm?"}}
	h := NewHandlers(quotes, classifierFake{}, jobs.NewRegistry())

	result, err := h.HandleGenerateQuote(context.Background(), makeRequest(map[string]any{
		"description": "Måla vardagsrummet",
		"history":     []any{map[string]any{"role": "user", "content": "Hej"}},
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got %s", resultText(t, result))
	}
	if quotes.last.Mode != domain.ModeDraft {
		t.Fatalf("expected draft mode, got %q", quotes.last.Mode)
	}
	if len(quotes.last.History) != 1 || quotes.last.History[0].Content != "Hej" {
		t.Fatalf("history not forwarded: %+v", quotes.last.History)
	}

	var out domain.GenerateQuoteResult
	if err := json.Unmarshal([]byte(resultText(t, result)), &out); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if out.Type != domain.ResultClarification || out.Question == "" {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestHandleGenerateQuoteRequiresDescription(t *testing.T) {
	quotes := &quoteGeneratorFake{}
	h := NewHandlers(quotes, classifierFake{}, jobs.NewRegistry())

	result, err := h.HandleGenerateQuote(context.Background(), makeRequest(map[string]any{"description": "  "}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected tool error")
	}
	if !strings.Contains(resultText(t, result), "INVALID_REQUEST") {
		t.Fatalf("expected INVALID_REQUEST, got %s", resultText(t, result))
	}
}

func TestHandleGenerateQuoteHidesInternalErrors(t *testing.T) {
	quotes := &quoteGeneratorFake{err: domain.WrapError(domain.ErrTemporary, "fetch rates", context.DeadlineExceeded)}
	h := NewHandlers(quotes, classifierFake{}, jobs.NewRegistry())

	result, err := h.HandleGenerateQuote(context.Background(), makeRequest(map[string]any{"description": "Måla 45 kvm", "mode": "final"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := resultText(t, result)
	if !result.IsError || !strings.Contains(text, "UNAVAILABLE") || strings.Contains(text, "deadline") {
		t.Fatalf("unexpected error payload: %s", text)
	}
	if quotes.last.Mode != domain.ModeFinal {
		t.Fatalf("expected final mode, got %q", quotes.last.Mode)
	}
}

func TestHandleClassifyDeduction(t *testing.T) {
	h := NewHandlers(&quoteGeneratorFake{}, classifierFake{}, jobs.NewRegistry())

	result, err := h.HandleClassifyDeduction(context.Background(), makeRequest(map[string]any{"description": "Byta tak"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out domain.Classification
	if err := json.Unmarshal([]byte(resultText(t, result)), &out); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if out.DeductionType != domain.DeductionROT || out.Reasoning != "Byta tak" {
		t.Fatalf("unexpected classification: %+v", out)
	}
}

func TestHandleListJobs(t *testing.T) {
	h := NewHandlers(&quoteGeneratorFake{}, classifierFake{}, jobs.NewRegistry())

	result, err := h.HandleListJobs(context.Background(), makeRequest(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(resultText(t, result), `"badrum"`) {
		t.Fatalf("expected badrum in job list")
	}
}

func TestNewServerRegistersAllTools(t *testing.T) {
	s := NewServer(&quoteGeneratorFake{}, classifierFake{}, jobs.NewRegistry(), "test")
	if s == nil {
		t.Fatalf("expected server")
	}
	for name, entry := range toolRegistry {
		if entry.def.Name != name {
			t.Fatalf("tool %q registered under %q", entry.def.Name, name)
		}
	}
}
