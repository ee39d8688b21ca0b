package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
	"github.com/kirillkom/quote-assistant/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, model string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		executor:   executor,
	}
}

// Generator implements ports.TextGenerator on Ollama's JSON mode.
type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

func (g *Generator) GenerateJSON(ctx context.Context, req domain.TextRequest) (string, error) {
	return g.client.generateJSON(ctx, req.SystemInstructions, req.UserPrompt)
}

// Reasoner implements ports.DeductionReasoner for phrasing no rule covers.
type Reasoner struct {
	client *Client
}

func NewReasoner(client *Client) *Reasoner {
	return &Reasoner{client: client}
}

func (r *Reasoner) ReasonDeduction(ctx context.Context, description, workType string) (domain.ReasonerVerdict, error) {
	raw, err := r.client.generateJSON(ctx, deductionSystemPrompt, buildDeductionPrompt(description, workType))
	if err != nil {
		return domain.ReasonerVerdict{}, err
	}
	return parseVerdict(raw)
}

func (c *Client) generateJSON(ctx context.Context, system, prompt string) (string, error) {
	reqBody := map[string]any{
		"model":   c.model,
		"system":  system,
		"prompt":  prompt,
		"stream":  false,
		"format":  "json",
		"options": map[string]any{"temperature": 0},
	}

	raw, err := resilience.Do(ctx, c.executor, "ollama.generate", func(callCtx context.Context) (string, error) {
		var response struct {
			Response string `json:"response"`
		}
		if err := c.postJSON(callCtx, "/api/generate", reqBody, &response, "generate"); err != nil {
			return "", err
		}
		return strings.TrimSpace(response.Response), nil
	}, classifyOllamaError)
	if err != nil {
		return "", resilience.WrapTemporary("ollama generate", err, classifyOllamaError)
	}
	return raw, nil
}

type verdictPayload struct {
	DeductionType string          `json:"deductionType"`
	Confidence    json.RawMessage `json:"confidence"`
	Reasoning     string          `json:"reasoning"`
}

func parseVerdict(raw string) (domain.ReasonerVerdict, error) {
	var payload verdictPayload
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &payload); err != nil {
		return domain.ReasonerVerdict{}, fmt.Errorf("parse deduction verdict: %w", err)
	}
	return domain.ReasonerVerdict{
		DeductionType: domain.DeductionType(strings.ToLower(strings.TrimSpace(payload.DeductionType))),
		Confidence:    parseConfidence(payload.Confidence),
		Reasoning:     strings.TrimSpace(payload.Reasoning),
	}, nil
}

// parseConfidence accepts 0.7, "0.7" and "70%".
func parseConfidence(raw json.RawMessage) float64 {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	var v float64
	if _, err := fmt.Sscanf(strings.ReplaceAll(s, ",", "."), "%g", &v); err != nil {
		return 0
	}
	return v
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
