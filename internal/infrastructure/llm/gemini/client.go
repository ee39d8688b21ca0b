package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
	"github.com/kirillkom/quote-assistant/internal/infrastructure/resilience"
)

// contentGenerator is the subset of *genai.Models the adapter calls.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator implements ports.TextGenerator on the Gemini API with JSON output.
type Generator struct {
	models   contentGenerator
	model    string
	executor *resilience.Executor
}

func New(ctx context.Context, apiKey, model string, executor *resilience.Executor) (*Generator, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return newGenerator(cli.Models, model, executor), nil
}

func newGenerator(models contentGenerator, model string, executor *resilience.Executor) *Generator {
	if strings.TrimSpace(model) == "" {
		model = "gemini-2.5-flash"
	}
	return &Generator{models: models, model: model, executor: executor}
}

var errEmptyResponse = errors.New("gemini returned no content")

func (g *Generator) GenerateJSON(ctx context.Context, req domain.TextRequest) (string, error) {
	var temperature float32
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      &temperature,
	}
	if sys := strings.TrimSpace(req.SystemInstructions); sys != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: sys}}}
	}
	contents := []*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: req.UserPrompt}}}}

	out, err := resilience.Do(ctx, g.executor, "gemini.generate", func(callCtx context.Context) (string, error) {
		resp, err := g.models.GenerateContent(callCtx, g.model, contents, config)
		if err != nil {
			return "", err
		}
		return responseText(resp)
	}, classifyGeminiError)
	if err != nil {
		if err = resilience.WrapTemporary("gemini generate", err, classifyGeminiError); domain.IsKind(err, domain.ErrTemporary) {
			return "", err
		}
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return out, nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errEmptyResponse
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", errEmptyResponse
	}
	return text, nil
}

// apiRule retries quota and server-side API errors. Other API errors are
// caused by the request itself.
func apiRule(err error) (resilience.ErrorClassification, bool) {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return resilience.ErrorClassification{}, false
	}
	if apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError {
		return resilience.Transient, true
	}
	return resilience.Rejected, true
}

// An empty candidate list is usually a safety or sampling hiccup, not an outage.
func emptyResponseRule(err error) (resilience.ErrorClassification, bool) {
	return resilience.Flaky, errors.Is(err, errEmptyResponse)
}

var classifyGeminiError = resilience.NewClassifier(apiRule, emptyResponseRule, resilience.NetworkErrors)
