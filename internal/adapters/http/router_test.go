package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kirillkom/quote-assistant/internal/config"
	"github.com/kirillkom/quote-assistant/internal/core/domain"
	"github.com/kirillkom/quote-assistant/internal/core/jobs"
	"github.com/kirillkom/quote-assistant/internal/observability/metrics"
)

type quoteGeneratorFake struct {
	mu       sync.Mutex
	result   *domain.GenerateQuoteResult
	err      error
	requests []domain.GenerateQuoteRequest
}

func (f *quoteGeneratorFake) GenerateQuote(_ context.Context, req domain.GenerateQuoteRequest) (*domain.GenerateQuoteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &domain.GenerateQuoteResult{Type: domain.ResultClarification, Question: "Hur stor är ytan?"}, nil
}

type classifierFake struct{}

func (classifierFake) Classify(_ context.Context, description, _ string, _ []domain.WorkItem) domain.Classification {
	if strings.Contains(strings.ToLower(description), "städ") {
		return domain.Classification{DeductionType: domain.DeductionRUT, Confidence: 0.9, Source: domain.ClassifiedByRule}
	}
	return domain.Classification{DeductionType: domain.DeductionROT, Confidence: 0.9, Source: domain.ClassifiedByRule}
}

type acceptorFake struct {
	accepted map[string]string
}

func (f *acceptorFake) MarkAccepted(_ context.Context, userID, quoteID string, _ time.Time) error {
	if quoteID == "missing" {
		return domain.WrapError(domain.ErrNotFound, "mark quote accepted", fmt.Errorf("quote %s", quoteID))
	}
	if f.accepted == nil {
		f.accepted = make(map[string]string)
	}
	f.accepted[quoteID] = userID
	return nil
}

type archiveFake struct {
	snapshots map[string]string
}

func (f archiveFake) Save(context.Context, string, io.Reader) error {
	return nil
}

func (f archiveFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	payload, ok := f.snapshots[key]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "open snapshot", io.EOF)
	}
	return io.NopCloser(strings.NewReader(payload)), nil
}

func newTestHandler(t *testing.T, cfg config.Config, quotes *quoteGeneratorFake, opts ...Option) http.Handler {
	t.Helper()
	if cfg.MaxDescriptionLength == 0 {
		cfg.MaxDescriptionLength = 4000
	}
	cfg.APIOpenAPIValidation = true
	handler, err := NewRouter(cfg, quotes, classifierFake{}, jobs.NewRegistry(), opts...).Handler()
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	return handler
}

func postJSON(t *testing.T, handler http.Handler, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func TestGenerateQuoteReturnsPipelineResult(t *testing.T) {
	quote := &domain.Quote{ID: "q-1", JobType: "målning"}
	quotes := &quoteGeneratorFake{result: &domain.GenerateQuoteResult{Type: domain.ResultQuote, Quote: quote, Confidence: 0.8}}
	handler := newTestHandler(t, config.Config{}, quotes)

	res := postJSON(t, handler, "/v1/quotes", map[string]any{
		"description": "Måla 3 rum, 45 kvm",
		"user_id":     "u-1",
		"mode":        "final",
		"recipients":  []map[string]any{{"name": "Anna", "share": 0.5}, {"name": "Erik", "share": 0.5}},
	}, nil)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if res.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected request id header")
	}
	var body domain.GenerateQuoteResult
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Type != domain.ResultQuote || body.Quote == nil || body.Quote.ID != "q-1" {
		t.Fatalf("unexpected body: %+v", body)
	}
	if len(quotes.requests) != 1 || len(quotes.requests[0].Recipients) != 2 || quotes.requests[0].Mode != domain.ModeFinal {
		t.Fatalf("request not forwarded intact: %+v", quotes.requests)
	}
}

func TestGenerateQuoteRejectsContractViolations(t *testing.T) {
	quotes := &quoteGeneratorFake{}
	handler := newTestHandler(t, config.Config{}, quotes)

	cases := map[string]map[string]any{
		"missing description": {"user_id": "u-1"},
		"unknown mode":        {"description": "Måla", "mode": "later"},
		"share above one":     {"description": "Måla", "recipients": []map[string]any{{"share": 1.5}}},
		"empty description":   {"description": ""},
	}
	for name, body := range cases {
		res := postJSON(t, handler, "/v1/quotes", body, nil)
		if res.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d: %s", name, res.Code, res.Body.String())
		}
	}
	if len(quotes.requests) != 0 {
		t.Fatalf("invalid requests must not reach the pipeline")
	}
}

func TestGenerateQuoteMapsValidationFailureTo422(t *testing.T) {
	quotes := &quoteGeneratorFake{err: &domain.ValidationError{
		JobType: "badrum",
		Result: domain.ValidationResult{
			Errors: []domain.ValidationIssue{{Code: "missing_waterproofing", Message: "Tätskikt saknas"}},
		},
	}}
	handler := newTestHandler(t, config.Config{}, quotes)

	res := postJSON(t, handler, "/v1/quotes", map[string]any{"description": "Renovera badrum 5 kvm"}, nil)
	if res.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", res.Code)
	}
	var body validationErrorBody
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.JobType != "badrum" || len(body.Errors) != 1 || body.Errors[0].Code != "missing_waterproofing" {
		t.Fatalf("unexpected validation body: %+v", body)
	}
}

func TestGenerateQuoteHidesInternalErrors(t *testing.T) {
	quotes := &quoteGeneratorFake{err: domain.WrapError(domain.ErrTemporary, "fetch rates", io.ErrUnexpectedEOF)}
	handler := newTestHandler(t, config.Config{}, quotes)

	res := postJSON(t, handler, "/v1/quotes", map[string]any{"description": "Måla 45 kvm"}, nil)
	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", res.Code)
	}
	if strings.Contains(res.Body.String(), "unexpected EOF") {
		t.Fatalf("internal error leaked: %s", res.Body.String())
	}
}

func TestAPIKeyIsRequiredWhenConfigured(t *testing.T) {
	handler := newTestHandler(t, config.Config{APIKey: "secret"}, &quoteGeneratorFake{})

	res := postJSON(t, handler, "/v1/quotes", map[string]any{"description": "Måla 45 kvm"}, nil)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", res.Code)
	}

	res = postJSON(t, handler, "/v1/quotes", map[string]any{"description": "Måla 45 kvm"}, map[string]string{"Authorization": "Bearer secret"})
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", res.Code)
	}
}

func TestListJobs(t *testing.T) {
	handler := newTestHandler(t, config.Config{}, &quoteGeneratorFake{})

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/jobs", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var body struct {
		Jobs []jobResponse `json:"jobs"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	found := false
	for _, job := range body.Jobs {
		if job.Key == "badrum" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected badrum in job list: %+v", body.Jobs)
	}
}

func TestClassifyDeduction(t *testing.T) {
	handler := newTestHandler(t, config.Config{}, &quoteGeneratorFake{})

	res := postJSON(t, handler, "/v1/deductions/classify", map[string]any{"description": "Flyttstädning av lägenhet"}, nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var body domain.Classification
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.DeductionType != domain.DeductionRUT {
		t.Fatalf("expected rut, got %s", body.DeductionType)
	}
}

func TestAcceptQuote(t *testing.T) {
	acceptor := &acceptorFake{}
	handler := newTestHandler(t, config.Config{}, &quoteGeneratorFake{}, WithAcceptor(acceptor))

	res := postJSON(t, handler, "/v1/quotes/q-1/accept", map[string]any{"user_id": "u-1"}, nil)
	if res.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", res.Code, res.Body.String())
	}
	if acceptor.accepted["q-1"] != "u-1" {
		t.Fatalf("expected q-1 accepted for u-1, got %+v", acceptor.accepted)
	}

	res = postJSON(t, handler, "/v1/quotes/missing/accept", map[string]any{"user_id": "u-1"}, nil)
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown quote, got %d", res.Code)
	}
}

func TestGetQuoteSnapshot(t *testing.T) {
	archive := archiveFake{snapshots: map[string]string{"quotes/u-1/q-1.json": `{"id":"q-1"}`}}
	handler := newTestHandler(t, config.Config{}, &quoteGeneratorFake{}, WithArchive(archive))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/quotes/q-1?user_id=u-1", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if strings.TrimSpace(res.Body.String()) != `{"id":"q-1"}` {
		t.Fatalf("unexpected snapshot body: %s", res.Body.String())
	}

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/quotes/q-1", nil))
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for anonymous owner, got %d", res.Code)
	}
}

func TestMetricsEndpointCountsRequests(t *testing.T) {
	m := metrics.NewHTTPServerMetrics("api")
	handler := newTestHandler(t, config.Config{}, &quoteGeneratorFake{}, WithMetrics(m))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/jobs", nil))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), `path="/v1/jobs"`) {
		t.Fatalf("expected /v1/jobs in metrics output")
	}
}

func TestOpenAPIDocumentIsServed(t *testing.T) {
	handler := newTestHandler(t, config.Config{}, &quoteGeneratorFake{})

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "/v1/quotes") {
		t.Fatalf("expected quote path in contract")
	}
}
