package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kirillkom/quote-assistant/internal/config"
	"github.com/kirillkom/quote-assistant/internal/core/domain"
	"github.com/kirillkom/quote-assistant/internal/core/ports"
	"github.com/kirillkom/quote-assistant/internal/core/usecase"
	"github.com/kirillkom/quote-assistant/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	quotes     ports.QuoteGenerator
	classifier ports.DeductionClassifier
	catalog    ports.JobCatalog
	acceptor   ports.QuoteAcceptor
	archive    ports.QuoteArchive
	metrics    *metrics.HTTPServerMetrics

	apiKey              string
	rateLimitRPS        float64
	rateLimitBurst      int
	maxInFlight         int
	backpressureWait    time.Duration
	maxBodyBytes        int64
	openAPIValidation   bool
	maxDescriptionRunes int
}

type Option func(*Router)

func WithAcceptor(acceptor ports.QuoteAcceptor) Option {
	return func(rt *Router) { rt.acceptor = acceptor }
}

func WithArchive(archive ports.QuoteArchive) Option {
	return func(rt *Router) { rt.archive = archive }
}

func WithMetrics(m *metrics.HTTPServerMetrics) Option {
	return func(rt *Router) { rt.metrics = m }
}

func NewRouter(
	cfg config.Config,
	quotes ports.QuoteGenerator,
	classifier ports.DeductionClassifier,
	catalog ports.JobCatalog,
	opts ...Option,
) *Router {
	rt := &Router{
		quotes:              quotes,
		classifier:          classifier,
		catalog:             catalog,
		apiKey:              strings.TrimSpace(cfg.APIKey),
		rateLimitRPS:        cfg.APIRateLimitRPS,
		rateLimitBurst:      cfg.APIRateLimitBurst,
		maxInFlight:         cfg.APIMaxInFlight,
		backpressureWait:    cfg.APIBackpressureWait,
		maxBodyBytes:        cfg.APIRequestMaxBodyBytes,
		openAPIValidation:   cfg.APIOpenAPIValidation,
		maxDescriptionRunes: cfg.MaxDescriptionLength,
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Handler assembles the route table. Health, metrics and the contract stay
// outside auth and traffic control.
func (rt *Router) Handler() (http.Handler, error) {
	api := http.NewServeMux()
	api.HandleFunc("POST /v1/quotes", rt.generateQuote)
	api.HandleFunc("GET /v1/quotes/{quote_id}", rt.getQuote)
	api.HandleFunc("POST /v1/quotes/{quote_id}/accept", rt.acceptQuote)
	api.HandleFunc("POST /v1/deductions/classify", rt.classifyDeduction)
	api.HandleFunc("GET /v1/jobs", rt.listJobs)

	var protected http.Handler = api
	if rt.openAPIValidation {
		validator, err := newRequestValidator()
		if err != nil {
			return nil, err
		}
		protected = validator.middleware(protected, rt.recordRejected)
	}
	protected = maxBodyMiddleware(protected, rt.maxBodyBytes)
	protected = apiKeyMiddleware(protected, rt.apiKey, rt.recordRejected)
	protected = backpressureMiddleware(protected, rt.maxInFlight, rt.backpressureWait)
	protected = rateLimitMiddleware(protected, rt.rateLimitRPS, rt.rateLimitBurst, rt.recordRejected)

	root := http.NewServeMux()
	root.HandleFunc("GET /healthz", rt.healthz)
	root.HandleFunc("GET /openapi.yaml", rt.openAPIDocument)
	if rt.metrics != nil {
		root.Handle("GET /metrics", rt.metrics.Handler())
	}
	root.Handle("/v1/", protected)

	var handler http.Handler = root
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler, nil
}

func (rt *Router) recordRejected(reason string) {
	if rt.metrics != nil {
		rt.metrics.RecordRejected(serviceName, reason)
	}
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) openAPIDocument(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(OpenAPISpec())
}

func (rt *Router) generateQuote(w http.ResponseWriter, r *http.Request) {
	var req domain.GenerateQuoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}

	result, err := rt.quotes.GenerateQuote(r.Context(), req)
	if err != nil {
		slog.Warn("quote_request_failed",
			"request_id", requestIDFromContext(r.Context()),
			"error", err,
		)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) getQuote(w http.ResponseWriter, r *http.Request) {
	if rt.archive == nil {
		writeError(w, http.StatusNotImplemented, "quote archive is not configured")
		return
	}
	quoteID := strings.TrimSpace(r.PathValue("quote_id"))
	if quoteID == "" {
		writeError(w, http.StatusBadRequest, "quote id is required")
		return
	}

	snapshot, err := rt.archive.Open(r.Context(), usecase.ArchiveKey(r.URL.Query().Get("user_id"), quoteID))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	defer snapshot.Close()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, snapshot); err != nil {
		slog.Warn("quote_snapshot_copy_failed", "quote_id", quoteID, "error", err)
	}
}

func (rt *Router) acceptQuote(w http.ResponseWriter, r *http.Request) {
	if rt.acceptor == nil {
		writeError(w, http.StatusNotImplemented, "quote acceptance is not configured")
		return
	}
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	quoteID := strings.TrimSpace(r.PathValue("quote_id"))
	if err := rt.acceptor.MarkAccepted(r.Context(), req.UserID, quoteID, time.Now().UTC()); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) classifyDeduction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description string            `json:"description"`
		WorkType    string            `json:"work_type"`
		WorkItems   []domain.WorkItem `json:"work_items"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}
	if rt.maxDescriptionRunes > 0 && utf8.RuneCountInString(req.Description) > rt.maxDescriptionRunes {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("description exceeds %d characters", rt.maxDescriptionRunes))
		return
	}

	writeJSON(w, http.StatusOK, rt.classifier.Classify(r.Context(), req.Description, req.WorkType, req.WorkItems))
}

type jobResponse struct {
	Key           string   `json:"key"`
	Category      string   `json:"category"`
	RequiredInput []string `json:"required_input"`
}

func (rt *Router) listJobs(w http.ResponseWriter, _ *http.Request) {
	defs := rt.catalog.Definitions()
	out := make([]jobResponse, 0, len(defs))
	for _, def := range defs {
		out = append(out, jobResponse{
			Key:           def.Key,
			Category:      def.Category,
			RequiredInput: def.RequiredInput,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": out})
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body exceeds %d bytes", maxBytesErr.Limit)
		}
		return errors.New("invalid json")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
