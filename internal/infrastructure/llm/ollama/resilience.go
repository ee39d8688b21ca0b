package ollama

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/kirillkom/quote-assistant/internal/infrastructure/resilience"
)

// HTTPStatusError is a non-2xx reply from the Ollama server.
type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "ollama status error"
	}
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("ollama %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("ollama %s status: %s: %s", e.Operation, e.Status, body)
}

// statusRule retries overload and gateway replies; other statuses are the
// request's fault and leave the breaker alone.
func statusRule(err error) (resilience.ErrorClassification, bool) {
	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) {
		return resilience.ErrorClassification{}, false
	}
	switch statusErr.StatusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return resilience.Transient, true
	}
	return resilience.Rejected, true
}

var classifyOllamaError = resilience.NewClassifier(statusRule, resilience.NetworkErrors)
