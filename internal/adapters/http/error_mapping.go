package httpadapter

import (
	"errors"
	"net/http"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case domain.IsKind(err, domain.ErrNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrValidationFailed):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type validationErrorBody struct {
	Error    string                   `json:"error"`
	JobType  string                   `json:"job_type"`
	Errors   []domain.ValidationIssue `json:"errors"`
	Warnings []domain.ValidationIssue `json:"warnings,omitempty"`
	Details  map[string]float64       `json:"details,omitempty"`
}

// writeDomainError never leaks internal error text on 5xx responses.
func writeDomainError(w http.ResponseWriter, err error) {
	status := mapErrorToHTTPStatus(err)

	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		writeJSON(w, status, validationErrorBody{
			Error:    domain.ErrValidationFailed.Error(),
			JobType:  vErr.JobType,
			Errors:   vErr.Result.Errors,
			Warnings: vErr.Result.Warnings,
			Details:  vErr.Result.Details,
		})
		return
	}

	message := err.Error()
	switch status {
	case http.StatusInternalServerError:
		message = "internal error"
	case http.StatusServiceUnavailable:
		message = "service temporarily unavailable"
	}
	writeError(w, status, message)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
