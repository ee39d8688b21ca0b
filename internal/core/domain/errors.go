package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrTemporary        = errors.New("temporary failure")
	ErrInterpretation   = errors.New("interpretation failure")
	ErrValidationFailed = errors.New("quote validation failed")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// ValidationError carries the hard validation result that blocked a quote.
type ValidationError struct {
	JobType string
	Result  ValidationResult
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ErrValidationFailed.Error()
	}
	codes := make([]string, 0, len(e.Result.Errors))
	for _, issue := range e.Result.Errors {
		codes = append(codes, issue.Code)
	}
	return fmt.Sprintf("%s for job %q: %s", ErrValidationFailed.Error(), e.JobType, strings.Join(codes, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
