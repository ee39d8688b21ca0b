package resilience

import (
	"errors"
	"net"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
)

var (
	// Transient failures are retried and count against the breaker.
	Transient = ErrorClassification{Retryable: true, RecordFailure: true}
	// Rejected failures are the caller's fault: no retry, breaker untouched.
	Rejected = ErrorClassification{}
	// Flaky failures are retried but a healthy dependency can produce them.
	Flaky = ErrorClassification{Retryable: true}

	permanent = ErrorClassification{RecordFailure: true}
)

// Rule classifies the errors it recognizes and reports false for the rest.
type Rule func(err error) (ErrorClassification, bool)

// NewClassifier applies rules in order after the shared handling of context
// and breaker errors. Unrecognized errors are permanent failures.
func NewClassifier(rules ...Rule) ErrorClassifier {
	return func(err error) ErrorClassification {
		switch {
		case err == nil:
			return ErrorClassification{}
		case IsContextError(err):
			return Rejected
		case IsCircuitOpen(err):
			return Transient
		}
		for _, rule := range rules {
			if class, ok := rule(err); ok {
				return class
			}
		}
		return permanent
	}
}

// NetworkErrors treats any net.Error as transient.
func NetworkErrors(err error) (ErrorClassification, bool) {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return Transient, true
	}
	return ErrorClassification{}, false
}

// TransientOn matches the given sentinels with errors.Is.
func TransientOn(sentinels ...error) Rule {
	return func(err error) (ErrorClassification, bool) {
		for _, sentinel := range sentinels {
			if errors.Is(err, sentinel) {
				return Transient, true
			}
		}
		return ErrorClassification{}, false
	}
}

// WrapTemporary marks retryable and breaker errors as domain.ErrTemporary so
// callers can degrade instead of failing hard.
func WrapTemporary(operation string, err error, classifier ErrorClassifier) error {
	if err == nil || domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifier == nil {
		classifier = defaultClassifier
	}
	if classifier(err).Retryable || IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}
