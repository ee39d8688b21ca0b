package resilience

import (
	"testing"
	"time"
)

func TestNormalizeFillsUnsetFields(t *testing.T) {
	got := Config{RetryInitialBackoff: 2 * time.Second, BreakerFailureRatio: 3}.normalize()
	def := DefaultConfig()

	if got.RetryMaxAttempts != def.RetryMaxAttempts {
		t.Fatalf("expected default attempts, got %d", got.RetryMaxAttempts)
	}
	if got.RetryMaxBackoff != 2*time.Second {
		t.Fatalf("max backoff must not undercut initial backoff, got %s", got.RetryMaxBackoff)
	}
	if got.BreakerFailureRatio != def.BreakerFailureRatio {
		t.Fatalf("expected out-of-range ratio replaced, got %v", got.BreakerFailureRatio)
	}
	if got.BreakerOpenTimeout != def.BreakerOpenTimeout || got.BreakerHalfOpenMaxCalls != def.BreakerHalfOpenMaxCalls {
		t.Fatalf("expected breaker defaults, got %+v", got)
	}
}

func TestPresetsSurviveNormalize(t *testing.T) {
	for name, cfg := range map[string]Config{
		"language model": LanguageModelConfig(),
		"messaging":      MessagingConfig(),
	} {
		if cfg.normalize() != cfg {
			t.Fatalf("%s preset changed by normalize: %+v", name, cfg.normalize())
		}
	}
	if MessagingConfig().RetryInitialBackoff >= LanguageModelConfig().RetryInitialBackoff {
		t.Fatalf("messaging must back off faster than the language model")
	}
}
