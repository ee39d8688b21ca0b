package resilience

import "time"

// Config tunes retry and circuit breaking for one class of outbound calls.
type Config struct {
	RetryMaxAttempts    int
	RetryInitialBackoff time.Duration
	RetryMaxBackoff     time.Duration
	RetryMultiplier     float64
	// RetryJitter in [0,1] shortens each wait by a random share. Zero disables it.
	RetryJitter float64

	BreakerEnabled          bool
	BreakerMinRequests      uint32
	BreakerFailureRatio     float64
	BreakerOpenTimeout      time.Duration
	BreakerHalfOpenMaxCalls uint32
}

func DefaultConfig() Config {
	return Config{
		RetryMaxAttempts:    2,
		RetryInitialBackoff: 200 * time.Millisecond,
		RetryMaxBackoff:     time.Second,
		RetryMultiplier:     2.0,

		BreakerEnabled:          true,
		BreakerMinRequests:      5,
		BreakerFailureRatio:     0.6,
		BreakerOpenTimeout:      20 * time.Second,
		BreakerHalfOpenMaxCalls: 1,
	}
}

// LanguageModelConfig backs off slower and stays open longer: model servers
// recover from overload in seconds, not milliseconds.
func LanguageModelConfig() Config {
	cfg := DefaultConfig()
	cfg.RetryInitialBackoff = 500 * time.Millisecond
	cfg.RetryMaxBackoff = 4 * time.Second
	cfg.RetryJitter = 0.2
	cfg.BreakerOpenTimeout = 30 * time.Second
	return cfg
}

// MessagingConfig retries quickly. A publish that keeps failing is dropped by
// the caller, so the breaker trips early.
func MessagingConfig() Config {
	cfg := DefaultConfig()
	cfg.RetryMaxAttempts = 3
	cfg.RetryInitialBackoff = 50 * time.Millisecond
	cfg.RetryMaxBackoff = 500 * time.Millisecond
	cfg.BreakerMinRequests = 3
	cfg.BreakerOpenTimeout = 10 * time.Second
	return cfg
}

// normalize fills every unset or out-of-range field from DefaultConfig.
func (c Config) normalize() Config {
	def := DefaultConfig()
	fill := func(v *time.Duration, d time.Duration) {
		if *v <= 0 {
			*v = d
		}
	}

	if c.RetryMaxAttempts <= 0 {
		c.RetryMaxAttempts = def.RetryMaxAttempts
	}
	fill(&c.RetryInitialBackoff, def.RetryInitialBackoff)
	fill(&c.RetryMaxBackoff, def.RetryMaxBackoff)
	c.RetryMaxBackoff = max(c.RetryMaxBackoff, c.RetryInitialBackoff)
	if c.RetryMultiplier < 1 {
		c.RetryMultiplier = def.RetryMultiplier
	}

	if c.RetryJitter < 0 || c.RetryJitter > 1 {
		c.RetryJitter = 0
	}

	if c.BreakerMinRequests == 0 {
		c.BreakerMinRequests = def.BreakerMinRequests
	}
	if c.BreakerFailureRatio <= 0 || c.BreakerFailureRatio > 1 {
		c.BreakerFailureRatio = def.BreakerFailureRatio
	}
	fill(&c.BreakerOpenTimeout, def.BreakerOpenTimeout)
	if c.BreakerHalfOpenMaxCalls == 0 {
		c.BreakerHalfOpenMaxCalls = def.BreakerHalfOpenMaxCalls
	}
	return c
}
