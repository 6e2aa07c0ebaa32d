package ledger

import (
	"time"

	"github.com/mmynk/splitledger/internal/metrics"
)

// Option configures an Engine.
type Option func(*Engine)

// WithCache enables the computed-view cache. A size of zero or less leaves it disabled.
func WithCache(size int, ttl time.Duration) Option {
	return func(e *Engine) {
		if size > 0 {
			e.cache = newViewCache(size, ttl)
		}
	}
}

// WithMetrics records engine activity on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithClock overrides the time source used for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithListConcurrency bounds how many groups ListGroups computes at once.
func WithListConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.listConcurrency = n
		}
	}
}
