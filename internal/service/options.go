// Package service contains the business logic of the club ledger.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"log/slog"
	"time"

	"github.com/pkordes/club-ledger/internal/domain"
	"github.com/pkordes/club-ledger/internal/metrics"
)

// Option configures the ambient dependencies shared by every service.
type Option func(*env)

// env holds the clock, logger, and metrics of a service.
type env struct {
	now     func() time.Time
	log     *slog.Logger
	metrics *metrics.Metrics
	locale  string
}

func newEnv(opts []Option) env {
	e := env{now: time.Now, log: slog.Default(), locale: DefaultLocale}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// today returns the current civil date.
func (e env) today() time.Time {
	return domain.Date(e.now())
}

// WithClock overrides the source of "today". Tests pin it to a fixed date.
func WithClock(now func() time.Time) Option {
	return func(e *env) { e.now = now }
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(e *env) { e.log = l }
}

// WithMetrics sets the Prometheus collectors the service reports to.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *env) { e.metrics = m }
}

// WithLocale selects the language of month names in reports.
// Unknown locales fall back to DefaultLocale.
func WithLocale(locale string) Option {
	return func(e *env) {
		if _, ok := monthNames[locale]; ok {
			e.locale = locale
		}
	}
}

// datePtr normalizes an optional date to a civil date.
func datePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := domain.Date(*t)
	return &d
}
