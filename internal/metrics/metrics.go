// Package metrics owns the Prometheus collectors of the club ledger.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/pkordes/club-ledger/internal/domain"
)

// Metrics groups every collector the services and HTTP layer report to.
// Each instance has its own registry, so tests can build as many as they like.
// The Observe methods are no-ops on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	PaymentsRecorded     *prometheus.CounterVec
	AmountRecorded       *prometheus.CounterVec
	AthleteStatusChanges *prometheus.CounterVec
	ReceiptsIssued       prometheus.Counter
	HTTPRequestDuration  *prometheus.HistogramVec
}

// New creates a Metrics instance with all collectors registered on a fresh
// registry, together with the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		PaymentsRecorded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "clubledger_payments_recorded_total",
			Help: "Payments written to the ledger, by payment type",
		}, []string{"type"}),
		AmountRecorded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "clubledger_payment_amount_recorded_total",
			Help: "Sum of recorded payment amounts, by payment type",
		}, []string{"type"}),
		AthleteStatusChanges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "clubledger_athlete_status_changes_total",
			Help: "Athletes disabled or re-enabled",
		}, []string{"status"}),
		ReceiptsIssued: f.NewCounter(prometheus.CounterOpts{
			Name: "clubledger_receipts_issued_total",
			Help: "Receipt numbers handed out since the process started",
		}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clubledger_http_request_duration_seconds",
			Help:    "HTTP request latency by method and status",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "status"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObservePayment records a newly stored payment.
// Unclassified payments are labelled "none".
func (m *Metrics) ObservePayment(t domain.PaymentType, amount decimal.Decimal) {
	if m == nil {
		return
	}
	label := string(t)
	if label == "" {
		label = "none"
	}
	m.PaymentsRecorded.WithLabelValues(label).Inc()
	m.AmountRecorded.WithLabelValues(label).Add(amount.InexactFloat64())
}

// ObserveStatusChange records an athlete being disabled (active=false) or enabled.
func (m *Metrics) ObserveStatusChange(active bool) {
	if m == nil {
		return
	}
	status := "disabled"
	if active {
		status = "enabled"
	}
	m.AthleteStatusChanges.WithLabelValues(status).Inc()
}

// ObserveReceipt records one receipt number being consumed.
func (m *Metrics) ObserveReceipt() {
	if m == nil {
		return
	}
	m.ReceiptsIssued.Inc()
}

// ObserveRequest records the duration of an HTTP request.
// Call with time.Now() taken at the start of the request.
func (m *Metrics) ObserveRequest(method string, status int, start time.Time) {
	if m == nil {
		return
	}
	m.HTTPRequestDuration.WithLabelValues(method, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
}
