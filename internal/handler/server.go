// Package handler implements the JSON HTTP API of the club ledger.
// All handlers are methods on Server. They are split into domain-specific
// files (athlete.go, payment.go, ...) but share the same Server struct so
// they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pkordes/club-ledger/api"
	"github.com/pkordes/club-ledger/internal/domain"
)

// AthleteServicer defines the athlete operations the handlers depend on.
// Defining the interface here, in the consumer package, lets handler tests
// inject a mock without touching the database or service layer.
type AthleteServicer interface {
	Create(ctx context.Context, a domain.Athlete) (domain.Athlete, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Athlete, error)
	List(ctx context.Context) ([]domain.Athlete, error)
	Search(ctx context.Context, term string) ([]domain.Athlete, error)
	ListActive(ctx context.Context) ([]domain.Athlete, error)
	ListExpiringCertificates(ctx context.Context, days int) ([]domain.Athlete, error)
	ListExpiringMemberships(ctx context.Context, days int) ([]domain.Athlete, error)
	Update(ctx context.Context, id uuid.UUID, in domain.AthleteUpdate) (domain.Athlete, error)
	Disable(ctx context.Context, id uuid.UUID) (domain.Athlete, error)
	Enable(ctx context.Context, id uuid.UUID) (domain.Athlete, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PaymentServicer defines the ledger operations the handlers depend on.
type PaymentServicer interface {
	Create(ctx context.Context, athleteID uuid.UUID, p domain.Payment) (domain.Payment, error)
	CreateFromPayload(ctx context.Context, p domain.Payment) (domain.Payment, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Payment, error)
	List(ctx context.Context) ([]domain.Payment, error)
	Update(ctx context.Context, id uuid.UUID, in domain.Payment) (domain.Payment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByAthlete(ctx context.Context, athleteID uuid.UUID) ([]domain.Payment, error)
	ListByType(ctx context.Context, t domain.PaymentType) ([]domain.Payment, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]domain.Payment, error)
	ListRecent(ctx context.Context, days int) ([]domain.Payment, error)
	TotalByAthlete(ctx context.Context, athleteID uuid.UUID) (decimal.Decimal, error)
	TotalByAthleteAndType(ctx context.Context, athleteID uuid.UUID, t domain.PaymentType) (decimal.Decimal, error)
	TotalByDateRange(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
}

// ReportServicer defines the read-only reports the handlers expose.
type ReportServicer interface {
	Dashboard(ctx context.Context) (domain.DashboardStats, error)
	MonthlyRevenue(ctx context.Context, year int) ([]domain.MonthRevenue, error)
	AthleteStats(ctx context.Context) (domain.AthleteStats, error)
	TopPayers(ctx context.Context, limit int) ([]domain.AthleteTotal, error)
	PaymentMethodStats(ctx context.Context) (domain.PaymentTypeStats, error)
	AnnualStatement(ctx context.Context, athleteID uuid.UUID, year int) (domain.AnnualStatement, error)
}

// ReceiptServicer resolves receipts for the document endpoints.
type ReceiptServicer interface {
	ForPayment(ctx context.Context, paymentID uuid.UUID) (domain.Receipt, error)
	ForLatestPayment(ctx context.Context, athleteID uuid.UUID) (domain.Receipt, error)
}

// Server holds the dependencies of every endpoint.
// Methods are in domain-specific files but all operate on this struct.
type Server struct {
	athletes AthleteServicer
	payments PaymentServicer
	reports  ReportServicer
	receipts ReceiptServicer
	log      *slog.Logger
	now      func() time.Time
}

// NewServer constructs the Server with all its dependencies.
// A nil logger falls back to slog.Default().
func NewServer(athletes AthleteServicer, payments PaymentServicer, reports ReportServicer, receipts ReceiptServicer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		athletes: athletes,
		payments: payments,
		reports:  reports,
		receipts: receipts,
		log:      log,
		now:      time.Now,
	}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil, nil, nil)
}

// Routes returns the router serving /healthz, /openapi.yaml and the
// versioned API under /api/v1.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", serveOpenAPI)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/athletes", func(r chi.Router) {
			r.Get("/", s.ListAthletes)
			r.Post("/", s.CreateAthlete)
			r.Get("/active", s.ListActiveAthletes)
			r.Get("/expiring-certificates", s.ListExpiringCertificates)
			r.Get("/expiring-memberships", s.ListExpiringMemberships)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.GetAthlete)
				r.Put("/", s.UpdateAthlete)
				r.Delete("/", s.DeleteAthlete)
				r.Put("/disable", s.DisableAthlete)
				r.Put("/enable", s.EnableAthlete)
				r.Post("/payments", s.CreateAthletePayment)
				r.Get("/payments/total", s.GetAthletePaymentTotal)
				r.Get("/receipt", s.GetLatestReceipt)
			})
		})

		r.Route("/payments", func(r chi.Router) {
			r.Get("/", s.ListPayments)
			r.Post("/", s.CreatePayment)
			r.Get("/recent", s.ListRecentPayments)
			r.Get("/total", s.GetPaymentTotal)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.GetPayment)
				r.Put("/", s.UpdatePayment)
				r.Delete("/", s.DeletePayment)
				r.Get("/receipt", s.GetPaymentReceipt)
			})
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/dashboard", s.GetDashboard)
			r.Get("/monthly-revenue/{year}", s.GetMonthlyRevenue)
			r.Get("/athletes/stats", s.GetAthleteStats)
			r.Get("/athletes/top-payers", s.GetTopPayers)
			r.Get("/payments/method-stats", s.GetPaymentMethodStats)
			r.Get("/annual-statement/{athleteID}", s.GetAnnualStatement)
		})
	})
	return r
}

func serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(api.OpenAPI)
}
