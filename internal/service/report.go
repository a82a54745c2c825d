package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pkordes/club-ledger/internal/domain"
)

// DefaultLocale is the language of month names when none is configured.
const DefaultLocale = "it"

// monthNames holds the month names per supported locale, January first.
var monthNames = map[string][12]string{
	"it": {"Gennaio", "Febbraio", "Marzo", "Aprile", "Maggio", "Giugno",
		"Luglio", "Agosto", "Settembre", "Ottobre", "Novembre", "Dicembre"},
	"en": {"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"},
}

// SupportedLocale reports whether month names exist for locale.
func SupportedLocale(locale string) bool {
	_, ok := monthNames[locale]
	return ok
}

// AthleteReader is the part of AthleteService the reports read through.
type AthleteReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Athlete, error)
	List(ctx context.Context) ([]domain.Athlete, error)
	ListActive(ctx context.Context) ([]domain.Athlete, error)
	ListExpiringCertificates(ctx context.Context, days int) ([]domain.Athlete, error)
}

// PaymentReader is the part of PaymentService the reports read through.
type PaymentReader interface {
	List(ctx context.Context) ([]domain.Payment, error)
	ListRecent(ctx context.Context, days int) ([]domain.Payment, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]domain.Payment, error)
	ListByAthleteAndDateRange(ctx context.Context, athleteID uuid.UUID, from, to time.Time) ([]domain.Payment, error)
	TotalByAthlete(ctx context.Context, athleteID uuid.UUID) (decimal.Decimal, error)
}

var (
	_ AthleteReader = (*AthleteService)(nil)
	_ PaymentReader = (*PaymentService)(nil)
)

// dashboardWindowDays is the look-back for recent payments and the
// look-ahead for expiring certificates on the dashboard.
const dashboardWindowDays = 30

// ReportService aggregates athletes and payments into read-only statistics.
// It never touches the repos directly and never writes.
type ReportService struct {
	athletes AthleteReader
	payments PaymentReader
	env
}

// NewReportService constructs a ReportService reading through the given services.
func NewReportService(athletes AthleteReader, payments PaymentReader, opts ...Option) *ReportService {
	return &ReportService{athletes: athletes, payments: payments, env: newEnv(opts)}
}

// Dashboard returns the administration home page summary.
func (s *ReportService) Dashboard(ctx context.Context) (domain.DashboardStats, error) {
	all, err := s.athletes.List(ctx)
	if err != nil {
		return domain.DashboardStats{}, fmt.Errorf("service.ReportService.Dashboard: %w", err)
	}
	active, err := s.athletes.ListActive(ctx)
	if err != nil {
		return domain.DashboardStats{}, fmt.Errorf("service.ReportService.Dashboard: %w", err)
	}
	recent, err := s.payments.ListRecent(ctx, dashboardWindowDays)
	if err != nil {
		return domain.DashboardStats{}, fmt.Errorf("service.ReportService.Dashboard: %w", err)
	}
	expiring, err := s.athletes.ListExpiringCertificates(ctx, dashboardWindowDays)
	if err != nil {
		return domain.DashboardStats{}, fmt.Errorf("service.ReportService.Dashboard: %w", err)
	}

	return domain.DashboardStats{
		TotalAthletes:        len(all),
		ActiveAthletes:       len(active),
		InactiveAthletes:     len(all) - len(active),
		RecentPayments:       len(recent),
		RecentPaymentsTotal:  domain.SumAmounts(recent),
		ExpiringCertificates: len(expiring),
	}, nil
}

// MonthlyRevenue returns the revenue of each month of year, January first.
// There are always twelve entries; months without payments total zero.
func (s *ReportService) MonthlyRevenue(ctx context.Context, year int) ([]domain.MonthRevenue, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}
	names := monthNames[s.locale]

	out := make([]domain.MonthRevenue, 0, 12)
	for m := time.January; m <= time.December; m++ {
		r := domain.MonthRange(year, m)
		payments, err := s.payments.ListByDateRange(ctx, r.From, r.To)
		if err != nil {
			return nil, fmt.Errorf("service.ReportService.MonthlyRevenue: %w", err)
		}
		out = append(out, domain.MonthRevenue{
			Month: int(m),
			Name:  names[m-1],
			Total: domain.SumAmounts(payments),
		})
	}
	return out, nil
}

// AthleteStats counts athletes overall, by enrollment year, and by status.
func (s *ReportService) AthleteStats(ctx context.Context) (domain.AthleteStats, error) {
	all, err := s.athletes.List(ctx)
	if err != nil {
		return domain.AthleteStats{}, fmt.Errorf("service.ReportService.AthleteStats: %w", err)
	}

	stats := domain.AthleteStats{
		TotalAthletes:  len(all),
		EnrolledByYear: make(map[int]int),
	}
	for _, a := range all {
		if !a.EnrolledOn.IsZero() {
			stats.EnrolledByYear[a.EnrolledOn.Year()]++
		}
		if a.Active {
			stats.ActiveAthletes++
		} else {
			stats.InactiveAthletes++
		}
	}
	return stats, nil
}

// TopPayers ranks every athlete by total paid, highest first, and keeps the
// first limit entries. Athletes with equal totals keep their storage order.
// Returns domain.ErrValidation if limit is not positive.
func (s *ReportService) TopPayers(ctx context.Context, limit int) ([]domain.AthleteTotal, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", domain.ErrValidation)
	}
	all, err := s.athletes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ReportService.TopPayers: %w", err)
	}

	ranked := make([]domain.AthleteTotal, 0, len(all))
	for _, a := range all {
		total, err := s.payments.TotalByAthlete(ctx, a.ID)
		if err != nil {
			return nil, fmt.Errorf("service.ReportService.TopPayers: %w", err)
		}
		ranked = append(ranked, domain.AthleteTotal{Athlete: a, TotalPaid: total})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalPaid.GreaterThan(ranked[j].TotalPaid)
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// PaymentMethodStats counts and sums payments per type.
// Unclassified payments are left out.
func (s *ReportService) PaymentMethodStats(ctx context.Context) (domain.PaymentTypeStats, error) {
	payments, err := s.payments.List(ctx)
	if err != nil {
		return domain.PaymentTypeStats{}, fmt.Errorf("service.ReportService.PaymentMethodStats: %w", err)
	}

	stats := domain.PaymentTypeStats{
		Counts: make(map[domain.PaymentType]int),
		Totals: make(map[domain.PaymentType]decimal.Decimal),
	}
	for _, p := range payments {
		if !p.Type.Valid() {
			continue
		}
		stats.Counts[p.Type]++
		stats.Totals[p.Type] = stats.Totals[p.Type].Add(p.AmountOrZero())
	}
	return stats, nil
}

// AnnualStatement lists an athlete's payments dated in year and their total.
// Returns domain.ErrNotFound if the athlete does not exist.
func (s *ReportService) AnnualStatement(ctx context.Context, athleteID uuid.UUID, year int) (domain.AnnualStatement, error) {
	if err := validateYear(year); err != nil {
		return domain.AnnualStatement{}, err
	}
	a, err := s.athletes.GetByID(ctx, athleteID)
	if err != nil {
		return domain.AnnualStatement{}, fmt.Errorf("service.ReportService.AnnualStatement: %w", err)
	}
	r := domain.YearRange(year)
	payments, err := s.payments.ListByAthleteAndDateRange(ctx, athleteID, r.From, r.To)
	if err != nil {
		return domain.AnnualStatement{}, fmt.Errorf("service.ReportService.AnnualStatement: %w", err)
	}

	return domain.AnnualStatement{
		Year:     year,
		Athlete:  a,
		Payments: payments,
		Total:    domain.SumAmounts(payments),
	}, nil
}

func validateYear(year int) error {
	if year < 1 || year > 9999 {
		return fmt.Errorf("%w: year %d is out of range", domain.ErrValidation, year)
	}
	return nil
}
