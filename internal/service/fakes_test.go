package service_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/club-ledger/internal/domain"
	"github.com/pkordes/club-ledger/internal/repo"
	"github.com/pkordes/club-ledger/internal/service"
)

// memAthleteRepo is an in-memory repo.AthleteRepo. It keeps insertion order
// like the Postgres implementation does, so list-based behaviour is realistic.
type memAthleteRepo struct {
	mu       sync.Mutex
	order    []uuid.UUID
	byID     map[uuid.UUID]domain.Athlete
	payments *memPaymentRepo // cascade target, may be nil
}

func newMemAthleteRepo() *memAthleteRepo {
	return &memAthleteRepo{byID: make(map[uuid.UUID]domain.Athlete)}
}

func (m *memAthleteRepo) Create(_ context.Context, a domain.Athlete) (domain.Athlete, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = uuid.New()
	m.order = append(m.order, a.ID)
	m.byID[a.ID] = a
	return a, nil
}

func (m *memAthleteRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Athlete, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return domain.Athlete{}, domain.ErrNotFound
	}
	return a, nil
}

func (m *memAthleteRepo) List(_ context.Context) ([]domain.Athlete, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Athlete, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id])
	}
	return out, nil
}

func (m *memAthleteRepo) Search(ctx context.Context, term string) ([]domain.Athlete, error) {
	all, _ := m.List(ctx)
	term = strings.ToLower(term)
	var out []domain.Athlete
	for _, a := range all {
		if strings.Contains(strings.ToLower(a.FirstName), term) || strings.Contains(strings.ToLower(a.LastName), term) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAthleteRepo) Update(_ context.Context, a domain.Athlete) (domain.Athlete, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[a.ID]; !ok {
		return domain.Athlete{}, domain.ErrNotFound
	}
	m.byID[a.ID] = a
	return a, nil
}

func (m *memAthleteRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	if _, ok := m.byID[id]; !ok {
		m.mu.Unlock()
		return domain.ErrNotFound
	}
	delete(m.byID, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.mu.Unlock()
	if m.payments != nil {
		m.payments.deleteByAthlete(id)
	}
	return nil
}

var _ repo.AthleteRepo = (*memAthleteRepo)(nil)

// memPaymentRepo is an in-memory repo.PaymentRepo.
type memPaymentRepo struct {
	mu    sync.Mutex
	order []uuid.UUID
	byID  map[uuid.UUID]domain.Payment
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{byID: make(map[uuid.UUID]domain.Payment)}
}

func (m *memPaymentRepo) Create(_ context.Context, p domain.Payment) (domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = uuid.New()
	m.order = append(m.order, p.ID)
	m.byID[p.ID] = p
	return p, nil
}

func (m *memPaymentRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return domain.Payment{}, domain.ErrNotFound
	}
	return p, nil
}

func (m *memPaymentRepo) where(keep func(domain.Payment) bool) []domain.Payment {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Payment
	for _, id := range m.order {
		if p := m.byID[id]; keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func (m *memPaymentRepo) List(_ context.Context) ([]domain.Payment, error) {
	return m.where(func(domain.Payment) bool { return true }), nil
}

func (m *memPaymentRepo) ListByAthlete(_ context.Context, athleteID uuid.UUID) ([]domain.Payment, error) {
	return m.where(ownedBy(athleteID)), nil
}

func (m *memPaymentRepo) ListByType(_ context.Context, t domain.PaymentType) ([]domain.Payment, error) {
	return m.where(func(p domain.Payment) bool { return p.Type == t }), nil
}

func (m *memPaymentRepo) ListByDateRange(_ context.Context, r domain.DateRange) ([]domain.Payment, error) {
	return m.where(func(p domain.Payment) bool { return r.Contains(p.PaidOn) }), nil
}

func (m *memPaymentRepo) ListByAthleteAndDateRange(_ context.Context, athleteID uuid.UUID, r domain.DateRange) ([]domain.Payment, error) {
	owned := ownedBy(athleteID)
	return m.where(func(p domain.Payment) bool { return owned(p) && r.Contains(p.PaidOn) }), nil
}

func (m *memPaymentRepo) ListAfter(_ context.Context, day time.Time) ([]domain.Payment, error) {
	return m.where(func(p domain.Payment) bool { return p.PaidOn.After(day) }), nil
}

func (m *memPaymentRepo) Update(_ context.Context, p domain.Payment) (domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[p.ID]; !ok {
		return domain.Payment{}, domain.ErrNotFound
	}
	m.byID[p.ID] = p
	return p, nil
}

func (m *memPaymentRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return domain.ErrNotFound
	}
	m.drop(id)
	return nil
}

func (m *memPaymentRepo) SumByAthlete(ctx context.Context, athleteID uuid.UUID) (decimal.Decimal, error) {
	ps, _ := m.ListByAthlete(ctx, athleteID)
	return domain.SumAmounts(ps), nil
}

func (m *memPaymentRepo) SumByAthleteAndType(_ context.Context, athleteID uuid.UUID, t domain.PaymentType) (decimal.Decimal, error) {
	owned := ownedBy(athleteID)
	return domain.SumAmounts(m.where(func(p domain.Payment) bool { return owned(p) && p.Type == t })), nil
}

func (m *memPaymentRepo) deleteByAthlete(athleteID uuid.UUID) {
	owned := ownedBy(athleteID)
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []uuid.UUID
	for _, id := range m.order {
		if owned(m.byID[id]) {
			ids = append(ids, id)
		}
	}
	for _, id := range ids {
		m.drop(id)
	}
}

// drop must be called with mu held.
func (m *memPaymentRepo) drop(id uuid.UUID) {
	delete(m.byID, id)
	for i := range m.order {
		if m.order[i] == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			return
		}
	}
}

func ownedBy(athleteID uuid.UUID) func(domain.Payment) bool {
	return func(p domain.Payment) bool { return p.AthleteID.Valid && p.AthleteID.UUID == athleteID }
}

var _ repo.PaymentRepo = (*memPaymentRepo)(nil)

// ---- helpers ---------------------------------------------------------------

// day builds a civil date.
func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func amount(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

// ledger wires the services over fresh in-memory repos, with today pinned.
type ledger struct {
	athleteRepo *memAthleteRepo
	paymentRepo *memPaymentRepo
	athletes    *service.AthleteService
	payments    *service.PaymentService
	reports     *service.ReportService
}

func newLedger(today time.Time, opts ...service.Option) *ledger {
	payments := newMemPaymentRepo()
	athletes := newMemAthleteRepo()
	athletes.payments = payments

	opts = append([]service.Option{service.WithClock(func() time.Time { return today.Add(15 * time.Hour) })}, opts...)
	l := &ledger{
		athleteRepo: athletes,
		paymentRepo: payments,
		athletes:    service.NewAthleteService(athletes, opts...),
		payments:    service.NewPaymentService(athletes, payments, opts...),
	}
	l.reports = service.NewReportService(l.athletes, l.payments, opts...)
	return l
}

// enroll creates an active athlete.
func (l *ledger) enroll(t *testing.T, first, last string) domain.Athlete {
	t.Helper()
	a, err := l.athletes.Create(context.Background(), domain.Athlete{FirstName: first, LastName: last})
	require.NoError(t, err)
	return a
}

// pay records a payment for athleteID.
func (l *ledger) pay(t *testing.T, athleteID uuid.UUID, amt string, on time.Time, typ domain.PaymentType) domain.Payment {
	t.Helper()
	p, err := l.payments.Create(context.Background(), athleteID, domain.Payment{Amount: amount(amt), PaidOn: on, Type: typ})
	require.NoError(t, err)
	return p
}
