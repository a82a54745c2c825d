package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pkordes/club-ledger/internal/domain"
	"github.com/pkordes/club-ledger/internal/repo"
)

// PaymentService implements the payment ledger. It holds the athletes repo
// because a payment can only be attached to an athlete that exists.
type PaymentService struct {
	athletes repo.AthleteRepo
	payments repo.PaymentRepo
	env
}

// NewPaymentService constructs a PaymentService backed by the provided repos.
func NewPaymentService(athletes repo.AthleteRepo, payments repo.PaymentRepo, opts ...Option) *PaymentService {
	return &PaymentService{athletes: athletes, payments: payments, env: newEnv(opts)}
}

// Create attaches p to the athlete athleteID and persists it.
// PaidOn defaults to today.
// Returns domain.ErrNotFound if the athlete does not exist and
// domain.ErrValidation if the amount is missing or negative.
func (s *PaymentService) Create(ctx context.Context, athleteID uuid.UUID, p domain.Payment) (domain.Payment, error) {
	if _, err := s.athletes.GetByID(ctx, athleteID); err != nil {
		return domain.Payment{}, fmt.Errorf("service.PaymentService.Create: %w", err)
	}
	p.AthleteID = uuid.NullUUID{UUID: athleteID, Valid: true}

	result, err := s.store(ctx, p)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("service.PaymentService.Create: %w", err)
	}
	return result, nil
}

// CreateFromPayload stores a payment as submitted by a client: when it names
// an athlete it goes through Create, otherwise through CreateUnlinked.
func (s *PaymentService) CreateFromPayload(ctx context.Context, p domain.Payment) (domain.Payment, error) {
	if p.AthleteID.Valid {
		return s.Create(ctx, p.AthleteID.UUID, p)
	}
	return s.CreateUnlinked(ctx, p)
}

// CreateUnlinked persists a payment that belongs to no athlete.
// Such payments show up in ledger-wide totals and reports but in no
// athlete's history, and no receipt can be issued for them.
func (s *PaymentService) CreateUnlinked(ctx context.Context, p domain.Payment) (domain.Payment, error) {
	p.AthleteID = uuid.NullUUID{}

	result, err := s.store(ctx, p)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("service.PaymentService.CreateUnlinked: %w", err)
	}
	s.log.Warn("payment stored without athlete", "payment_id", result.ID)
	return result, nil
}

func (s *PaymentService) store(ctx context.Context, p domain.Payment) (domain.Payment, error) {
	if err := validateAmount(p.Amount); err != nil {
		return domain.Payment{}, err
	}
	if p.PaidOn.IsZero() {
		p.PaidOn = s.today()
	}
	p.PaidOn = domain.Date(p.PaidOn)

	result, err := s.payments.Create(ctx, p)
	if err != nil {
		return domain.Payment{}, err
	}
	s.metrics.ObservePayment(result.Type, result.AmountOrZero())
	return result, nil
}

// GetByID returns a single payment.
// Returns domain.ErrNotFound if it does not exist.
func (s *PaymentService) GetByID(ctx context.Context, id uuid.UUID) (domain.Payment, error) {
	result, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("service.PaymentService.GetByID: %w", err)
	}
	return result, nil
}

// List returns every payment in storage order.
func (s *PaymentService) List(ctx context.Context) ([]domain.Payment, error) {
	payments, err := s.payments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.PaymentService.List: %w", err)
	}
	return nonNil(payments), nil
}

// Update overwrites amount, date, and type of an existing payment.
// A zero PaidOn keeps the stored date; the athlete link never changes.
// Returns domain.ErrNotFound if the payment does not exist and
// domain.ErrValidation if the amount is missing or negative.
func (s *PaymentService) Update(ctx context.Context, id uuid.UUID, in domain.Payment) (domain.Payment, error) {
	current, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("service.PaymentService.Update: %w", err)
	}
	if err := validateAmount(in.Amount); err != nil {
		return domain.Payment{}, err
	}

	current.Amount = in.Amount
	current.Type = in.Type
	if !in.PaidOn.IsZero() {
		current.PaidOn = domain.Date(in.PaidOn)
	}

	result, err := s.payments.Update(ctx, current)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("service.PaymentService.Update: %w", err)
	}
	return result, nil
}

// Delete removes a payment by ID.
// Returns domain.ErrNotFound if it does not exist.
func (s *PaymentService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.payments.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.PaymentService.Delete: %w", err)
	}
	return nil
}

// ListByAthlete returns the payments of one athlete in storage order.
func (s *PaymentService) ListByAthlete(ctx context.Context, athleteID uuid.UUID) ([]domain.Payment, error) {
	payments, err := s.payments.ListByAthlete(ctx, athleteID)
	if err != nil {
		return nil, fmt.Errorf("service.PaymentService.ListByAthlete: %w", err)
	}
	return nonNil(payments), nil
}

// ListByType returns the payments of type t. The unclassified type matches
// nothing, so asking for it yields an empty list rather than an error.
func (s *PaymentService) ListByType(ctx context.Context, t domain.PaymentType) ([]domain.Payment, error) {
	if !t.Valid() {
		return []domain.Payment{}, nil
	}
	payments, err := s.payments.ListByType(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("service.PaymentService.ListByType: %w", err)
	}
	return nonNil(payments), nil
}

// ListByDateRange returns payments dated from..to, both included.
// Returns domain.ErrValidation if from is after to.
func (s *PaymentService) ListByDateRange(ctx context.Context, from, to time.Time) ([]domain.Payment, error) {
	r, err := domain.NewDateRange(from, to)
	if err != nil {
		return nil, fmt.Errorf("service.PaymentService.ListByDateRange: %w", err)
	}
	payments, err := s.payments.ListByDateRange(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("service.PaymentService.ListByDateRange: %w", err)
	}
	return nonNil(payments), nil
}

// ListByAthleteAndDateRange returns one athlete's payments dated from..to.
func (s *PaymentService) ListByAthleteAndDateRange(ctx context.Context, athleteID uuid.UUID, from, to time.Time) ([]domain.Payment, error) {
	r, err := domain.NewDateRange(from, to)
	if err != nil {
		return nil, fmt.Errorf("service.PaymentService.ListByAthleteAndDateRange: %w", err)
	}
	payments, err := s.payments.ListByAthleteAndDateRange(ctx, athleteID, r)
	if err != nil {
		return nil, fmt.Errorf("service.PaymentService.ListByAthleteAndDateRange: %w", err)
	}
	return nonNil(payments), nil
}

// ListRecent returns payments dated strictly after today minus days.
// Returns domain.ErrValidation if days is negative.
func (s *PaymentService) ListRecent(ctx context.Context, days int) ([]domain.Payment, error) {
	if days < 0 {
		return nil, fmt.Errorf("%w: days must not be negative", domain.ErrValidation)
	}
	payments, err := s.payments.ListAfter(ctx, s.today().AddDate(0, 0, -days))
	if err != nil {
		return nil, fmt.Errorf("service.PaymentService.ListRecent: %w", err)
	}
	return nonNil(payments), nil
}

// TotalByAthlete returns what an athlete has paid overall; zero when the
// athlete has no payments.
func (s *PaymentService) TotalByAthlete(ctx context.Context, athleteID uuid.UUID) (decimal.Decimal, error) {
	total, err := s.payments.SumByAthlete(ctx, athleteID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("service.PaymentService.TotalByAthlete: %w", err)
	}
	return total, nil
}

// TotalByAthleteAndType is TotalByAthlete restricted to payments of type t.
// The unclassified type totals zero.
func (s *PaymentService) TotalByAthleteAndType(ctx context.Context, athleteID uuid.UUID, t domain.PaymentType) (decimal.Decimal, error) {
	if !t.Valid() {
		return decimal.Zero, nil
	}
	total, err := s.payments.SumByAthleteAndType(ctx, athleteID, t)
	if err != nil {
		return decimal.Zero, fmt.Errorf("service.PaymentService.TotalByAthleteAndType: %w", err)
	}
	return total, nil
}

// TotalByDateRange sums the payments dated from..to, both included.
func (s *PaymentService) TotalByDateRange(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	payments, err := s.ListByDateRange(ctx, from, to)
	if err != nil {
		return decimal.Zero, fmt.Errorf("service.PaymentService.TotalByDateRange: %w", err)
	}
	return domain.SumAmounts(payments), nil
}

// LatestForAthlete returns the athlete's payment with the most recent date.
// Among payments on the same day the last one stored wins.
// Returns domain.ErrNotFound if the athlete has no payments.
func (s *PaymentService) LatestForAthlete(ctx context.Context, athleteID uuid.UUID) (domain.Payment, error) {
	payments, err := s.payments.ListByAthlete(ctx, athleteID)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("service.PaymentService.LatestForAthlete: %w", err)
	}
	if len(payments) == 0 {
		return domain.Payment{}, fmt.Errorf("service.PaymentService.LatestForAthlete: %w", domain.ErrNotFound)
	}
	latest := payments[0]
	for _, p := range payments[1:] {
		if !p.PaidOn.Before(latest.PaidOn) {
			latest = p
		}
	}
	return latest, nil
}

// maxAmount is the first value the NUMERIC(12,2) amount column cannot hold.
var maxAmount = decimal.New(1, 10)

// validateAmount rejects payments without an amount, with a negative one, or
// with one the amount column cannot store exactly.
func validateAmount(amount decimal.NullDecimal) error {
	if !amount.Valid {
		return fmt.Errorf("%w: amount is required", domain.ErrValidation)
	}
	d := amount.Decimal
	switch {
	case d.IsNegative():
		return fmt.Errorf("%w: amount must not be negative", domain.ErrValidation)
	case !d.Equal(d.Round(2)):
		return fmt.Errorf("%w: amount must have at most 2 decimal places", domain.ErrValidation)
	case d.GreaterThanOrEqual(maxAmount):
		return fmt.Errorf("%w: amount must be less than %s", domain.ErrValidation, maxAmount.String())
	}
	return nil
}
