package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/club-ledger/internal/domain"
	"github.com/pkordes/club-ledger/internal/receipt"
)

// AthleteFinder is the part of AthleteService receipts read through.
type AthleteFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Athlete, error)
}

// PaymentFinder is the part of PaymentService receipts read through.
type PaymentFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Payment, error)
	LatestForAthlete(ctx context.Context, athleteID uuid.UUID) (domain.Payment, error)
}

var (
	_ AthleteFinder = (*AthleteService)(nil)
	_ PaymentFinder = (*PaymentService)(nil)
)

// ReceiptService resolves the payment, athlete, and receipt number a
// document renderer needs to print a receipt.
type ReceiptService struct {
	athletes AthleteFinder
	payments PaymentFinder
	seq      *receipt.Sequencer
	env
}

// NewReceiptService constructs a ReceiptService. seq is the process-wide
// sequencer created once at startup.
func NewReceiptService(athletes AthleteFinder, payments PaymentFinder, seq *receipt.Sequencer, opts ...Option) *ReceiptService {
	return &ReceiptService{athletes: athletes, payments: payments, seq: seq, env: newEnv(opts)}
}

// ForPayment builds the receipt of one payment.
// Returns domain.ErrNotFound if the payment does not exist or has no athlete
// that can be found.
func (s *ReceiptService) ForPayment(ctx context.Context, paymentID uuid.UUID) (domain.Receipt, error) {
	p, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("service.ReceiptService.ForPayment: %w", err)
	}
	if !p.AthleteID.Valid {
		return domain.Receipt{}, fmt.Errorf("service.ReceiptService.ForPayment: payment has no athlete: %w", domain.ErrNotFound)
	}
	a, err := s.athletes.GetByID(ctx, p.AthleteID.UUID)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("service.ReceiptService.ForPayment: %w", err)
	}
	return s.issue(p, a), nil
}

// ForLatestPayment builds the receipt of the athlete's most recent payment.
// Returns domain.ErrNotFound if the athlete does not exist or has no payments.
func (s *ReceiptService) ForLatestPayment(ctx context.Context, athleteID uuid.UUID) (domain.Receipt, error) {
	a, err := s.athletes.GetByID(ctx, athleteID)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("service.ReceiptService.ForLatestPayment: %w", err)
	}
	p, err := s.payments.LatestForAthlete(ctx, athleteID)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("service.ReceiptService.ForLatestPayment: %w", err)
	}
	return s.issue(p, a), nil
}

// issue consumes a receipt number. It runs only once both sides resolved,
// so failed lookups leave no gaps in the numbering.
func (s *ReceiptService) issue(p domain.Payment, a domain.Athlete) domain.Receipt {
	r := domain.Receipt{Number: s.seq.Next(), Payment: p, Athlete: a}
	s.metrics.ObserveReceipt()
	s.log.Info("receipt issued", "number", r.Number, "payment_id", p.ID, "athlete_id", a.ID)
	return r
}
