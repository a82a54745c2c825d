package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentType is the closed classification of how a payment was made.
// The zero value means the payment is unclassified; it is not an error and
// such payments are simply left out of per-type reports.
type PaymentType string

const (
	PaymentTypeBankTransfer PaymentType = "BANK_TRANSFER"
	PaymentTypeCash         PaymentType = "CASH"
)

// PaymentTypes lists every classified payment type in display order.
var PaymentTypes = []PaymentType{PaymentTypeBankTransfer, PaymentTypeCash}

// ParsePaymentType maps s onto a PaymentType, ignoring case and surrounding
// spaces. Unknown values return the unclassified type and false.
func ParsePaymentType(s string) (PaymentType, bool) {
	t := PaymentType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", false
	}
	return t, true
}

// Valid reports whether t is one of the classified payment types.
func (t PaymentType) Valid() bool {
	for _, known := range PaymentTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Payment is a single monetary transaction attributed to one athlete.
//
// AthleteID is a foreign key only. It is invalid solely for payments stored
// through the explicit unlinked path (see service.PaymentService.CreateUnlinked).
type Payment struct {
	ID        uuid.UUID
	AthleteID uuid.NullUUID
	Amount    decimal.NullDecimal
	PaidOn    time.Time
	Type      PaymentType
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AmountOrZero returns the amount, treating a missing one as zero.
func (p Payment) AmountOrZero() decimal.Decimal {
	if !p.Amount.Valid {
		return decimal.Zero
	}
	return p.Amount.Decimal
}

// SumAmounts adds up the amounts of payments, counting missing amounts as zero.
func SumAmounts(payments []Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.AmountOrZero())
	}
	return total
}
