package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/pkordes/club-ledger/internal/domain"
)

func TestParsePaymentType(t *testing.T) {
	cases := []struct {
		in   string
		want domain.PaymentType
		ok   bool
	}{
		{"CASH", domain.PaymentTypeCash, true},
		{"cash", domain.PaymentTypeCash, true},
		{" bank_transfer ", domain.PaymentTypeBankTransfer, true},
		{"cheque", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := domain.ParsePaymentType(c.in)
		assert.Equal(t, c.want, got, "input %q", c.in)
		assert.Equal(t, c.ok, ok, "input %q", c.in)
	}
}

func TestSumAmounts_MissingAmountCountsAsZero(t *testing.T) {
	payments := []domain.Payment{
		{Amount: decimal.NewNullDecimal(decimal.RequireFromString("50.00"))},
		{},
		{Amount: decimal.NewNullDecimal(decimal.RequireFromString("25.50"))},
	}
	assert.True(t, decimal.RequireFromString("75.50").Equal(domain.SumAmounts(payments)))
	assert.True(t, domain.SumAmounts(nil).IsZero())
}
