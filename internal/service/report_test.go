package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/club-ledger/internal/domain"
	"github.com/pkordes/club-ledger/internal/service"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestReportService_Dashboard(t *testing.T) {
	ctx := context.Background()
	l := newLedger(day(2024, time.June, 1))
	a := l.enroll(t, "Mario", "Rossi")
	b := l.enroll(t, "Anna", "Bianchi")
	_, err := l.athletes.Create(ctx, domain.Athlete{
		FirstName: "Luca", LastName: "Verdi", CertificateExpiresOn: ptr(day(2024, time.June, 20)),
	})
	require.NoError(t, err)
	_, err = l.athletes.Disable(ctx, b.ID)
	require.NoError(t, err)

	l.pay(t, a.ID, "40", day(2024, time.May, 20), domain.PaymentTypeCash)
	l.pay(t, a.ID, "10.50", day(2024, time.June, 1), domain.PaymentTypeCash)
	l.pay(t, a.ID, "99", day(2024, time.April, 1), domain.PaymentTypeCash)

	got, err := l.reports.Dashboard(ctx)

	require.NoError(t, err)
	assert.Equal(t, 3, got.TotalAthletes)
	assert.Equal(t, 2, got.ActiveAthletes)
	assert.Equal(t, 1, got.InactiveAthletes)
	assert.Equal(t, 2, got.RecentPayments)
	assert.True(t, dec("50.50").Equal(got.RecentPaymentsTotal), got.RecentPaymentsTotal.String())
	assert.Equal(t, 1, got.ExpiringCertificates)
}

func TestReportService_MonthlyRevenue(t *testing.T) {
	ctx := context.Background()
	l := newLedger(day(2024, time.December, 31))
	a := l.enroll(t, "Mario", "Rossi")
	l.pay(t, a.ID, "10", day(2024, time.January, 31), domain.PaymentTypeCash)
	l.pay(t, a.ID, "20", day(2024, time.February, 29), domain.PaymentTypeCash)
	l.pay(t, a.ID, "5.25", day(2024, time.February, 1), domain.PaymentTypeBankTransfer)
	l.pay(t, a.ID, "30", day(2024, time.December, 31), "")
	l.pay(t, a.ID, "1000", day(2023, time.December, 31), domain.PaymentTypeCash)

	got, err := l.reports.MonthlyRevenue(ctx, 2024)
	require.NoError(t, err)
	require.Len(t, got, 12)

	assert.Equal(t, 1, got[0].Month)
	assert.Equal(t, "Gennaio", got[0].Name)
	assert.Equal(t, "Dicembre", got[11].Name)
	assert.True(t, dec("25.25").Equal(got[1].Total), "leap-year February includes the 29th")
	assert.True(t, got[5].Total.IsZero(), "empty months report zero")

	sum := decimal.Zero
	for _, m := range got {
		sum = sum.Add(m.Total)
	}
	yearTotal, err := l.payments.TotalByDateRange(ctx, day(2024, time.January, 1), day(2024, time.December, 31))
	require.NoError(t, err)
	assert.True(t, yearTotal.Equal(sum))
	assert.True(t, dec("65.25").Equal(sum))
}

func TestReportService_MonthlyRevenue_Locale(t *testing.T) {
	l := newLedger(jan10, service.WithLocale("en"))

	got, err := l.reports.MonthlyRevenue(context.Background(), 2024)

	require.NoError(t, err)
	assert.Equal(t, "January", got[0].Name)
	assert.Equal(t, "December", got[11].Name)
}

func TestReportService_MonthlyRevenue_UnknownLocaleFallsBack(t *testing.T) {
	l := newLedger(jan10, service.WithLocale("xx"))

	got, err := l.reports.MonthlyRevenue(context.Background(), 2024)

	require.NoError(t, err)
	assert.Equal(t, "Gennaio", got[0].Name)
}

func TestReportService_MonthlyRevenue_BadYear(t *testing.T) {
	l := newLedger(jan10)

	_, err := l.reports.MonthlyRevenue(context.Background(), 0)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReportService_AthleteStats(t *testing.T) {
	ctx := context.Background()
	l := newLedger(jan10)
	for _, y := range []int{2022, 2023, 2023} {
		_, err := l.athletes.Create(ctx, domain.Athlete{FirstName: "X", LastName: "Y", EnrolledOn: day(y, time.May, 1)})
		require.NoError(t, err)
	}
	a := l.enroll(t, "Mario", "Rossi")
	_, err := l.athletes.Disable(ctx, a.ID)
	require.NoError(t, err)

	got, err := l.reports.AthleteStats(ctx)

	require.NoError(t, err)
	assert.Equal(t, 4, got.TotalAthletes)
	assert.Equal(t, map[int]int{2022: 1, 2023: 2, 2024: 1}, got.EnrolledByYear)
	assert.Equal(t, 3, got.ActiveAthletes)
	assert.Equal(t, 1, got.InactiveAthletes)
}

func TestReportService_TopPayers(t *testing.T) {
	l := newLedger(jan10)
	a := l.enroll(t, "A", "A")
	b := l.enroll(t, "B", "B")
	c := l.enroll(t, "C", "C")
	l.pay(t, a.ID, "100", jan10, domain.PaymentTypeCash)
	l.pay(t, b.ID, "50", jan10, domain.PaymentTypeCash)
	l.pay(t, c.ID, "75", jan10, domain.PaymentTypeCash)

	got, err := l.reports.TopPayers(context.Background(), 2)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a.ID, got[0].Athlete.ID)
	assert.Equal(t, c.ID, got[1].Athlete.ID)
	assert.True(t, dec("75").Equal(got[1].TotalPaid))
}

func TestReportService_TopPayers_TiesKeepStorageOrder(t *testing.T) {
	l := newLedger(jan10)
	first := l.enroll(t, "First", "X")
	second := l.enroll(t, "Second", "X")
	nothing := l.enroll(t, "Nothing", "X")
	l.pay(t, second.ID, "10", jan10, domain.PaymentTypeCash)
	l.pay(t, first.ID, "10", jan10, domain.PaymentTypeCash)

	got, err := l.reports.TopPayers(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, first.ID, got[0].Athlete.ID)
	assert.Equal(t, second.ID, got[1].Athlete.ID)
	assert.Equal(t, nothing.ID, got[2].Athlete.ID)
	assert.True(t, got[2].TotalPaid.IsZero())
}

func TestReportService_TopPayers_BadLimit(t *testing.T) {
	l := newLedger(jan10)

	_, err := l.reports.TopPayers(context.Background(), 0)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReportService_PaymentMethodStats(t *testing.T) {
	l := newLedger(jan10)
	a := l.enroll(t, "Mario", "Rossi")
	l.pay(t, a.ID, "10", jan10, domain.PaymentTypeCash)
	l.pay(t, a.ID, "15", jan10, domain.PaymentTypeCash)
	l.pay(t, a.ID, "100", jan10, domain.PaymentTypeBankTransfer)
	l.pay(t, a.ID, "7", jan10, "")

	got, err := l.reports.PaymentMethodStats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, map[domain.PaymentType]int{
		domain.PaymentTypeCash:         2,
		domain.PaymentTypeBankTransfer: 1,
	}, got.Counts)
	assert.True(t, dec("25").Equal(got.Totals[domain.PaymentTypeCash]))
	assert.True(t, dec("100").Equal(got.Totals[domain.PaymentTypeBankTransfer]))
	assert.Len(t, got.Totals, 2)
}

func TestReportService_AnnualStatement(t *testing.T) {
	ctx := context.Background()
	l := newLedger(jan10)
	a := l.enroll(t, "Mario", "Rossi")
	b := l.enroll(t, "Anna", "Bianchi")
	l.pay(t, a.ID, "10", day(2023, time.January, 1), domain.PaymentTypeCash)
	l.pay(t, a.ID, "20", day(2023, time.December, 31), domain.PaymentTypeCash)
	l.pay(t, a.ID, "40", day(2024, time.January, 1), domain.PaymentTypeCash)
	l.pay(t, b.ID, "80", day(2023, time.June, 1), domain.PaymentTypeCash)

	got, err := l.reports.AnnualStatement(ctx, a.ID, 2023)

	require.NoError(t, err)
	assert.Equal(t, 2023, got.Year)
	assert.Equal(t, "Rossi", got.Athlete.LastName)
	assert.Len(t, got.Payments, 2)
	assert.True(t, dec("30").Equal(got.Total))

	_, err = l.reports.AnnualStatement(ctx, uuid.New(), 2023)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// stubPayments fails every read; the reports must surface the error wrapped.
type stubPayments struct {
	service.PaymentReader
	err error
}

func (s stubPayments) ListRecent(context.Context, int) ([]domain.Payment, error) {
	return nil, s.err
}

func TestReportService_Dashboard_PropagatesErrors(t *testing.T) {
	l := newLedger(jan10)
	boom := errors.New("timeout")
	svc := service.NewReportService(l.athletes, stubPayments{err: boom})

	_, err := svc.Dashboard(context.Background())

	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "service.ReportService.Dashboard")
}
