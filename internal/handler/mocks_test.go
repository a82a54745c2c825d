package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/club-ledger/internal/domain"
	"github.com/pkordes/club-ledger/internal/handler"
)

// mockAthletes is a test double for handler.AthleteServicer.
// Set only the method fields your test needs.
type mockAthletes struct {
	create        func(ctx context.Context, a domain.Athlete) (domain.Athlete, error)
	getByID       func(ctx context.Context, id uuid.UUID) (domain.Athlete, error)
	list          func(ctx context.Context) ([]domain.Athlete, error)
	search        func(ctx context.Context, term string) ([]domain.Athlete, error)
	listActive    func(ctx context.Context) ([]domain.Athlete, error)
	expiringCerts func(ctx context.Context, days int) ([]domain.Athlete, error)
	expiringMemb  func(ctx context.Context, days int) ([]domain.Athlete, error)
	update        func(ctx context.Context, id uuid.UUID, in domain.AthleteUpdate) (domain.Athlete, error)
	disable       func(ctx context.Context, id uuid.UUID) (domain.Athlete, error)
	enable        func(ctx context.Context, id uuid.UUID) (domain.Athlete, error)
	delete        func(ctx context.Context, id uuid.UUID) error
}

func (m *mockAthletes) Create(ctx context.Context, a domain.Athlete) (domain.Athlete, error) {
	return m.create(ctx, a)
}
func (m *mockAthletes) GetByID(ctx context.Context, id uuid.UUID) (domain.Athlete, error) {
	return m.getByID(ctx, id)
}
func (m *mockAthletes) List(ctx context.Context) ([]domain.Athlete, error) {
	return m.list(ctx)
}
func (m *mockAthletes) Search(ctx context.Context, term string) ([]domain.Athlete, error) {
	return m.search(ctx, term)
}
func (m *mockAthletes) ListActive(ctx context.Context) ([]domain.Athlete, error) {
	return m.listActive(ctx)
}
func (m *mockAthletes) ListExpiringCertificates(ctx context.Context, days int) ([]domain.Athlete, error) {
	return m.expiringCerts(ctx, days)
}
func (m *mockAthletes) ListExpiringMemberships(ctx context.Context, days int) ([]domain.Athlete, error) {
	return m.expiringMemb(ctx, days)
}
func (m *mockAthletes) Update(ctx context.Context, id uuid.UUID, in domain.AthleteUpdate) (domain.Athlete, error) {
	return m.update(ctx, id, in)
}
func (m *mockAthletes) Disable(ctx context.Context, id uuid.UUID) (domain.Athlete, error) {
	return m.disable(ctx, id)
}
func (m *mockAthletes) Enable(ctx context.Context, id uuid.UUID) (domain.Athlete, error) {
	return m.enable(ctx, id)
}
func (m *mockAthletes) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ handler.AthleteServicer = (*mockAthletes)(nil)

// mockPayments is a test double for handler.PaymentServicer.
type mockPayments struct {
	create          func(ctx context.Context, athleteID uuid.UUID, p domain.Payment) (domain.Payment, error)
	createPayload   func(ctx context.Context, p domain.Payment) (domain.Payment, error)
	getByID         func(ctx context.Context, id uuid.UUID) (domain.Payment, error)
	list            func(ctx context.Context) ([]domain.Payment, error)
	update          func(ctx context.Context, id uuid.UUID, in domain.Payment) (domain.Payment, error)
	delete          func(ctx context.Context, id uuid.UUID) error
	listByAthlete   func(ctx context.Context, athleteID uuid.UUID) ([]domain.Payment, error)
	listByType      func(ctx context.Context, t domain.PaymentType) ([]domain.Payment, error)
	listByDateRange func(ctx context.Context, from, to time.Time) ([]domain.Payment, error)
	listRecent      func(ctx context.Context, days int) ([]domain.Payment, error)
	totalByAthlete  func(ctx context.Context, athleteID uuid.UUID) (decimal.Decimal, error)
	totalByType     func(ctx context.Context, athleteID uuid.UUID, t domain.PaymentType) (decimal.Decimal, error)
	totalByRange    func(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
}

func (m *mockPayments) Create(ctx context.Context, athleteID uuid.UUID, p domain.Payment) (domain.Payment, error) {
	return m.create(ctx, athleteID, p)
}
func (m *mockPayments) CreateFromPayload(ctx context.Context, p domain.Payment) (domain.Payment, error) {
	return m.createPayload(ctx, p)
}
func (m *mockPayments) GetByID(ctx context.Context, id uuid.UUID) (domain.Payment, error) {
	return m.getByID(ctx, id)
}
func (m *mockPayments) List(ctx context.Context) ([]domain.Payment, error) {
	return m.list(ctx)
}
func (m *mockPayments) Update(ctx context.Context, id uuid.UUID, in domain.Payment) (domain.Payment, error) {
	return m.update(ctx, id, in)
}
func (m *mockPayments) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockPayments) ListByAthlete(ctx context.Context, athleteID uuid.UUID) ([]domain.Payment, error) {
	return m.listByAthlete(ctx, athleteID)
}
func (m *mockPayments) ListByType(ctx context.Context, t domain.PaymentType) ([]domain.Payment, error) {
	return m.listByType(ctx, t)
}
func (m *mockPayments) ListByDateRange(ctx context.Context, from, to time.Time) ([]domain.Payment, error) {
	return m.listByDateRange(ctx, from, to)
}
func (m *mockPayments) ListRecent(ctx context.Context, days int) ([]domain.Payment, error) {
	return m.listRecent(ctx, days)
}
func (m *mockPayments) TotalByAthlete(ctx context.Context, athleteID uuid.UUID) (decimal.Decimal, error) {
	return m.totalByAthlete(ctx, athleteID)
}
func (m *mockPayments) TotalByAthleteAndType(ctx context.Context, athleteID uuid.UUID, t domain.PaymentType) (decimal.Decimal, error) {
	return m.totalByType(ctx, athleteID, t)
}
func (m *mockPayments) TotalByDateRange(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	return m.totalByRange(ctx, from, to)
}

var _ handler.PaymentServicer = (*mockPayments)(nil)

// mockReports is a test double for handler.ReportServicer.
type mockReports struct {
	dashboard       func(ctx context.Context) (domain.DashboardStats, error)
	monthlyRevenue  func(ctx context.Context, year int) ([]domain.MonthRevenue, error)
	athleteStats    func(ctx context.Context) (domain.AthleteStats, error)
	topPayers       func(ctx context.Context, limit int) ([]domain.AthleteTotal, error)
	methodStats     func(ctx context.Context) (domain.PaymentTypeStats, error)
	annualStatement func(ctx context.Context, athleteID uuid.UUID, year int) (domain.AnnualStatement, error)
}

func (m *mockReports) Dashboard(ctx context.Context) (domain.DashboardStats, error) {
	return m.dashboard(ctx)
}
func (m *mockReports) MonthlyRevenue(ctx context.Context, year int) ([]domain.MonthRevenue, error) {
	return m.monthlyRevenue(ctx, year)
}
func (m *mockReports) AthleteStats(ctx context.Context) (domain.AthleteStats, error) {
	return m.athleteStats(ctx)
}
func (m *mockReports) TopPayers(ctx context.Context, limit int) ([]domain.AthleteTotal, error) {
	return m.topPayers(ctx, limit)
}
func (m *mockReports) PaymentMethodStats(ctx context.Context) (domain.PaymentTypeStats, error) {
	return m.methodStats(ctx)
}
func (m *mockReports) AnnualStatement(ctx context.Context, athleteID uuid.UUID, year int) (domain.AnnualStatement, error) {
	return m.annualStatement(ctx, athleteID, year)
}

var _ handler.ReportServicer = (*mockReports)(nil)

// mockReceipts is a test double for handler.ReceiptServicer.
type mockReceipts struct {
	forPayment       func(ctx context.Context, paymentID uuid.UUID) (domain.Receipt, error)
	forLatestPayment func(ctx context.Context, athleteID uuid.UUID) (domain.Receipt, error)
}

func (m *mockReceipts) ForPayment(ctx context.Context, paymentID uuid.UUID) (domain.Receipt, error) {
	return m.forPayment(ctx, paymentID)
}
func (m *mockReceipts) ForLatestPayment(ctx context.Context, athleteID uuid.UUID) (domain.Receipt, error) {
	return m.forLatestPayment(ctx, athleteID)
}

var _ handler.ReceiptServicer = (*mockReceipts)(nil)

// ---- helpers ---------------------------------------------------------------

// deps groups the mocks a test wires into the router; nil fields stay nil.
type deps struct {
	athletes *mockAthletes
	payments *mockPayments
	reports  *mockReports
	receipts *mockReceipts
}

// newHTTPHandler wires a Server with the given mocks into its chi router,
// the same way the serve command wires it in production.
func newHTTPHandler(d deps) http.Handler {
	var (
		athletes handler.AthleteServicer
		payments handler.PaymentServicer
		reports  handler.ReportServicer
		receipts handler.ReceiptServicer
	)
	if d.athletes != nil {
		athletes = d.athletes
	}
	if d.payments != nil {
		payments = d.payments
	}
	if d.reports != nil {
		reports = d.reports
	}
	if d.receipts != nil {
		receipts = d.receipts
	}
	log := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return handler.NewServer(athletes, payments, reports, receipts, log).Routes()
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewBuffer(raw)
	}
	req := httptest.NewRequest(method, target, r)
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[handler.ErrorResponse](t, rec).Error.Code
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func athleteFixture() domain.Athlete {
	return domain.Athlete{
		ID:         uuid.New(),
		FirstName:  "Mario",
		LastName:   "Rossi",
		EnrolledOn: day(2024, time.January, 10),
		Active:     true,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
}

func paymentFixture(athleteID uuid.UUID) domain.Payment {
	return domain.Payment{
		ID:        uuid.New(),
		AthleteID: uuid.NullUUID{UUID: athleteID, Valid: true},
		Amount:    decimal.NewNullDecimal(decimal.RequireFromString("50.5")),
		PaidOn:    day(2024, time.March, 1),
		Type:      domain.PaymentTypeCash,
	}
}
