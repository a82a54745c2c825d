package handler

import (
	"net/http"

	"github.com/pkordes/club-ledger/internal/domain"
)

// DashboardResponse is the body of GET /reports/dashboard.
type DashboardResponse struct {
	TotalAthletes        int    `json:"total_athletes"`
	ActiveAthletes       int    `json:"active_athletes"`
	InactiveAthletes     int    `json:"inactive_athletes"`
	RecentPayments       int    `json:"recent_payments"`
	RecentPaymentsTotal  string `json:"recent_payments_total"`
	ExpiringCertificates int    `json:"expiring_certificates"`
}

// MonthRevenue is one entry of GET /reports/monthly-revenue/{year}.
type MonthRevenue struct {
	Month int    `json:"month"`
	Name  string `json:"name"`
	Total string `json:"total"`
}

// AthleteStatsResponse is the body of GET /reports/athletes/stats.
type AthleteStatsResponse struct {
	TotalAthletes    int         `json:"total_athletes"`
	EnrolledByYear   map[int]int `json:"enrolled_by_year"`
	ActiveAthletes   int         `json:"active_athletes"`
	InactiveAthletes int         `json:"inactive_athletes"`
}

// TopPayer is one entry of GET /reports/athletes/top-payers.
type TopPayer struct {
	Athlete   Athlete `json:"athlete"`
	TotalPaid string  `json:"total_paid"`
}

// PaymentMethodStatsResponse is the body of GET /reports/payments/method-stats.
type PaymentMethodStatsResponse struct {
	Counts map[string]int    `json:"counts"`
	Totals map[string]string `json:"totals"`
}

// AnnualStatementResponse is the body of GET /reports/annual-statement/{athleteID}.
type AnnualStatementResponse struct {
	Year     int       `json:"year"`
	Athlete  Athlete   `json:"athlete"`
	Payments []Payment `json:"payments"`
	Total    string    `json:"total"`
}

// GetDashboard handles GET /reports/dashboard.
func (s *Server) GetDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.reports.Dashboard(r.Context())
	if err != nil {
		s.respondError(w, r, err, "report")
		return
	}
	writeJSON(w, http.StatusOK, DashboardResponse{
		TotalAthletes:        d.TotalAthletes,
		ActiveAthletes:       d.ActiveAthletes,
		InactiveAthletes:     d.InactiveAthletes,
		RecentPayments:       d.RecentPayments,
		RecentPaymentsTotal:  money(d.RecentPaymentsTotal),
		ExpiringCertificates: d.ExpiringCertificates,
	})
}

// GetMonthlyRevenue handles GET /reports/monthly-revenue/{year}.
func (s *Server) GetMonthlyRevenue(w http.ResponseWriter, r *http.Request) {
	year, err := pathInt(r, "year")
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody(err.Error()))
		return
	}
	months, err := s.reports.MonthlyRevenue(r.Context(), year)
	if err != nil {
		s.respondError(w, r, err, "report")
		return
	}
	out := make([]MonthRevenue, len(months))
	for i, m := range months {
		out[i] = MonthRevenue{Month: m.Month, Name: m.Name, Total: money(m.Total)}
	}
	writeJSON(w, http.StatusOK, out)
}

// GetAthleteStats handles GET /reports/athletes/stats.
func (s *Server) GetAthleteStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.reports.AthleteStats(r.Context())
	if err != nil {
		s.respondError(w, r, err, "report")
		return
	}
	writeJSON(w, http.StatusOK, AthleteStatsResponse{
		TotalAthletes:    st.TotalAthletes,
		EnrolledByYear:   st.EnrolledByYear,
		ActiveAthletes:   st.ActiveAthletes,
		InactiveAthletes: st.InactiveAthletes,
	})
}

// GetTopPayers handles GET /reports/athletes/top-payers?limit=10.
func (s *Server) GetTopPayers(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 10)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody(err.Error()))
		return
	}
	ranked, err := s.reports.TopPayers(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err, "report")
		return
	}
	out := make([]TopPayer, len(ranked))
	for i, at := range ranked {
		out[i] = TopPayer{Athlete: athleteToResponse(at.Athlete), TotalPaid: money(at.TotalPaid)}
	}
	writeJSON(w, http.StatusOK, out)
}

// GetPaymentMethodStats handles GET /reports/payments/method-stats.
func (s *Server) GetPaymentMethodStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.reports.PaymentMethodStats(r.Context())
	if err != nil {
		s.respondError(w, r, err, "report")
		return
	}
	resp := PaymentMethodStatsResponse{
		Counts: make(map[string]int, len(st.Counts)),
		Totals: make(map[string]string, len(st.Totals)),
	}
	for t, n := range st.Counts {
		resp.Counts[string(t)] = n
	}
	for t, total := range st.Totals {
		resp.Totals[string(t)] = money(total)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetAnnualStatement handles GET /reports/annual-statement/{athleteID}?year=.
// The year defaults to the current one.
func (s *Server) GetAnnualStatement(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := pathID(w, r, "athleteID")
	if !ok {
		return
	}
	year, err := queryInt(r, "year", s.now().Year())
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody(err.Error()))
		return
	}
	st, err := s.reports.AnnualStatement(r.Context(), athleteID, year)
	if err != nil {
		s.respondError(w, r, err, "athlete")
		return
	}
	writeJSON(w, http.StatusOK, statementToResponse(st))
}

func statementToResponse(st domain.AnnualStatement) AnnualStatementResponse {
	return AnnualStatementResponse{
		Year:     st.Year,
		Athlete:  athleteToResponse(st.Athlete),
		Payments: paymentsToResponse(st.Payments),
		Total:    money(st.Total),
	}
}
