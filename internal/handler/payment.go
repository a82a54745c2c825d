package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"

	"github.com/pkordes/club-ledger/internal/domain"
)

// PaymentRequest is the body of the payment create and update endpoints.
//
// paid_on is the canonical date. Older clients send it as date or data; those
// aliases are read only when paid_on is absent and never written back.
// An unknown payment_type is stored as unclassified, not rejected.
type PaymentRequest struct {
	AthleteID   *uuid.UUID          `json:"athlete_id,omitempty"`
	Amount      decimal.NullDecimal `json:"amount"`
	PaidOn      *openapi_types.Date `json:"paid_on,omitempty"`
	LegacyDate  *openapi_types.Date `json:"date,omitempty"`
	LegacyData  *openapi_types.Date `json:"data,omitempty"`
	PaymentType string              `json:"payment_type,omitempty"`
}

// Payment is the JSON representation of domain.Payment.
// Amounts are decimal strings with two fraction digits.
type Payment struct {
	ID          uuid.UUID          `json:"id"`
	AthleteID   *uuid.UUID         `json:"athlete_id,omitempty"`
	Amount      string             `json:"amount"`
	PaidOn      openapi_types.Date `json:"paid_on"`
	PaymentType string             `json:"payment_type,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// TotalResponse is the body of the total endpoints.
type TotalResponse struct {
	AthleteID   *uuid.UUID          `json:"athlete_id,omitempty"`
	PaymentType string              `json:"payment_type,omitempty"`
	From        *openapi_types.Date `json:"from,omitempty"`
	To          *openapi_types.Date `json:"to,omitempty"`
	Total       string              `json:"total"`
}

// CreatePayment handles POST /payments.
// A body without athlete_id stores an unlinked payment.
func (s *Server) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var body PaymentRequest
	if !decodeBody(w, r, &body) {
		return
	}
	p := requestToPayment(body)
	if body.AthleteID != nil {
		p.AthleteID = uuid.NullUUID{UUID: *body.AthleteID, Valid: true}
	}

	created, err := s.payments.CreateFromPayload(r.Context(), p)
	if err != nil {
		s.respondError(w, r, err, "athlete")
		return
	}
	writeJSON(w, http.StatusCreated, paymentToResponse(created))
}

// CreateAthletePayment handles POST /athletes/{id}/payments.
// The path decides the athlete; athlete_id in the body is ignored.
func (s *Server) CreateAthletePayment(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body PaymentRequest
	if !decodeBody(w, r, &body) {
		return
	}

	created, err := s.payments.Create(r.Context(), athleteID, requestToPayment(body))
	if err != nil {
		s.respondError(w, r, err, "athlete")
		return
	}
	writeJSON(w, http.StatusCreated, paymentToResponse(created))
}

// ListPayments handles GET /payments.
// Filters are athlete_id, type, and the from/to pair; the first one present
// wins and the rest are ignored.
func (s *Server) ListPayments(w http.ResponseWriter, r *http.Request) {
	athleteID, err := queryUUID(r, "athlete_id")
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody(err.Error()))
		return
	}
	rawType, err := queryString(r, "type")
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody(err.Error()))
		return
	}

	var payments []domain.Payment
	switch {
	case athleteID != nil:
		payments, err = s.payments.ListByAthlete(r.Context(), *athleteID)
	case rawType != "":
		t, _ := domain.ParsePaymentType(rawType)
		payments, err = s.payments.ListByType(r.Context(), t)
	default:
		from, to, ranged, rerr := queryRange(r)
		if rerr != nil {
			writeJSON(w, http.StatusUnprocessableEntity, requestBody(rerr.Error()))
			return
		}
		if ranged {
			payments, err = s.payments.ListByDateRange(r.Context(), from, to)
		} else {
			payments, err = s.payments.List(r.Context())
		}
	}
	if err != nil {
		s.respondError(w, r, err, "payment")
		return
	}
	writeJSON(w, http.StatusOK, paymentsToResponse(payments))
}

// ListRecentPayments handles GET /payments/recent?days=7.
func (s *Server) ListRecentPayments(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", 7)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody(err.Error()))
		return
	}
	payments, err := s.payments.ListRecent(r.Context(), days)
	if err != nil {
		s.respondError(w, r, err, "payment")
		return
	}
	writeJSON(w, http.StatusOK, paymentsToResponse(payments))
}

// GetPaymentTotal handles GET /payments/total?from=&to=. Both dates are required.
func (s *Server) GetPaymentTotal(w http.ResponseWriter, r *http.Request) {
	from, to, ranged, err := queryRange(r)
	if err == nil && !ranged {
		err = errMissingRange
	}
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody(err.Error()))
		return
	}
	total, err := s.payments.TotalByDateRange(r.Context(), from, to)
	if err != nil {
		s.respondError(w, r, err, "payment")
		return
	}
	writeJSON(w, http.StatusOK, TotalResponse{
		From:  &openapi_types.Date{Time: from},
		To:    &openapi_types.Date{Time: to},
		Total: money(total),
	})
}

// GetAthletePaymentTotal handles GET /athletes/{id}/payments/total?type=.
// An unknown type totals zero.
func (s *Server) GetAthletePaymentTotal(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	resp := TotalResponse{AthleteID: &athleteID}

	raw, err := queryString(r, "type")
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody(err.Error()))
		return
	}
	var total decimal.Decimal
	if raw != "" {
		t, _ := domain.ParsePaymentType(raw)
		resp.PaymentType = string(t)
		total, err = s.payments.TotalByAthleteAndType(r.Context(), athleteID, t)
	} else {
		total, err = s.payments.TotalByAthlete(r.Context(), athleteID)
	}
	if err != nil {
		s.respondError(w, r, err, "athlete")
		return
	}
	resp.Total = money(total)
	writeJSON(w, http.StatusOK, resp)
}

// GetPayment handles GET /payments/{id}.
func (s *Server) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := s.payments.GetByID(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, "payment")
		return
	}
	writeJSON(w, http.StatusOK, paymentToResponse(p))
}

// UpdatePayment handles PUT /payments/{id}.
// Amount and type are overwritten; an absent date keeps the stored one.
func (s *Server) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body PaymentRequest
	if !decodeBody(w, r, &body) {
		return
	}

	updated, err := s.payments.Update(r.Context(), id, requestToPayment(body))
	if err != nil {
		s.respondError(w, r, err, "payment")
		return
	}
	writeJSON(w, http.StatusOK, paymentToResponse(updated))
}

// DeletePayment handles DELETE /payments/{id}.
func (s *Server) DeletePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.payments.Delete(r.Context(), id); err != nil {
		s.respondError(w, r, err, "payment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

// requestToPayment maps the request body onto a domain.Payment, resolving
// the legacy date aliases. The athlete link is left to the caller.
func requestToPayment(body PaymentRequest) domain.Payment {
	p := domain.Payment{Amount: body.Amount}
	for _, d := range []*openapi_types.Date{body.PaidOn, body.LegacyDate, body.LegacyData} {
		if d != nil {
			p.PaidOn = d.Time
			break
		}
	}
	p.Type, _ = domain.ParsePaymentType(body.PaymentType)
	return p
}

func paymentToResponse(p domain.Payment) Payment {
	resp := Payment{
		ID:          p.ID,
		Amount:      money(p.AmountOrZero()),
		PaidOn:      openapi_types.Date{Time: p.PaidOn},
		PaymentType: string(p.Type),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.AthleteID.Valid {
		id := p.AthleteID.UUID
		resp.AthleteID = &id
	}
	return resp
}

func paymentsToResponse(in []domain.Payment) []Payment {
	out := make([]Payment, len(in))
	for i, p := range in {
		out[i] = paymentToResponse(p)
	}
	return out
}

// money renders an amount with two fraction digits.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
