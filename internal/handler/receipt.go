package handler

import "net/http"

// ReceiptResponse carries everything a document renderer needs to print
// a payment receipt.
type ReceiptResponse struct {
	Number  string  `json:"number"`
	Payment Payment `json:"payment"`
	Athlete Athlete `json:"athlete"`
}

// GetPaymentReceipt handles GET /payments/{id}/receipt.
// Each successful call consumes a new receipt number.
func (s *Server) GetPaymentReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	rc, err := s.receipts.ForPayment(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, "payment or athlete")
		return
	}
	writeJSON(w, http.StatusOK, ReceiptResponse{
		Number:  rc.Number,
		Payment: paymentToResponse(rc.Payment),
		Athlete: athleteToResponse(rc.Athlete),
	})
}

// GetLatestReceipt handles GET /athletes/{id}/receipt, the receipt of the
// athlete's most recent payment.
func (s *Server) GetLatestReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	rc, err := s.receipts.ForLatestPayment(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, "athlete or payment")
		return
	}
	writeJSON(w, http.StatusOK, ReceiptResponse{
		Number:  rc.Number,
		Payment: paymentToResponse(rc.Payment),
		Athlete: athleteToResponse(rc.Athlete),
	})
}
