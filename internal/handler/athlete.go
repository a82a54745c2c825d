package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/club-ledger/internal/domain"
)

// AthleteRequest is the body of POST /athletes and PUT /athletes/{id}.
// On update every field overwrites the stored one, except enrolled_on and
// active which are kept when omitted.
type AthleteRequest struct {
	FirstName            string              `json:"first_name"`
	LastName             string              `json:"last_name"`
	TaxCode              string              `json:"tax_code,omitempty"`
	BirthDate            *openapi_types.Date `json:"birth_date,omitempty"`
	Address              string              `json:"address,omitempty"`
	Phone                string              `json:"phone,omitempty"`
	Email                string              `json:"email,omitempty"`
	EnrolledOn           *openapi_types.Date `json:"enrolled_on,omitempty"`
	CertificateExpiresOn *openapi_types.Date `json:"certificate_expires_on,omitempty"`
	MembershipExpiresOn  *openapi_types.Date `json:"membership_expires_on,omitempty"`
	Notes                string              `json:"notes,omitempty"`
	Active               *bool               `json:"active,omitempty"`
}

// Athlete is the JSON representation of domain.Athlete.
type Athlete struct {
	ID                   uuid.UUID           `json:"id"`
	FirstName            string              `json:"first_name"`
	LastName             string              `json:"last_name"`
	FullName             string              `json:"full_name"`
	TaxCode              string              `json:"tax_code,omitempty"`
	BirthDate            *openapi_types.Date `json:"birth_date,omitempty"`
	Address              string              `json:"address,omitempty"`
	Phone                string              `json:"phone,omitempty"`
	Email                string              `json:"email,omitempty"`
	EnrolledOn           openapi_types.Date  `json:"enrolled_on"`
	CertificateExpiresOn *openapi_types.Date `json:"certificate_expires_on,omitempty"`
	MembershipExpiresOn  *openapi_types.Date `json:"membership_expires_on,omitempty"`
	Notes                string              `json:"notes,omitempty"`
	Active               bool                `json:"active"`
	DeactivatedOn        *openapi_types.Date `json:"deactivated_on,omitempty"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

// CreateAthlete handles POST /athletes.
// The new athlete is always active; active in the body is ignored.
func (s *Server) CreateAthlete(w http.ResponseWriter, r *http.Request) {
	var body AthleteRequest
	if !decodeBody(w, r, &body) {
		return
	}

	a := domain.Athlete{
		FirstName:            body.FirstName,
		LastName:             body.LastName,
		TaxCode:              body.TaxCode,
		BirthDate:            fromDate(body.BirthDate),
		Address:              body.Address,
		Phone:                body.Phone,
		Email:                body.Email,
		CertificateExpiresOn: fromDate(body.CertificateExpiresOn),
		MembershipExpiresOn:  fromDate(body.MembershipExpiresOn),
		Notes:                body.Notes,
	}
	if body.EnrolledOn != nil {
		a.EnrolledOn = body.EnrolledOn.Time
	}

	created, err := s.athletes.Create(r.Context(), a)
	if err != nil {
		s.respondError(w, r, err, "athlete")
		return
	}
	writeJSON(w, http.StatusCreated, athleteToResponse(created))
}

// ListAthletes handles GET /athletes.
// ?search= filters by first or last name, ignoring case.
func (s *Server) ListAthletes(w http.ResponseWriter, r *http.Request) {
	term, err := queryString(r, "search")
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody(err.Error()))
		return
	}
	var athletes []domain.Athlete
	if term != "" {
		athletes, err = s.athletes.Search(r.Context(), term)
	} else {
		athletes, err = s.athletes.List(r.Context())
	}
	if err != nil {
		s.respondError(w, r, err, "athlete")
		return
	}
	writeJSON(w, http.StatusOK, athletesToResponse(athletes))
}

// ListActiveAthletes handles GET /athletes/active.
func (s *Server) ListActiveAthletes(w http.ResponseWriter, r *http.Request) {
	athletes, err := s.athletes.ListActive(r.Context())
	if err != nil {
		s.respondError(w, r, err, "athlete")
		return
	}
	writeJSON(w, http.StatusOK, athletesToResponse(athletes))
}

// ListExpiringCertificates handles GET /athletes/expiring-certificates?days=30.
func (s *Server) ListExpiringCertificates(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", 30)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody(err.Error()))
		return
	}
	athletes, err := s.athletes.ListExpiringCertificates(r.Context(), days)
	if err != nil {
		s.respondError(w, r, err, "athlete")
		return
	}
	writeJSON(w, http.StatusOK, athletesToResponse(athletes))
}

// ListExpiringMemberships handles GET /athletes/expiring-memberships?days=30.
func (s *Server) ListExpiringMemberships(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", 30)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody(err.Error()))
		return
	}
	athletes, err := s.athletes.ListExpiringMemberships(r.Context(), days)
	if err != nil {
		s.respondError(w, r, err, "athlete")
		return
	}
	writeJSON(w, http.StatusOK, athletesToResponse(athletes))
}

// GetAthlete handles GET /athletes/{id}.
func (s *Server) GetAthlete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	a, err := s.athletes.GetByID(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, "athlete")
		return
	}
	writeJSON(w, http.StatusOK, athleteToResponse(a))
}

// UpdateAthlete handles PUT /athletes/{id}.
func (s *Server) UpdateAthlete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body AthleteRequest
	if !decodeBody(w, r, &body) {
		return
	}

	in := domain.AthleteUpdate{
		FirstName:            body.FirstName,
		LastName:             body.LastName,
		TaxCode:              body.TaxCode,
		BirthDate:            fromDate(body.BirthDate),
		Address:              body.Address,
		Phone:                body.Phone,
		Email:                body.Email,
		EnrolledOn:           fromDate(body.EnrolledOn),
		CertificateExpiresOn: fromDate(body.CertificateExpiresOn),
		MembershipExpiresOn:  fromDate(body.MembershipExpiresOn),
		Notes:                body.Notes,
		Active:               body.Active,
	}

	updated, err := s.athletes.Update(r.Context(), id, in)
	if err != nil {
		s.respondError(w, r, err, "athlete")
		return
	}
	writeJSON(w, http.StatusOK, athleteToResponse(updated))
}

// DisableAthlete handles PUT /athletes/{id}/disable.
func (s *Server) DisableAthlete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	a, err := s.athletes.Disable(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, "athlete")
		return
	}
	writeJSON(w, http.StatusOK, athleteToResponse(a))
}

// EnableAthlete handles PUT /athletes/{id}/enable.
func (s *Server) EnableAthlete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	a, err := s.athletes.Enable(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, "athlete")
		return
	}
	writeJSON(w, http.StatusOK, athleteToResponse(a))
}

// DeleteAthlete handles DELETE /athletes/{id}. The athlete's payments go with it.
func (s *Server) DeleteAthlete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.athletes.Delete(r.Context(), id); err != nil {
		s.respondError(w, r, err, "athlete")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

func athleteToResponse(a domain.Athlete) Athlete {
	return Athlete{
		ID:                   a.ID,
		FirstName:            a.FirstName,
		LastName:             a.LastName,
		FullName:             a.FullName(),
		TaxCode:              a.TaxCode,
		BirthDate:            toDate(a.BirthDate),
		Address:              a.Address,
		Phone:                a.Phone,
		Email:                a.Email,
		EnrolledOn:           openapi_types.Date{Time: a.EnrolledOn},
		CertificateExpiresOn: toDate(a.CertificateExpiresOn),
		MembershipExpiresOn:  toDate(a.MembershipExpiresOn),
		Notes:                a.Notes,
		Active:               a.Active,
		DeactivatedOn:        toDate(a.DeactivatedOn),
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
}

// athletesToResponse always returns a non-nil slice so empty lists encode as [].
func athletesToResponse(in []domain.Athlete) []Athlete {
	out := make([]Athlete, len(in))
	for i, a := range in {
		out[i] = athleteToResponse(a)
	}
	return out
}

func fromDate(d *openapi_types.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

func toDate(t *time.Time) *openapi_types.Date {
	if t == nil {
		return nil
	}
	return &openapi_types.Date{Time: *t}
}
