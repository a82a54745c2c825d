package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/club-ledger/internal/domain"
	"github.com/pkordes/club-ledger/internal/repo"
)

// AthleteService manages the athlete lifecycle: registration, updates,
// enabling and disabling, and the expiry-window queries.
type AthleteService struct {
	repo repo.AthleteRepo
	env
}

// NewAthleteService constructs an AthleteService backed by the provided AthleteRepo.
func NewAthleteService(r repo.AthleteRepo, opts ...Option) *AthleteService {
	return &AthleteService{repo: r, env: newEnv(opts)}
}

// Create validates and persists a new athlete.
// EnrolledOn defaults to today; a new athlete is always active.
// Returns domain.ErrValidation if a name is missing.
func (s *AthleteService) Create(ctx context.Context, a domain.Athlete) (domain.Athlete, error) {
	if err := validateNames(a.FirstName, a.LastName); err != nil {
		return domain.Athlete{}, err
	}
	if a.EnrolledOn.IsZero() {
		a.EnrolledOn = s.today()
	}
	a.EnrolledOn = domain.Date(a.EnrolledOn)
	a.BirthDate = datePtr(a.BirthDate)
	a.CertificateExpiresOn = datePtr(a.CertificateExpiresOn)
	a.MembershipExpiresOn = datePtr(a.MembershipExpiresOn)
	a.Enable()

	result, err := s.repo.Create(ctx, a)
	if err != nil {
		return domain.Athlete{}, fmt.Errorf("service.AthleteService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a single athlete.
// Returns domain.ErrNotFound if it does not exist.
func (s *AthleteService) GetByID(ctx context.Context, id uuid.UUID) (domain.Athlete, error) {
	result, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Athlete{}, fmt.Errorf("service.AthleteService.GetByID: %w", err)
	}
	return result, nil
}

// List returns every athlete in storage order.
// Always returns a non-nil slice so callers can safely range over it.
func (s *AthleteService) List(ctx context.Context) ([]domain.Athlete, error) {
	athletes, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.AthleteService.List: %w", err)
	}
	return nonNil(athletes), nil
}

// Search matches term against first and last name, ignoring case.
// A blank term lists every athlete.
func (s *AthleteService) Search(ctx context.Context, term string) ([]domain.Athlete, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.List(ctx)
	}
	athletes, err := s.repo.Search(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("service.AthleteService.Search: %w", err)
	}
	return nonNil(athletes), nil
}

// Update overwrites every mutable field of an athlete with in.
//
// Two fields are exceptions: a nil EnrolledOn keeps the stored enrollment
// date, and a nil Active keeps the stored status. When Active flips, the
// deactivation date follows it as in Disable and Enable.
// Returns domain.ErrNotFound if the athlete does not exist and
// domain.ErrValidation if a name is missing.
func (s *AthleteService) Update(ctx context.Context, id uuid.UUID, in domain.AthleteUpdate) (domain.Athlete, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Athlete{}, fmt.Errorf("service.AthleteService.Update: %w", err)
	}
	if err := validateNames(in.FirstName, in.LastName); err != nil {
		return domain.Athlete{}, err
	}

	current.FirstName = in.FirstName
	current.LastName = in.LastName
	current.TaxCode = in.TaxCode
	current.BirthDate = datePtr(in.BirthDate)
	current.Address = in.Address
	current.Phone = in.Phone
	current.Email = in.Email
	current.CertificateExpiresOn = datePtr(in.CertificateExpiresOn)
	current.MembershipExpiresOn = datePtr(in.MembershipExpiresOn)
	current.Notes = in.Notes
	if in.EnrolledOn != nil {
		current.EnrolledOn = domain.Date(*in.EnrolledOn)
	}
	if in.Active != nil && *in.Active != current.Active {
		s.setActive(&current, *in.Active)
	}

	result, err := s.repo.Update(ctx, current)
	if err != nil {
		return domain.Athlete{}, fmt.Errorf("service.AthleteService.Update: %w", err)
	}
	return result, nil
}

// Disable marks an athlete inactive as of today.
// Returns domain.ErrNotFound if the athlete does not exist.
func (s *AthleteService) Disable(ctx context.Context, id uuid.UUID) (domain.Athlete, error) {
	result, err := s.changeStatus(ctx, id, false)
	if err != nil {
		return domain.Athlete{}, fmt.Errorf("service.AthleteService.Disable: %w", err)
	}
	return result, nil
}

// Enable marks an athlete active again and clears its deactivation date.
// Returns domain.ErrNotFound if the athlete does not exist.
func (s *AthleteService) Enable(ctx context.Context, id uuid.UUID) (domain.Athlete, error) {
	result, err := s.changeStatus(ctx, id, true)
	if err != nil {
		return domain.Athlete{}, fmt.Errorf("service.AthleteService.Enable: %w", err)
	}
	return result, nil
}

func (s *AthleteService) changeStatus(ctx context.Context, id uuid.UUID, active bool) (domain.Athlete, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Athlete{}, err
	}
	s.setActive(&a, active)
	return s.repo.Update(ctx, a)
}

// setActive applies the status change and reports it.
func (s *AthleteService) setActive(a *domain.Athlete, active bool) {
	if active {
		a.Enable()
	} else {
		a.Disable(s.today())
	}
	s.metrics.ObserveStatusChange(active)
	s.log.Info("athlete status changed", "athlete_id", a.ID, "active", active)
}

// Delete removes an athlete and, through the storage cascade, its payments.
// Returns domain.ErrNotFound if the athlete does not exist.
func (s *AthleteService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.AthleteService.Delete: %w", err)
	}
	return nil
}

// ListActive returns the athletes whose status is active.
func (s *AthleteService) ListActive(ctx context.Context) ([]domain.Athlete, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.AthleteService.ListActive: %w", err)
	}
	return filter(all, func(a domain.Athlete) bool { return a.Active }), nil
}

// ListExpiringCertificates returns active athletes whose medical certificate
// expires between today and today+days, both included.
// Returns domain.ErrValidation if days is negative.
func (s *AthleteService) ListExpiringCertificates(ctx context.Context, days int) ([]domain.Athlete, error) {
	result, err := s.listExpiring(ctx, days, domain.Athlete.CertificateExpiresWithin)
	if err != nil {
		return nil, fmt.Errorf("service.AthleteService.ListExpiringCertificates: %w", err)
	}
	return result, nil
}

// ListExpiringMemberships is ListExpiringCertificates for the membership card.
func (s *AthleteService) ListExpiringMemberships(ctx context.Context, days int) ([]domain.Athlete, error) {
	result, err := s.listExpiring(ctx, days, domain.Athlete.MembershipExpiresWithin)
	if err != nil {
		return nil, fmt.Errorf("service.AthleteService.ListExpiringMemberships: %w", err)
	}
	return result, nil
}

func (s *AthleteService) listExpiring(ctx context.Context, days int, expires func(domain.Athlete, domain.DateRange) bool) ([]domain.Athlete, error) {
	if days < 0 {
		return nil, fmt.Errorf("%w: days must not be negative", domain.ErrValidation)
	}
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	window := domain.WindowFrom(s.today(), days)
	return filter(all, func(a domain.Athlete) bool { return expires(a, window) }), nil
}

// validateNames enforces the rules common to Create and Update.
//   - First and last name must be non-empty (whitespace-only is rejected).
func validateNames(first, last string) error {
	if strings.TrimSpace(first) == "" {
		return fmt.Errorf("%w: first name is required", domain.ErrValidation)
	}
	if strings.TrimSpace(last) == "" {
		return fmt.Errorf("%w: last name is required", domain.ErrValidation)
	}
	return nil
}

func filter[T any](in []T, keep func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
