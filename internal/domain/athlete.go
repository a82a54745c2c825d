// Package domain contains the core data types for the club ledger.
// It has no dependencies on the repo, service, or handler packages and is
// imported by all of them.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Athlete is a club member tracked for membership and payment purposes.
//
// Payments are not embedded: the ledger refers to an athlete only by ID and
// navigation in either direction goes through the repositories.
//
// Active and DeactivatedOn move together: an active athlete has no
// deactivation date, an inactive one carries the day it was disabled.
type Athlete struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	TaxCode   string
	BirthDate *time.Time
	Address   string
	Phone     string
	Email     string

	EnrolledOn           time.Time
	CertificateExpiresOn *time.Time // medical certificate
	MembershipExpiresOn  *time.Time // club membership card

	Notes         string
	Active        bool
	DeactivatedOn *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName returns "First Last".
func (a Athlete) FullName() string {
	switch {
	case a.FirstName == "":
		return a.LastName
	case a.LastName == "":
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}

// Disable marks the athlete inactive as of day.
func (a *Athlete) Disable(day time.Time) {
	d := Date(day)
	a.Active = false
	a.DeactivatedOn = &d
}

// Enable marks the athlete active again and clears the deactivation date.
func (a *Athlete) Enable() {
	a.Active = true
	a.DeactivatedOn = nil
}

// CertificateExpiresWithin reports whether the athlete is active and the
// medical certificate expires inside r. A missing date never matches.
func (a Athlete) CertificateExpiresWithin(r DateRange) bool {
	return a.Active && a.CertificateExpiresOn != nil && r.Contains(*a.CertificateExpiresOn)
}

// MembershipExpiresWithin is the membership-card counterpart of
// CertificateExpiresWithin.
func (a Athlete) MembershipExpiresWithin(r DateRange) bool {
	return a.Active && a.MembershipExpiresOn != nil && r.Contains(*a.MembershipExpiresOn)
}

// AthleteUpdate carries the full set of mutable athlete fields for an update.
// Every field overwrites the stored value except Active, which is left
// untouched when nil.
type AthleteUpdate struct {
	FirstName            string
	LastName             string
	TaxCode              string
	BirthDate            *time.Time
	Address              string
	Phone                string
	Email                string
	EnrolledOn           *time.Time
	CertificateExpiresOn *time.Time
	MembershipExpiresOn  *time.Time
	Notes                string
	Active               *bool
}
