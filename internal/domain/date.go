package domain

import (
	"fmt"
	"time"
)

// Date truncates t to a civil date at midnight UTC.
// All dates in the ledger (enrollment, expiry, payment) are stored this way
// so that comparisons never depend on the time of day or the server zone.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateRange is an inclusive range of civil dates: both From and To match.
type DateRange struct {
	From time.Time
	To   time.Time
}

// NewDateRange normalizes both bounds to civil dates.
// Returns ErrValidation when from is after to.
func NewDateRange(from, to time.Time) (DateRange, error) {
	r := DateRange{From: Date(from), To: Date(to)}
	if r.From.After(r.To) {
		return DateRange{}, fmt.Errorf("%w: from date must not be after to date", ErrValidation)
	}
	return r, nil
}

// Contains reports whether t falls on a day inside the range.
func (r DateRange) Contains(t time.Time) bool {
	d := Date(t)
	return !d.Before(r.From) && !d.After(r.To)
}

// MonthRange returns the range covering every day of the given month,
// using the month's real length (29 days for February in leap years).
func MonthRange(year int, month time.Month) DateRange {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return DateRange{From: first, To: first.AddDate(0, 1, -1)}
}

// YearRange returns the range from 1 January to 31 December of year.
func YearRange(year int) DateRange {
	return DateRange{
		From: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
}

// WindowFrom returns the range [today, today+days].
func WindowFrom(today time.Time, days int) DateRange {
	d := Date(today)
	return DateRange{From: d, To: d.AddDate(0, 0, days)}
}
