package types

import (
	"fmt"
	"time"

	ierr "github.com/leaseledger/leaseledger/internal/errors"
)

// BillingPeriod identifies the calendar month one invoice covers, in the
// canonical "YYYY-MM" form, e.g. "2025-11".
type BillingPeriod string

func (p BillingPeriod) String() string {
	return string(p)
}

// Parse returns the year and month of the period.
func (p BillingPeriod) Parse() (int, time.Month, error) {
	t, err := time.Parse("2006-01", string(p))
	if err != nil {
		return 0, 0, ierr.WithError(err).
			WithHintf("Billing period must be in YYYY-MM format, got %q", p).
			Mark(ierr.ErrValidation)
	}
	return t.Year(), t.Month(), nil
}

func (p BillingPeriod) Validate() error {
	_, _, err := p.Parse()
	return err
}

// Before reports whether p is an earlier month than other. Both periods must
// be valid; invalid periods compare lexically which matches the YYYY-MM
// ordering anyway.
func (p BillingPeriod) Before(other BillingPeriod) bool {
	return string(p) < string(other)
}

// Start returns midnight UTC on the first day of the period.
func (p BillingPeriod) Start() (time.Time, error) {
	year, month, err := p.Parse()
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), nil
}

// DueDate returns the due date for the period given a property's configured
// due day, clamped to the last valid day of the month (due_day 31 in
// February yields Feb 28/29).
func (p BillingPeriod) DueDate(dueDay int) (time.Time, error) {
	year, month, err := p.Parse()
	if err != nil {
		return time.Time{}, err
	}
	if dueDay < 1 {
		dueDay = 1
	}
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if dueDay > lastDay {
		dueDay = lastDay
	}
	return time.Date(year, month, dueDay, 0, 0, 0, 0, time.UTC), nil
}

// BillingPeriodFromTime returns the period containing t (in UTC).
func BillingPeriodFromTime(t time.Time) BillingPeriod {
	return BillingPeriod(t.UTC().Format("2006-01"))
}

// NewBillingPeriod builds a period from a year and month.
func NewBillingPeriod(year int, month time.Month) BillingPeriod {
	return BillingPeriod(fmt.Sprintf("%04d-%02d", year, int(month)))
}
