package lease

import (
	"time"

	ierr "github.com/leaseledger/leaseledger/internal/errors"
	"github.com/leaseledger/leaseledger/internal/types"
	"github.com/shopspring/decimal"
)

// Lease ties a tenant to a unit for a period at an agreed rent
type Lease struct {
	ID         string          `json:"id"`
	TenantID   string          `json:"tenant_id"`
	PropertyID string          `json:"property_id"`
	UnitID     string          `json:"unit_id"`
	RentAmount decimal.Decimal `json:"rent_amount"`
	StartDate  time.Time       `json:"start_date"`
	EndDate    *time.Time      `json:"end_date,omitempty"`
	Active     bool            `json:"active"`
	Utilities  []UtilityConfig `json:"utilities,omitempty"`
	Metadata   types.Metadata  `json:"metadata,omitempty"`
	types.BaseModel
}

// UtilityConfig is one utility billed under the lease. Metered utilities
// require a reading each period before the invoice can finalize; unmetered
// ones bill a flat amount.
type UtilityConfig struct {
	Name        string          `json:"name"`
	Metered     bool            `json:"metered"`
	Rate        decimal.Decimal `json:"rate"`
	FlatAmount  decimal.Decimal `json:"flat_amount"`
	LastReading decimal.Decimal `json:"last_reading"`
}

// MeteredUtilities returns the utilities that need a reading each period
func (l *Lease) MeteredUtilities() []UtilityConfig {
	var metered []UtilityConfig
	for _, u := range l.Utilities {
		if u.Metered {
			metered = append(metered, u)
		}
	}
	return metered
}

// ExpiresWithin reports whether the lease ends within d of asOf
func (l *Lease) ExpiresWithin(asOf time.Time, d time.Duration) bool {
	if l.EndDate == nil {
		return false
	}
	return l.EndDate.After(asOf) && l.EndDate.Sub(asOf) <= d
}

func (l *Lease) Validate() error {
	if l.TenantID == "" || l.PropertyID == "" {
		return ierr.NewError("lease must reference a tenant and a property").
			WithHint("Tenant and property are required").
			Mark(ierr.ErrValidation)
	}
	if l.RentAmount.IsNegative() {
		return ierr.NewError("rent amount must be non negative").
			WithHint("Rent amount must be non negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}
