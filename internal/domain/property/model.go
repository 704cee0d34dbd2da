package property

import (
	ierr "github.com/leaseledger/leaseledger/internal/errors"
	"github.com/leaseledger/leaseledger/internal/types"
)

// Property is a building or estate owned by a landlord
type Property struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	LandlordID string         `json:"landlord_id"`
	Address    string         `json:"address,omitempty"`
	// DueDay is the day of the month invoices fall due, clamped to the last
	// valid day of shorter months.
	DueDay   int            `json:"due_day"`
	Metadata types.Metadata `json:"metadata,omitempty"`
	types.BaseModel
}

// Unit is one rentable unit within a property
type Unit struct {
	ID         string `json:"id"`
	PropertyID string `json:"property_id"`
	Label      string `json:"label"`
	types.BaseModel
}

func (p *Property) Validate() error {
	if p.Name == "" {
		return ierr.NewError("property name is required").
			WithHint("Property must have a name").
			Mark(ierr.ErrValidation)
	}
	if p.DueDay < 1 || p.DueDay > 31 {
		return ierr.NewError("due day must be between 1 and 31").
			WithHint("Due day must be between 1 and 31").
			WithReportableDetails(map[string]any{
				"due_day": p.DueDay,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
