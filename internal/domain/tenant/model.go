package tenant

import (
	ierr "github.com/leaseledger/leaseledger/internal/errors"
	"github.com/leaseledger/leaseledger/internal/types"
)

// Tenant is the renter billed under one or more leases
type Tenant struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Email    string         `json:"email,omitempty"`
	Phone    string         `json:"phone,omitempty"`
	Metadata types.Metadata `json:"metadata,omitempty"`
	types.BaseModel
}

func (t *Tenant) Validate() error {
	if t.Name == "" {
		return ierr.NewError("tenant name is required").
			WithHint("Tenant must have a name").
			Mark(ierr.ErrValidation)
	}
	return nil
}
