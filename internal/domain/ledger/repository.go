package ledger

import (
	"context"

	"github.com/leaseledger/leaseledger/internal/types"
)

// Repository defines the interface for ledger entry persistence. Entries are
// append-only; the only deletion path is the reversal of a force-regenerated
// invoice, which removes its entries by string invoice id.
type Repository interface {
	// Create appends a single entry
	Create(ctx context.Context, entry *Entry) error

	// CreateBulk appends a batch of entries atomically
	CreateBulk(ctx context.Context, entries []*Entry) error

	// List retrieves entries based on filter criteria
	List(ctx context.Context, filter *types.LedgerFilter) ([]*Entry, error)

	// DeleteByInvoiceID removes every entry referencing the invoice id.
	// Ids are prefixed string ULIDs everywhere; there is exactly one ledger
	// collection.
	DeleteByInvoiceID(ctx context.Context, invoiceID string) error
}
