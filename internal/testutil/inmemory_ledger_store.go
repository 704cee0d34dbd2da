package testutil

import (
	"context"
	"sync"

	"github.com/leaseledger/leaseledger/internal/domain/ledger"
	ierr "github.com/leaseledger/leaseledger/internal/errors"
	"github.com/leaseledger/leaseledger/internal/types"
)

// InMemoryLedgerStore implements ledger.Repository
type InMemoryLedgerStore struct {
	mu      sync.RWMutex
	entries []*ledger.Entry
}

// NewInMemoryLedgerStore creates a new in-memory ledger repository
func NewInMemoryLedgerStore() *InMemoryLedgerStore {
	return &InMemoryLedgerStore{}
}

// Clear resets all stored data
func (s *InMemoryLedgerStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

func (s *InMemoryLedgerStore) Create(ctx context.Context, entry *ledger.Entry) error {
	if entry == nil {
		return ierr.NewError("ledger entry cannot be nil").
			WithHint("Ledger entry cannot be nil").
			Mark(ierr.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *InMemoryLedgerStore) CreateBulk(ctx context.Context, entries []*ledger.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entries...)
	return nil
}

func (s *InMemoryLedgerStore) List(ctx context.Context, filter *types.LedgerFilter) ([]*ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*ledger.Entry
	for _, e := range s.entries {
		if filter != nil {
			if filter.TenantID != nil && e.TenantID != *filter.TenantID {
				continue
			}
			if filter.InvoiceID != nil && e.InvoiceID != *filter.InvoiceID {
				continue
			}
			if filter.PaymentID != nil && e.PaymentID != *filter.PaymentID {
				continue
			}
			if filter.Account != nil && e.Account != *filter.Account {
				continue
			}
		}
		result = append(result, e)
	}
	return result, nil
}

func (s *InMemoryLedgerStore) DeleteByInvoiceID(ctx context.Context, invoiceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.InvoiceID != invoiceID {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	return nil
}

// Entries returns a copy of every stored entry, for assertions
func (s *InMemoryLedgerStore) Entries() []*ledger.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*ledger.Entry, len(s.entries))
	copy(out, s.entries)
	return out
}
