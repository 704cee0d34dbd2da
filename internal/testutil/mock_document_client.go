package testutil

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/leaseledger/leaseledger/internal/document"
	"github.com/leaseledger/leaseledger/internal/logger"
	"github.com/leaseledger/leaseledger/internal/types"
)

var _ document.IClient = (*MockDocumentClient)(nil)

// MockDocumentClient is a document client for tests backed by no database.
// Repositories under test are in-memory stores, so WithTx just runs the
// function; the transaction-reuse semantics still hold.
type MockDocumentClient struct {
	logger *logger.Logger
}

// NewMockDocumentClient creates a new mock document store client
func NewMockDocumentClient(logger *logger.Logger) document.IClient {
	return &MockDocumentClient{
		logger: logger,
	}
}

// WithTx executes the given function within a transaction
func (c *MockDocumentClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	if tx := c.TxFromContext(ctx); tx != nil {
		return fn(ctx)
	}
	return fn(ctx)
}

// TxFromContext returns the transaction from context if it exists
func (c *MockDocumentClient) TxFromContext(ctx context.Context) *sqlx.Tx {
	if tx, ok := ctx.Value(types.CtxDBTransaction).(*sqlx.Tx); ok {
		return tx
	}
	return nil
}

// Querier returns nil; in-memory repositories never touch the database
func (c *MockDocumentClient) Querier(ctx context.Context) sqlx.ExtContext {
	return nil
}
