package document

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/leaseledger/leaseledger/internal/config"
	"github.com/leaseledger/leaseledger/internal/logger"
	"github.com/leaseledger/leaseledger/internal/types"
	_ "github.com/lib/pq"
)

// IClient defines the interface for document store client operations
type IClient interface {
	// WithTx wraps the given function in a transaction. Nested calls reuse
	// the transaction already on the context.
	WithTx(ctx context.Context, fn func(context.Context) error) error

	// TxFromContext returns the transaction from context if it exists
	TxFromContext(ctx context.Context) *sqlx.Tx

	// Querier returns the current transaction if in a transaction, or the
	// regular connection pool
	Querier(ctx context.Context) sqlx.ExtContext
}

// Client wraps sqlx.DB to provide collection access with transaction
// management. Documents live one-per-row as JSONB in a table per collection.
type Client struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// NewDB opens the underlying postgres connection for the document store
func NewDB(cfg *config.Configuration) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.Document.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to document store: %w", err)
	}

	db.SetMaxOpenConns(cfg.Document.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Document.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Document.ConnMaxLifetimeMinutes) * time.Minute)

	return db, nil
}

// NewClient creates a new document store client with transaction management
func NewClient(db *sqlx.DB, logger *logger.Logger) *Client {
	return &Client{
		db:     db,
		logger: logger,
	}
}

// Migrate ensures every collection's backing table exists
func (c *Client) Migrate(ctx context.Context) error {
	for _, collection := range Collections {
		stmt := fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %s (id TEXT PRIMARY KEY, doc JSONB NOT NULL)`,
			collection,
		)
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating collection %s: %w", collection, err)
		}
	}
	return nil
}

// WithTx wraps the given function in a transaction
func (c *Client) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	// If we're already in a transaction, reuse it and do not start a new one
	if tx := c.TxFromContext(ctx); tx != nil {
		return fn(ctx)
	}

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}

	defer func() {
		if v := recover(); v != nil {
			c.logger.Errorw("rolling back transaction due to panic",
				"panic", v,
			)
			_ = tx.Rollback()
			panic(v)
		}
	}()

	txCtx := context.WithValue(ctx, types.CtxDBTransaction, tx)

	if err := fn(txCtx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			err = fmt.Errorf("rolling back transaction: %v (original error: %w)", rerr, err)
		}
		c.logger.Errorw("rolling back transaction due to error",
			"error", err,
		)
		return err
	}

	if err := tx.Commit(); err != nil {
		c.logger.Errorw("committing transaction",
			"error", err,
		)
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// TxFromContext returns the transaction from context if it exists
func (c *Client) TxFromContext(ctx context.Context) *sqlx.Tx {
	if tx, ok := ctx.Value(types.CtxDBTransaction).(*sqlx.Tx); ok {
		return tx
	}
	return nil
}

// Querier returns the current transaction if in a transaction, or the pool
func (c *Client) Querier(ctx context.Context) sqlx.ExtContext {
	if tx := c.TxFromContext(ctx); tx != nil {
		return tx
	}
	return c.db
}
