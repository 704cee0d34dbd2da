package document

import (
	"context"
	"database/sql"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	ierr "github.com/leaseledger/leaseledger/internal/errors"
)

// Collection names backing the document store
const (
	CollectionLeases        = "leases"
	CollectionProperties    = "properties"
	CollectionUnits         = "units"
	CollectionTenants       = "tenants"
	CollectionInvoices      = "invoices"
	CollectionTickets       = "tickets"
	CollectionTasks         = "tasks"
	CollectionPayments      = "payments"
	CollectionNotifications = "notifications"
	CollectionLedgerEntries = "ledger_entries"
)

// Collections is every collection the store migrates
var Collections = []string{
	CollectionLeases,
	CollectionProperties,
	CollectionUnits,
	CollectionTenants,
	CollectionInvoices,
	CollectionTickets,
	CollectionTasks,
	CollectionPayments,
	CollectionNotifications,
	CollectionLedgerEntries,
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Unmarshal decodes a raw document returned by Find
func Unmarshal(doc []byte, out any) error {
	return json.Unmarshal(doc, out)
}

// Collection provides document operations on one named collection.
// Repositories own the (un)marshalling of their entity types; the collection
// moves raw documents.
type Collection struct {
	client IClient
	name   string
}

// NewCollection binds a collection name to a client
func NewCollection(client IClient, name string) *Collection {
	return &Collection{client: client, name: name}
}

// Insert adds a new document; duplicate ids are a conflict
func (c *Collection) Insert(ctx context.Context, id string, v any) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to encode document").
			Mark(ierr.ErrSystem)
	}

	stmt := fmt.Sprintf(`INSERT INTO %s (id, doc) VALUES ($1, $2)`, c.name)
	if _, err := c.client.Querier(ctx).ExecContext(ctx, stmt, id, doc); err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHintf("Document %s already exists", id).
				Mark(ierr.ErrAlreadyExists)
		}
		return wrapDBError(err, c.name)
	}
	return nil
}

// FindByID retrieves one document by id into out
func (c *Collection) FindByID(ctx context.Context, id string, out any) error {
	stmt := fmt.Sprintf(`SELECT doc FROM %s WHERE id = $1`, c.name)

	var doc []byte
	if err := sqlxGet(ctx, c.client.Querier(ctx), &doc, stmt, id); err != nil {
		if err == sql.ErrNoRows {
			return ierr.NewError("document not found").
				WithHintf("No document with id %s", id).
				Mark(ierr.ErrNotFound)
		}
		return wrapDBError(err, c.name)
	}

	if err := json.Unmarshal(doc, out); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to decode document").
			Mark(ierr.ErrSystem)
	}
	return nil
}

// Replace overwrites an existing document
func (c *Collection) Replace(ctx context.Context, id string, v any) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to encode document").
			Mark(ierr.ErrSystem)
	}

	stmt := fmt.Sprintf(`UPDATE %s SET doc = $2 WHERE id = $1`, c.name)
	res, err := c.client.Querier(ctx).ExecContext(ctx, stmt, id, doc)
	if err != nil {
		return wrapDBError(err, c.name)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ierr.NewError("document not found").
			WithHintf("No document with id %s", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

// Delete removes a document by id
func (c *Collection) Delete(ctx context.Context, id string) error {
	stmt := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, c.name)
	if _, err := c.client.Querier(ctx).ExecContext(ctx, stmt, id); err != nil {
		return wrapDBError(err, c.name)
	}
	return nil
}

// Find returns the raw documents matching the query tail (everything after
// "SELECT doc FROM <collection> "), e.g.
// "WHERE doc->>'tenant_id' = $1 ORDER BY doc->>'created_at' DESC LIMIT 50".
func (c *Collection) Find(ctx context.Context, tail string, args ...any) ([][]byte, error) {
	stmt := fmt.Sprintf(`SELECT doc FROM %s %s`, c.name, tail)

	rows, err := c.client.Querier(ctx).QueryxContext(ctx, stmt, args...)
	if err != nil {
		return nil, wrapDBError(err, c.name)
	}
	defer rows.Close()

	var docs [][]byte
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, wrapDBError(err, c.name)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(err, c.name)
	}
	return docs, nil
}

// Count returns the number of documents matching the query tail
func (c *Collection) Count(ctx context.Context, tail string, args ...any) (int, error) {
	stmt := fmt.Sprintf(`SELECT COUNT(*) FROM %s %s`, c.name, tail)

	var count int
	if err := sqlxGet(ctx, c.client.Querier(ctx), &count, stmt, args...); err != nil {
		return 0, wrapDBError(err, c.name)
	}
	return count, nil
}

// DeleteWhere removes every document matching the where clause
func (c *Collection) DeleteWhere(ctx context.Context, where string, args ...any) error {
	stmt := fmt.Sprintf(`DELETE FROM %s %s`, c.name, where)
	if _, err := c.client.Querier(ctx).ExecContext(ctx, stmt, args...); err != nil {
		return wrapDBError(err, c.name)
	}
	return nil
}
