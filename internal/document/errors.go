package document

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	ierr "github.com/leaseledger/leaseledger/internal/errors"
	"github.com/lib/pq"
)

// isUniqueViolation reports whether err is a postgres unique constraint error
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if ierr.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

func wrapDBError(err error, collection string) error {
	return ierr.WithError(err).
		WithHintf("Document store operation failed on %s", collection).
		Mark(ierr.ErrDatabase)
}

// sqlxGet scans a single row into dest via whichever querier is active.
// sqlx.ExtContext does not expose GetContext, so dispatch on the concrete
// types the client hands out.
func sqlxGet(ctx context.Context, q sqlx.ExtContext, dest any, stmt string, args ...any) error {
	switch qq := q.(type) {
	case *sqlx.DB:
		return qq.GetContext(ctx, dest, stmt, args...)
	case *sqlx.Tx:
		return qq.GetContext(ctx, dest, stmt, args...)
	default:
		row := q.QueryRowxContext(ctx, stmt, args...)
		if row == nil {
			return sql.ErrNoRows
		}
		return row.Scan(dest)
	}
}
