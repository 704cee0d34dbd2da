package documentstore

import (
	"fmt"
	"strings"

	"github.com/leaseledger/leaseledger/internal/types"
)

// queryBuilder accumulates JSONB conditions into the tail of a
// "SELECT doc FROM <collection>" statement.
type queryBuilder struct {
	conds []string
	args  []any
}

func newQueryBuilder() *queryBuilder {
	return &queryBuilder{}
}

// Where appends a condition; the placeholder index is substituted for %d.
func (b *queryBuilder) Where(cond string, arg any) *queryBuilder {
	b.args = append(b.args, arg)
	b.conds = append(b.conds, fmt.Sprintf(cond, len(b.args)))
	return b
}

// WhereField appends an equality condition on a top-level document field
func (b *queryBuilder) WhereField(field string, value any) *queryBuilder {
	return b.Where(fmt.Sprintf("doc->>'%s' = $%%d", field), value)
}

// WhereRecordStatus filters on the record lifecycle status
func (b *queryBuilder) WhereRecordStatus(status types.Status) *queryBuilder {
	return b.WhereField("status", string(status))
}

// whereClause returns "WHERE ..." or "" when no conditions were added
func (b *queryBuilder) whereClause() string {
	if len(b.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(b.conds, " AND ")
}

// Tail assembles the full query tail with ordering and pagination from the
// filter. Documents are ordered by their creation time. The accessors on
// QueryFilter are nil-safe, so a nil filter yields the defaults.
func (b *queryBuilder) Tail(f *types.QueryFilter) string {
	var sb strings.Builder
	sb.WriteString(b.whereClause())

	sb.WriteString(fmt.Sprintf(" ORDER BY doc->>'created_at' %s", strings.ToUpper(f.GetOrder())))

	if !f.IsUnlimited() {
		sb.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", f.GetLimit(), f.GetOffset()))
	}
	return sb.String()
}

// Args returns the accumulated arguments
func (b *queryBuilder) Args() []any {
	return b.args
}
