package pgsql

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// queryBuilder renders a document Query into a WHERE clause over the documents table.
// Field names are validated by Query.Validate before they are embedded as JSON keys.
type queryBuilder struct {
	conds []string
	args  []any
}

func (b *queryBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func newQueryBuilder(collection string, q portsrepo.Query) (*queryBuilder, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	b := &queryBuilder{}
	b.conds = append(b.conds, "collection = "+b.arg(collection))
	if q.EstablishmentID != "" {
		b.conds = append(b.conds, "establishment_id = "+b.arg(q.EstablishmentID))
	}
	for _, f := range q.Filters {
		cond, err := b.filter(f)
		if err != nil {
			return nil, err
		}
		b.conds = append(b.conds, cond)
	}
	return b, nil
}

func (b *queryBuilder) where() string {
	return strings.Join(b.conds, " AND ")
}

func (b *queryBuilder) filter(f portsrepo.Filter) (string, error) {
	text := fmt.Sprintf("(data->>'%s')", f.Field)

	switch f.Op {
	case portsrepo.OpIn:
		rv := reflect.ValueOf(f.Value)
		if rv.Kind() != reflect.Slice {
			return "", fmt.Errorf("filter %s: in expects a slice, got %T", f.Field, f.Value)
		}
		values := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			values = append(values, textValue(rv.Index(i).Interface()))
		}
		return fmt.Sprintf("%s = ANY(%s::text[])", text, b.arg(values)), nil
	case portsrepo.OpArrayContains:
		raw, err := json.Marshal([]any{f.Value})
		if err != nil {
			return "", fmt.Errorf("filter %s: %w", f.Field, err)
		}
		return fmt.Sprintf("(data->'%s') @> %s::jsonb", f.Field, b.arg(string(raw))), nil
	}

	op := string(f.Op)
	if f.Op == portsrepo.OpEqual {
		op = "="
	} else if f.Op == portsrepo.OpNotEqual {
		op = "<>"
	}

	switch v := f.Value.(type) {
	case time.Time:
		return fmt.Sprintf("%s::timestamptz %s %s::timestamptz", text, op, b.arg(v.UTC())), nil
	case decimal.Decimal:
		return fmt.Sprintf("%s::numeric %s %s::numeric", text, op, b.arg(v.String())), nil
	}

	rv := reflect.ValueOf(f.Value)
	switch rv.Kind() {
	case reflect.String:
		return fmt.Sprintf(`%s COLLATE "C" %s %s::text`, text, op, b.arg(rv.String())), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprintf("(CASE WHEN jsonb_typeof(data->'%s') = 'number' THEN %s::numeric END) %s %s::numeric",
			f.Field, text, op, b.arg(textValue(f.Value))), nil
	case reflect.Bool:
		return fmt.Sprintf("(CASE WHEN jsonb_typeof(data->'%s') = 'boolean' THEN %s::boolean END) %s %s::boolean",
			f.Field, text, op, b.arg(rv.Bool())), nil
	}
	return "", fmt.Errorf("filter %s: unsupported value type %T", f.Field, f.Value)
}

// orderBy sorts by JSON type (null, boolean, number, string), then value, then id.
func orderBy(q portsrepo.Query) string {
	if q.OrderBy == "" {
		return "ORDER BY id"
	}
	dir := "ASC"
	if q.Descending {
		dir = "DESC"
	}
	f := q.OrderBy
	return fmt.Sprintf(`ORDER BY CASE jsonb_typeof(data->'%[1]s') WHEN 'boolean' THEN 1 WHEN 'number' THEN 2 WHEN 'string' THEN 3 ELSE 0 END %[2]s, `+
		`(CASE WHEN jsonb_typeof(data->'%[1]s') = 'number' THEN (data->>'%[1]s')::numeric END) %[2]s, `+
		`(data->>'%[1]s') COLLATE "C" %[2]s, id ASC`, f, dir)
}

func limitOffset(q portsrepo.Query) string {
	var sb strings.Builder
	if q.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", q.Limit)
	}
	if q.Offset > 0 {
		fmt.Fprintf(&sb, " OFFSET %d", q.Offset)
	}
	return sb.String()
}

// textValue renders a scalar the way ->> renders the JSON encoding of it.
func textValue(v any) string {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case decimal.Decimal:
		return t.String()
	case fmt.Stringer:
		return t.String()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String()
	}
	return fmt.Sprint(v)
}
