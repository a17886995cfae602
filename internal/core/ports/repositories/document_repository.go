package repositories

import (
	"context"
	"fmt"
	"regexp"
)

// Operator is a comparison used in a document query filter.
type Operator string

const (
	OpEqual         Operator = "=="
	OpNotEqual      Operator = "!="
	OpLess          Operator = "<"
	OpLessEqual     Operator = "<="
	OpGreater       Operator = ">"
	OpGreaterEqual  Operator = ">="
	OpIn            Operator = "in"
	OpArrayContains Operator = "array-contains"
)

// Filter is a single where-clause on a JSON field of the document.
type Filter struct {
	Field string
	Op    Operator
	Value any
}

// Query selects documents of one collection. EstablishmentID scopes the query to a tenant
// unless empty.
type Query struct {
	EstablishmentID string
	Filters         []Filter
	OrderBy         string
	Descending      bool
	Limit           int
	Offset          int
}

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Where appends a filter and returns the query for chaining.
func (q Query) Where(field string, op Operator, value any) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Field: field, Op: op, Value: value})
	return q
}

// Validate checks operators and field names before the query reaches a backend.
func (q Query) Validate() error {
	for _, f := range q.Filters {
		if !fieldNamePattern.MatchString(f.Field) {
			return fmt.Errorf("invalid filter field %q", f.Field)
		}
		switch f.Op {
		case OpEqual, OpNotEqual, OpLess, OpLessEqual, OpGreater, OpGreaterEqual, OpIn, OpArrayContains:
		default:
			return fmt.Errorf("invalid filter operator %q", f.Op)
		}
	}
	if q.OrderBy != "" && !fieldNamePattern.MatchString(q.OrderBy) {
		return fmt.Errorf("invalid order field %q", q.OrderBy)
	}
	if q.Limit < 0 || q.Offset < 0 {
		return fmt.Errorf("limit and offset must not be negative")
	}
	return nil
}

// DocumentReader defines read operations over one collection.
type DocumentReader[T any] interface {
	// FindByID retrieves a document by id. Returns apperrors.ErrNotFound when absent.
	FindByID(ctx context.Context, id string) (*T, error)

	// Find returns the documents matching the query, never nil.
	Find(ctx context.Context, q Query) ([]T, error)

	// Count returns the number of documents matching the query filters (limit/offset ignored).
	Count(ctx context.Context, q Query) (int, error)
}

// DocumentWriter defines write operations over one collection.
type DocumentWriter[T any] interface {
	// Insert persists a new document. Returns apperrors.ErrDuplicate if the id exists.
	Insert(ctx context.Context, doc *T) error

	// Update replaces a document when its stored version equals doc's version, then bumps the version.
	// Returns apperrors.ErrConflict on a stale version and apperrors.ErrNotFound if absent.
	Update(ctx context.Context, doc *T) error

	// Delete removes a document by id.
	Delete(ctx context.Context, id string) error
}

// DocumentRepository combines reads and writes for one collection.
type DocumentRepository[T any] interface {
	DocumentReader[T]
	DocumentWriter[T]
}
