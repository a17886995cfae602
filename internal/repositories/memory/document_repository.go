package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/SscSPs/salon_management_app/internal/apperrors"
	"github.com/SscSPs/salon_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
)

// DocumentRepository stores one collection of T in a Store.
type DocumentRepository[T any, P domain.EntityPtr[T]] struct {
	store      *Store
	collection string
}

// NewDocumentRepository creates a repository for the named collection.
func NewDocumentRepository[T any, P domain.EntityPtr[T]](store *Store, collection string) *DocumentRepository[T, P] {
	return &DocumentRepository[T, P]{store: store, collection: collection}
}

var _ portsrepo.DocumentRepository[domain.Client] = (*DocumentRepository[domain.Client, *domain.Client])(nil)

func (r *DocumentRepository[T, P]) Insert(ctx context.Context, doc *T) error {
	p := P(doc)
	raw, err := json.Marshal(doc)
	if err != nil {
		return apperrors.NewAppError(500, "failed to encode "+r.collection+" document", err)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, exists := r.store.get(r.collection, p.DocumentID()); exists {
		return fmt.Errorf("%w: %s %s", apperrors.ErrDuplicate, r.collection, p.DocumentID())
	}
	r.store.put(r.collection, p.DocumentID(), raw)
	return nil
}

func (r *DocumentRepository[T, P]) FindByID(ctx context.Context, id string) (*T, error) {
	r.store.mu.RLock()
	raw, ok := r.store.get(r.collection, id)
	r.store.mu.RUnlock()
	if !ok {
		return nil, apperrors.NewNotFoundError(r.collection + " " + id + " not found")
	}
	doc, err := decode[T](raw)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to decode "+r.collection+" document", err)
	}
	return doc, nil
}

func (r *DocumentRepository[T, P]) Update(ctx context.Context, doc *T) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return updateLocked[T, P](r.store, r.collection, doc)
}

// updateLocked performs the optimistic update; caller must hold the store lock.
func updateLocked[T any, P domain.EntityPtr[T]](s *Store, collection string, doc *T) error {
	p := P(doc)
	raw, ok := s.get(collection, p.DocumentID())
	if !ok {
		return apperrors.NewNotFoundError(collection + " " + p.DocumentID() + " not found")
	}
	current, err := decode[T](raw)
	if err != nil {
		return apperrors.NewAppError(500, "failed to decode "+collection+" document", err)
	}
	if P(current).Audit().Version != p.Audit().Version {
		return apperrors.NewConflictError("optimistic locking failed: " + collection + " " + p.DocumentID())
	}
	p.Audit().Version++
	encoded, err := json.Marshal(doc)
	if err != nil {
		p.Audit().Version--
		return apperrors.NewAppError(500, "failed to encode "+collection+" document", err)
	}
	s.put(collection, p.DocumentID(), encoded)
	return nil
}

func (r *DocumentRepository[T, P]) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if !r.store.remove(r.collection, id) {
		return apperrors.NewNotFoundError(r.collection + " " + id + " not found")
	}
	return nil
}

func (r *DocumentRepository[T, P]) Find(ctx context.Context, q portsrepo.Query) ([]T, error) {
	matches, err := r.match(q)
	if err != nil {
		return nil, err
	}
	if q.OrderBy != "" {
		sort.SliceStable(matches, func(i, j int) bool {
			c := compareValues(matches[i].fields[q.OrderBy], matches[j].fields[q.OrderBy])
			if c == 0 {
				return matches[i].id < matches[j].id
			}
			if q.Descending {
				return c > 0
			}
			return c < 0
		})
	}
	if q.Offset > 0 {
		if q.Offset >= len(matches) {
			matches = nil
		} else {
			matches = matches[q.Offset:]
		}
	}
	if q.Limit > 0 && len(matches) > q.Limit {
		matches = matches[:q.Limit]
	}

	out := make([]T, 0, len(matches))
	for _, m := range matches {
		doc, err := decode[T](m.raw)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to decode "+r.collection+" document", err)
		}
		out = append(out, *doc)
	}
	return out, nil
}

func (r *DocumentRepository[T, P]) Count(ctx context.Context, q portsrepo.Query) (int, error) {
	matches, err := r.match(q)
	if err != nil {
		return 0, err
	}
	return len(matches), nil
}

type matched struct {
	id     string
	raw    []byte
	fields map[string]any
}

// match returns the matching documents ordered by id.
func (r *DocumentRepository[T, P]) match(q portsrepo.Query) ([]matched, error) {
	if err := q.Validate(); err != nil {
		return nil, apperrors.NewAppError(500, "invalid "+r.collection+" query", err)
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	ids := make([]string, 0, len(r.store.data[r.collection]))
	for id := range r.store.data[r.collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []matched
	for _, id := range ids {
		raw := r.store.data[r.collection][id]
		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, apperrors.NewAppError(500, "failed to decode "+r.collection+" document", err)
		}
		if q.EstablishmentID != "" && fields["establishmentID"] != q.EstablishmentID {
			continue
		}
		ok := true
		for _, f := range q.Filters {
			if !matchFilter(fields, f) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, matched{id: id, raw: raw, fields: fields})
		}
	}
	return out, nil
}
