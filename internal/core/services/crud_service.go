package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/SscSPs/salon_management_app/internal/apperrors"
	"github.com/SscSPs/salon_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/salon_management_app/internal/core/ports/services"
	"github.com/SscSPs/salon_management_app/internal/dto"
	"github.com/SscSPs/salon_management_app/internal/utils/pagination"
	"github.com/google/uuid"
)

// CrudPolicy is the minimum role required per kind of operation on a collection.
type CrudPolicy struct {
	Read   domain.Role
	Write  domain.Role
	Delete domain.Role
}

// CrudService is the generic create/read/update/delete path of one collection. Every write
// runs the collection's business rules before it reaches the repository.
//
// The exported lower-level methods (Page, Load, Insert, Modify, Remove, PrepareCreate,
// PrepareUpdate) skip authorization; domain services call them after checking access
// themselves.
type CrudService[T any, P domain.EntityPtr[T]] struct {
	BaseService
	repo       portsrepo.DocumentRepository[T]
	rules      portssvc.BusinessRules[T]
	collection string
	policy     CrudPolicy
}

// NewCrudService creates a CrudService for collection.
func NewCrudService[T any, P domain.EntityPtr[T]](
	repo portsrepo.DocumentRepository[T],
	rules portssvc.BusinessRules[T],
	collection string,
	policy CrudPolicy,
	options ...BaseOption,
) *CrudService[T, P] {
	return &CrudService[T, P]{
		BaseService: newBaseService(options...),
		repo:        repo,
		rules:       rules,
		collection:  collection,
		policy:      policy,
	}
}

// Repo exposes the underlying repository for derived queries.
func (c *CrudService[T, P]) Repo() portsrepo.DocumentRepository[T] {
	return c.repo
}

// List returns one page of the establishment's documents matching q.
func (c *CrudService[T, P]) List(ctx context.Context, establishmentID, userID string, params dto.ListParams, q portsrepo.Query) ([]T, string, error) {
	if err := c.AuthorizeUser(ctx, userID, establishmentID, c.policy.Read); err != nil {
		return nil, "", err
	}
	return c.Page(ctx, establishmentID, params, q)
}

// Page fetches one page without authorization. Documents are ordered by creation time
// unless q says otherwise.
func (c *CrudService[T, P]) Page(ctx context.Context, establishmentID string, params dto.ListParams, q portsrepo.Query) ([]T, string, error) {
	offset, err := pagination.DecodeOffsetToken(c.collection, params.NextToken)
	if err != nil {
		return nil, "", apperrors.NewValidationFailedError("invalid nextToken")
	}
	limit := pagination.ClampLimit(params.Limit)

	q.EstablishmentID = establishmentID
	if q.OrderBy == "" {
		q.OrderBy = "createdAt"
	}
	q.Offset = offset
	q.Limit = limit + 1

	docs, err := c.repo.Find(ctx, q)
	if err != nil {
		c.LogError(ctx, err, "Failed to list documents", slog.String("collection", c.collection), slog.String("establishment_id", establishmentID))
		return nil, "", err
	}

	nextToken := ""
	if len(docs) > limit {
		docs = docs[:limit]
		nextToken = pagination.EncodeOffsetToken(c.collection, offset+limit)
	}
	return docs, nextToken, nil
}

// Get retrieves one document of the establishment.
func (c *CrudService[T, P]) Get(ctx context.Context, establishmentID, id, userID string) (*T, error) {
	if err := c.AuthorizeUser(ctx, userID, establishmentID, c.policy.Read); err != nil {
		return nil, err
	}
	return c.Load(ctx, establishmentID, id)
}

// Load fetches a document and hides documents of other establishments as not found.
func (c *CrudService[T, P]) Load(ctx context.Context, establishmentID, id string) (*T, error) {
	doc, err := c.repo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			c.LogError(ctx, err, "Failed to load document", slog.String("collection", c.collection), slog.String("id", id))
		}
		return nil, err
	}
	if P(doc).TenantID() != establishmentID {
		return nil, apperrors.NewNotFoundError(c.collection + " " + id + " not found")
	}
	return doc, nil
}

// Create authorizes the user, runs the create rules and inserts doc.
func (c *CrudService[T, P]) Create(ctx context.Context, establishmentID, userID string, doc *T) (*T, error) {
	if err := c.AuthorizeUser(ctx, userID, establishmentID, c.policy.Write); err != nil {
		return nil, err
	}
	return c.Insert(ctx, establishmentID, userID, doc)
}

// Insert runs the create rules and inserts doc without authorization.
func (c *CrudService[T, P]) Insert(ctx context.Context, establishmentID, userID string, doc *T) (*T, error) {
	if err := c.PrepareCreate(ctx, establishmentID, userID, doc); err != nil {
		return nil, err
	}
	if err := c.repo.Insert(ctx, doc); err != nil {
		c.LogError(ctx, err, "Failed to insert document", slog.String("collection", c.collection), slog.String("id", P(doc).DocumentID()))
		return nil, err
	}
	c.LogInfo(ctx, "Document created", slog.String("collection", c.collection), slog.String("id", P(doc).DocumentID()))
	return doc, nil
}

// PrepareCreate assigns the id and tenant, stamps the audit fields and runs the create rules.
func (c *CrudService[T, P]) PrepareCreate(ctx context.Context, establishmentID, userID string, doc *T) error {
	p := P(doc)
	if p.DocumentID() == "" {
		p.SetDocumentID(uuid.NewString())
	}
	p.SetTenantID(establishmentID)
	p.Audit().StampCreated(userID, c.Now())
	return c.rules.PrepareForCreate(ctx, doc)
}

// Update authorizes the user and applies mutate to the stored document.
func (c *CrudService[T, P]) Update(ctx context.Context, establishmentID, id, userID string, mutate func(*T) error) (*T, error) {
	if err := c.AuthorizeUser(ctx, userID, establishmentID, c.policy.Write); err != nil {
		return nil, err
	}
	return c.Modify(ctx, establishmentID, id, userID, mutate)
}

// Modify loads the document, applies mutate, runs the update rules and saves it.
func (c *CrudService[T, P]) Modify(ctx context.Context, establishmentID, id, userID string, mutate func(*T) error) (*T, error) {
	current, err := c.Load(ctx, establishmentID, id)
	if err != nil {
		return nil, err
	}
	next, err := c.PrepareUpdate(ctx, current, userID, mutate)
	if err != nil {
		return nil, err
	}
	if err := c.repo.Update(ctx, next); err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			c.LogError(ctx, err, "Failed to update document", slog.String("collection", c.collection), slog.String("id", id))
		}
		return nil, err
	}
	c.LogInfo(ctx, "Document updated", slog.String("collection", c.collection), slog.String("id", id))
	return next, nil
}

// PrepareUpdate builds the next state of current: mutate works on a deep copy, the identity
// and creation audit fields are restored afterwards, and the update rules run last.
func (c *CrudService[T, P]) PrepareUpdate(ctx context.Context, current *T, userID string, mutate func(*T) error) (*T, error) {
	next, err := clone(current)
	if err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to copy "+c.collection+" document", err)
	}
	if mutate != nil {
		if err := mutate(next); err != nil {
			return nil, err
		}
	}

	cur, nxt := P(current), P(next)
	nxt.SetDocumentID(cur.DocumentID())
	nxt.SetTenantID(cur.TenantID())
	audit := *cur.Audit()
	*nxt.Audit() = audit
	nxt.Audit().StampUpdated(userID, c.Now())

	if err := c.rules.PrepareForUpdate(ctx, current, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Delete authorizes the user and removes the document.
func (c *CrudService[T, P]) Delete(ctx context.Context, establishmentID, id, userID string) error {
	if err := c.AuthorizeUser(ctx, userID, establishmentID, c.policy.Delete); err != nil {
		return err
	}
	return c.Remove(ctx, establishmentID, id)
}

// Remove runs the delete guard, if the rules define one, and deletes the document.
func (c *CrudService[T, P]) Remove(ctx context.Context, establishmentID, id string) error {
	doc, err := c.Load(ctx, establishmentID, id)
	if err != nil {
		return err
	}
	if guard, ok := c.rules.(portssvc.DeleteGuard[T]); ok {
		if err := guard.PrepareForDelete(ctx, doc); err != nil {
			return err
		}
	}
	if err := c.repo.Delete(ctx, id); err != nil {
		c.LogError(ctx, err, "Failed to delete document", slog.String("collection", c.collection), slog.String("id", id))
		return err
	}
	c.LogInfo(ctx, "Document deleted", slog.String("collection", c.collection), slog.String("id", id))
	return nil
}

func clone[T any](v *T) (*T, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &out, nil
}

// pageSlice pages a list that had to be filtered in memory, using the same token format as Page.
func pageSlice[T any](items []T, scope string, params dto.ListParams) ([]T, string, error) {
	offset, err := pagination.DecodeOffsetToken(scope, params.NextToken)
	if err != nil {
		return nil, "", apperrors.NewValidationFailedError("invalid nextToken")
	}
	limit := pagination.ClampLimit(params.Limit)
	if offset >= len(items) {
		return []T{}, "", nil
	}
	end := offset + limit
	if end >= len(items) {
		return items[offset:], "", nil
	}
	return items[offset:end], pagination.EncodeOffsetToken(scope, end), nil
}

// notFoundOr returns err unless it is nil or a not-found error, which become a not-found
// error carrying msg. Used where a document of another establishment must look absent.
func notFoundOr(err error, msg string) error {
	if err == nil || errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.NewNotFoundError(msg)
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}
