package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/SscSPs/salon_management_app/internal/apperrors"
	"github.com/SscSPs/salon_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxDocumentRepository stores one collection of T as JSONB rows of the documents table.
type PgxDocumentRepository[T any, P domain.EntityPtr[T]] struct {
	BaseRepository
	collection string
}

func newPgxDocumentRepository[T any, P domain.EntityPtr[T]](pool *pgxpool.Pool, collection string) *PgxDocumentRepository[T, P] {
	return &PgxDocumentRepository[T, P]{
		BaseRepository: BaseRepository{Pool: pool},
		collection:     collection,
	}
}

var _ portsrepo.DocumentRepository[domain.Appointment] = (*PgxDocumentRepository[domain.Appointment, *domain.Appointment])(nil)

func (r *PgxDocumentRepository[T, P]) Insert(ctx context.Context, doc *T) error {
	p := P(doc)
	data, err := json.Marshal(doc)
	if err != nil {
		return apperrors.NewAppError(500, "failed to encode "+r.collection+" document", err)
	}
	audit := p.Audit()
	query := `
		INSERT INTO documents (collection, id, establishment_id, data, version, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err = r.Pool.Exec(ctx, query,
		r.collection, p.DocumentID(), p.TenantID(), data, audit.Version, audit.CreatedAt, audit.LastUpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s %s", apperrors.ErrDuplicate, r.collection, p.DocumentID())
		}
		return apperrors.NewAppError(500, "failed to insert "+r.collection+" document", err)
	}
	return nil
}

func (r *PgxDocumentRepository[T, P]) FindByID(ctx context.Context, id string) (*T, error) {
	return findDocument[T](ctx, r.Pool, r.collection, id, "")
}

func (r *PgxDocumentRepository[T, P]) Update(ctx context.Context, doc *T) error {
	return updateDocument[T, P](ctx, r.Pool, r.collection, doc)
}

func (r *PgxDocumentRepository[T, P]) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2;`, r.collection, id)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete "+r.collection+" document", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(r.collection + " " + id + " not found")
	}
	return nil
}

func (r *PgxDocumentRepository[T, P]) Find(ctx context.Context, q portsrepo.Query) ([]T, error) {
	b, err := newQueryBuilder(r.collection, q)
	if err != nil {
		return nil, apperrors.NewAppError(500, "invalid "+r.collection+" query", err)
	}
	sql := "SELECT data FROM documents WHERE " + b.where() + " " + orderBy(q) + limitOffset(q) + ";"

	rows, err := r.Pool.Query(ctx, sql, b.args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query "+r.collection, err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan "+r.collection+" document", err)
		}
		var doc T
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, apperrors.NewAppError(500, "failed to decode "+r.collection+" document", err)
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating "+r.collection+" rows", err)
	}
	return out, nil
}

func (r *PgxDocumentRepository[T, P]) Count(ctx context.Context, q portsrepo.Query) (int, error) {
	b, err := newQueryBuilder(r.collection, q)
	if err != nil {
		return 0, apperrors.NewAppError(500, "invalid "+r.collection+" query", err)
	}
	var count int
	if err := r.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM documents WHERE "+b.where()+";", b.args...).Scan(&count); err != nil {
		return 0, apperrors.NewAppError(500, "failed to count "+r.collection, err)
	}
	return count, nil
}

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// findDocument loads one document; lock appends a row-locking clause such as "FOR UPDATE".
func findDocument[T any](ctx context.Context, db dbtx, collection, id, lock string) (*T, error) {
	var data []byte
	err := db.QueryRow(ctx, "SELECT data FROM documents WHERE collection = $1 AND id = $2 "+lock+";", collection, id).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(collection + " " + id + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to get "+collection+" document", err)
	}
	var doc T
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, apperrors.NewAppError(500, "failed to decode "+collection+" document", err)
	}
	return &doc, nil
}

// updateDocument replaces a document when the stored version matches, bumping the version.
func updateDocument[T any, P domain.EntityPtr[T]](ctx context.Context, db dbtx, collection string, doc *T) error {
	p := P(doc)
	audit := p.Audit()
	expected := audit.Version
	audit.Version++
	data, err := json.Marshal(doc)
	if err != nil {
		audit.Version = expected
		return apperrors.NewAppError(500, "failed to encode "+collection+" document", err)
	}
	query := `
		UPDATE documents
		SET data = $1, version = $2, establishment_id = $3, last_updated_at = $4
		WHERE collection = $5 AND id = $6 AND version = $7;
	`
	cmdTag, err := db.Exec(ctx, query, data, audit.Version, p.TenantID(), audit.LastUpdatedAt, collection, p.DocumentID(), expected)
	if err != nil {
		audit.Version = expected
		return apperrors.NewAppError(500, "failed to update "+collection+" document", err)
	}
	if cmdTag.RowsAffected() == 0 {
		audit.Version = expected
		var exists bool
		if err := db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM documents WHERE collection = $1 AND id = $2);`, collection, p.DocumentID()).Scan(&exists); err != nil {
			return apperrors.NewAppError(500, "failed to check "+collection+" document", err)
		}
		if !exists {
			return apperrors.NewNotFoundError(collection + " " + p.DocumentID() + " not found")
		}
		return apperrors.NewConflictError("optimistic locking failed: " + collection + " " + p.DocumentID())
	}
	return nil
}
