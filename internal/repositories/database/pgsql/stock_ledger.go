package pgsql

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/salon_management_app/internal/apperrors"
	"github.com/SscSPs/salon_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxStockLedger struct {
	BaseRepository
}

func newPgxStockLedger(pool *pgxpool.Pool) portsrepo.StockLedger {
	return &PgxStockLedger{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.StockLedger = (*PgxStockLedger)(nil)

// InsertSale saves a sale and moves product stock within one DB transaction.
func (r *PgxStockLedger) InsertSale(ctx context.Context, sale *domain.Sale, plan domain.StockPlan) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.applyPlanInTx(ctx, tx, sale.EstablishmentID, plan, sale.LastUpdatedBy, sale.LastUpdatedAt); err != nil {
		return err
	}

	data, err := json.Marshal(sale)
	if err != nil {
		return apperrors.NewAppError(500, "failed to encode sale", err)
	}
	query := `
		INSERT INTO documents (collection, id, establishment_id, data, version, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	if _, err := tx.Exec(ctx, query, domain.CollectionSales, sale.ID, sale.EstablishmentID, data, sale.Version, sale.CreatedAt, sale.LastUpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: sale %s", apperrors.ErrDuplicate, sale.ID)
		}
		return apperrors.NewAppError(500, "failed to insert sale "+sale.ID, err)
	}

	return r.Commit(ctx, tx)
}

// UpdateSale replaces a sale (optimistic on version) and moves product stock within one DB transaction.
func (r *PgxStockLedger) UpdateSale(ctx context.Context, sale *domain.Sale, plan domain.StockPlan) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.applyPlanInTx(ctx, tx, sale.EstablishmentID, plan, sale.LastUpdatedBy, sale.LastUpdatedAt); err != nil {
		return err
	}
	if err := updateDocument[domain.Sale](ctx, tx, domain.CollectionSales, sale); err != nil {
		return err
	}
	if err := r.Commit(ctx, tx); err != nil {
		sale.Version--
		return err
	}
	return nil
}

// DeleteSale removes a sale (optimistic on version) and moves product stock within one DB transaction.
func (r *PgxStockLedger) DeleteSale(ctx context.Context, sale *domain.Sale, plan domain.StockPlan) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	cmdTag, err := tx.Exec(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2 AND version = $3;`,
		domain.CollectionSales, sale.ID, sale.Version)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete sale "+sale.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM documents WHERE collection = $1 AND id = $2);`, domain.CollectionSales, sale.ID).Scan(&exists); err != nil {
			return apperrors.NewAppError(500, "failed to check sale "+sale.ID, err)
		}
		if !exists {
			return apperrors.NewNotFoundError("sale " + sale.ID + " not found")
		}
		// the plan was computed from a stale sale
		return apperrors.NewConflictError("optimistic locking failed: sale " + sale.ID)
	}
	if err := r.applyPlanInTx(ctx, tx, sale.EstablishmentID, plan, sale.LastUpdatedBy, sale.LastUpdatedAt); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// ApplyInventoryCount overwrites the stock of every counted product and saves the count.
func (r *PgxStockLedger) ApplyInventoryCount(ctx context.Context, count *domain.InventoryCount, userID string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	levels := count.Levels()
	ids := make([]string, 0, len(levels))
	for id := range levels {
		ids = append(ids, id)
	}
	locked, err := lockProducts(ctx, tx, count.EstablishmentID, ids)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, id := range ids {
		if levels[id] < 0 {
			return fmt.Errorf("%w: product %s cannot be set to %d", apperrors.ErrInsufficientStock, id, levels[id])
		}
		p := locked[id]
		p.StockQuantity = levels[id]
		p.StampUpdated(userID, now)
		if err := queueProductUpdate(batch, p); err != nil {
			return err
		}
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to update product stock for inventory count "+count.ID, err)
	}

	if err := updateDocument[domain.InventoryCount](ctx, tx, domain.CollectionInventoryCounts, count); err != nil {
		return err
	}
	if err := r.Commit(ctx, tx); err != nil {
		count.Version--
		return err
	}
	return nil
}

// applyPlanInTx locks the planned products, checks availability and writes the new stock levels.
func (r *PgxStockLedger) applyPlanInTx(ctx context.Context, tx pgx.Tx, establishmentID string, plan domain.StockPlan, userID string, now time.Time) error {
	if plan.Empty() {
		return nil
	}
	locked, err := lockProducts(ctx, tx, establishmentID, plan.ProductIDs())
	if err != nil {
		return err
	}

	ids := plan.ProductIDs()
	sort.Strings(ids)
	batch := &pgx.Batch{}
	for _, id := range ids {
		delta := plan[id]
		if delta == 0 {
			continue
		}
		p := locked[id]
		if p.StockQuantity+delta < 0 {
			return fmt.Errorf("%w: product %s has %d units, %d requested", apperrors.ErrInsufficientStock, p.Name, p.StockQuantity, -delta)
		}
		p.StockQuantity += delta
		p.StampUpdated(userID, now)
		if err := queueProductUpdate(batch, p); err != nil {
			return err
		}
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to update product stock", err)
	}
	return nil
}

// lockProducts selects the products FOR UPDATE in id order. Every id must exist in the establishment.
func lockProducts(ctx context.Context, tx pgx.Tx, establishmentID string, ids []string) (map[string]*domain.Product, error) {
	query := `
		SELECT id, data FROM documents
		WHERE collection = $1 AND establishment_id = $2 AND id = ANY($3)
		ORDER BY id
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, query, domain.CollectionProducts, establishmentID, ids)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to lock products", err)
	}
	defer rows.Close()

	out := make(map[string]*domain.Product, len(ids))
	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan product", err)
		}
		var p domain.Product
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, apperrors.NewAppError(500, "failed to decode product", err)
		}
		out[id] = &p
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating product rows", err)
	}
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			return nil, apperrors.NewNotFoundError("product " + id + " not found")
		}
	}
	return out, nil
}

func queueProductUpdate(batch *pgx.Batch, p *domain.Product) error {
	p.Version++
	data, err := json.Marshal(p)
	if err != nil {
		return apperrors.NewAppError(500, "failed to encode product", err)
	}
	batch.Queue(`UPDATE documents SET data = $1, version = $2, last_updated_at = $3 WHERE collection = $4 AND id = $5;`,
		data, p.Version, p.LastUpdatedAt, domain.CollectionProducts, p.ID)
	return nil
}
