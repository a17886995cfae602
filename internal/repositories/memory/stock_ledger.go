package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/salon_management_app/internal/apperrors"
	"github.com/SscSPs/salon_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
)

type stockLedger struct {
	store *Store
}

// NewStockLedger creates a StockLedger whose writes are atomic under the store lock.
func NewStockLedger(store *Store) portsrepo.StockLedger {
	return &stockLedger{store: store}
}

var _ portsrepo.StockLedger = (*stockLedger)(nil)

func (l *stockLedger) InsertSale(ctx context.Context, sale *domain.Sale, plan domain.StockPlan) error {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()

	if _, exists := l.store.get(domain.CollectionSales, sale.ID); exists {
		return fmt.Errorf("%w: sale %s", apperrors.ErrDuplicate, sale.ID)
	}
	products, err := l.applyPlanLocked(sale.EstablishmentID, plan, sale.LastUpdatedBy, sale.LastUpdatedAt)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(sale)
	if err != nil {
		return apperrors.NewAppError(500, "failed to encode sale", err)
	}
	l.commitProducts(products)
	l.store.put(domain.CollectionSales, sale.ID, raw)
	return nil
}

func (l *stockLedger) UpdateSale(ctx context.Context, sale *domain.Sale, plan domain.StockPlan) error {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()

	raw, ok := l.store.get(domain.CollectionSales, sale.ID)
	if !ok {
		return apperrors.NewNotFoundError("sale " + sale.ID + " not found")
	}
	current, err := decode[domain.Sale](raw)
	if err != nil {
		return apperrors.NewAppError(500, "failed to decode sale", err)
	}
	if current.Version != sale.Version {
		return apperrors.NewConflictError("optimistic locking failed: sale " + sale.ID)
	}
	products, err := l.applyPlanLocked(sale.EstablishmentID, plan, sale.LastUpdatedBy, sale.LastUpdatedAt)
	if err != nil {
		return err
	}
	sale.Version++
	encoded, err := json.Marshal(sale)
	if err != nil {
		sale.Version--
		return apperrors.NewAppError(500, "failed to encode sale", err)
	}
	l.commitProducts(products)
	l.store.put(domain.CollectionSales, sale.ID, encoded)
	return nil
}

func (l *stockLedger) DeleteSale(ctx context.Context, sale *domain.Sale, plan domain.StockPlan) error {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()

	raw, ok := l.store.get(domain.CollectionSales, sale.ID)
	if !ok {
		return apperrors.NewNotFoundError("sale " + sale.ID + " not found")
	}
	current, err := decode[domain.Sale](raw)
	if err != nil {
		return apperrors.NewAppError(500, "failed to decode sale", err)
	}
	if current.Version != sale.Version {
		return apperrors.NewConflictError("optimistic locking failed: sale " + sale.ID)
	}
	products, err := l.applyPlanLocked(sale.EstablishmentID, plan, sale.LastUpdatedBy, sale.LastUpdatedAt)
	if err != nil {
		return err
	}
	l.commitProducts(products)
	l.store.remove(domain.CollectionSales, sale.ID)
	return nil
}

func (l *stockLedger) ApplyInventoryCount(ctx context.Context, count *domain.InventoryCount, userID string, now time.Time) error {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()

	raw, ok := l.store.get(domain.CollectionInventoryCounts, count.ID)
	if !ok {
		return apperrors.NewNotFoundError("inventory count " + count.ID + " not found")
	}
	current, err := decode[domain.InventoryCount](raw)
	if err != nil {
		return apperrors.NewAppError(500, "failed to decode inventory count", err)
	}
	if current.Version != count.Version {
		return apperrors.NewConflictError("optimistic locking failed: inventory count " + count.ID)
	}

	levels := count.Levels()
	ids := make([]string, 0, len(levels))
	for id := range levels {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	updated := make([]*domain.Product, 0, len(ids))
	for _, id := range ids {
		p, err := l.productLocked(count.EstablishmentID, id)
		if err != nil {
			return err
		}
		if levels[id] < 0 {
			return fmt.Errorf("%w: product %s cannot be set to %d", apperrors.ErrInsufficientStock, id, levels[id])
		}
		p.StockQuantity = levels[id]
		p.StampUpdated(userID, now)
		p.Version++
		updated = append(updated, p)
	}

	count.Version++
	encoded, err := json.Marshal(count)
	if err != nil {
		count.Version--
		return apperrors.NewAppError(500, "failed to encode inventory count", err)
	}
	l.commitProducts(updated)
	l.store.put(domain.CollectionInventoryCounts, count.ID, encoded)
	return nil
}

// applyPlanLocked computes the new product states without writing them, so a failing
// product leaves the store untouched.
func (l *stockLedger) applyPlanLocked(establishmentID string, plan domain.StockPlan, userID string, now time.Time) ([]*domain.Product, error) {
	ids := plan.ProductIDs()
	sort.Strings(ids)

	out := make([]*domain.Product, 0, len(ids))
	for _, id := range ids {
		delta := plan[id]
		if delta == 0 {
			continue
		}
		p, err := l.productLocked(establishmentID, id)
		if err != nil {
			return nil, err
		}
		if p.StockQuantity+delta < 0 {
			return nil, fmt.Errorf("%w: product %s has %d units, %d requested", apperrors.ErrInsufficientStock, p.Name, p.StockQuantity, -delta)
		}
		p.StockQuantity += delta
		p.StampUpdated(userID, now)
		p.Version++
		out = append(out, p)
	}
	return out, nil
}

func (l *stockLedger) productLocked(establishmentID, id string) (*domain.Product, error) {
	raw, ok := l.store.get(domain.CollectionProducts, id)
	if !ok {
		return nil, apperrors.NewNotFoundError("product " + id + " not found")
	}
	p, err := decode[domain.Product](raw)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to decode product", err)
	}
	if p.EstablishmentID != establishmentID {
		return nil, apperrors.NewNotFoundError("product " + id + " not found")
	}
	return p, nil
}

func (l *stockLedger) commitProducts(products []*domain.Product) {
	for _, p := range products {
		// Product only holds JSON-safe fields; encoding cannot fail here.
		raw, _ := json.Marshal(p)
		l.store.put(domain.CollectionProducts, p.ID, raw)
	}
}
