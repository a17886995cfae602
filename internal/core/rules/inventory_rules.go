package rules

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/salon_management_app/internal/apperrors"
	"github.com/SscSPs/salon_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
)

// InventoryCountRules guards stock-takings. Counts are edited as drafts and frozen once applied.
type InventoryCountRules struct {
	deps
}

func NewInventoryCountRules(repos portsrepo.RepositoryProvider, now domain.Clock) *InventoryCountRules {
	return &InventoryCountRules{deps: newDeps(repos, now)}
}

func (r *InventoryCountRules) PrepareForCreate(ctx context.Context, c *domain.InventoryCount) error {
	if c.Status == "" {
		c.Status = domain.InventoryDraft
	}
	if c.Status != domain.InventoryDraft {
		return apperrors.Validationf("new inventory counts must be %s", domain.InventoryDraft)
	}
	if c.CountedAt.IsZero() {
		c.CountedAt = r.now()
	}
	c.AppliedAt = nil
	return r.snapshot(ctx, c)
}

func (r *InventoryCountRules) PrepareForUpdate(ctx context.Context, current, next *domain.InventoryCount) error {
	if current.Status == domain.InventoryApplied {
		return fmt.Errorf("%w: inventory count %s is applied", apperrors.ErrImmutableField, current.ID)
	}
	if next.Status == "" {
		next.Status = current.Status
	}
	if next.Status != domain.InventoryDraft {
		return apperrors.Validationf("inventory counts are applied through the apply operation")
	}
	if next.CountedAt.IsZero() {
		next.CountedAt = current.CountedAt
	}
	next.AppliedAt = nil
	return r.snapshot(ctx, next)
}

func (r *InventoryCountRules) PrepareForDelete(ctx context.Context, c *domain.InventoryCount) error {
	if c.Status == domain.InventoryApplied {
		return fmt.Errorf("%w: inventory count %s is applied", apperrors.ErrImmutableField, c.ID)
	}
	return nil
}

// PrepareForApply refreshes the expected quantities against the current stock and marks
// the count applied.
func (r *InventoryCountRules) PrepareForApply(ctx context.Context, c *domain.InventoryCount) error {
	if c.Status != domain.InventoryDraft {
		return fmt.Errorf("%w: inventory count %s is %s", apperrors.ErrImmutableField, c.ID, c.Status)
	}
	if err := r.snapshot(ctx, c); err != nil {
		return err
	}
	now := r.now()
	c.Status = domain.InventoryApplied
	c.AppliedAt = &now
	return nil
}

func (r *InventoryCountRules) snapshot(ctx context.Context, c *domain.InventoryCount) error {
	c.Notes = strings.TrimSpace(c.Notes)
	c.CountedAt = c.CountedAt.UTC().Truncate(time.Second)
	if err := validateStruct(c); err != nil {
		return err
	}
	seen := make(map[string]bool, len(c.Lines))
	for i := range c.Lines {
		line := &c.Lines[i]
		if seen[line.ProductID] {
			return apperrors.Validationf("product %s is counted twice", line.ProductID)
		}
		seen[line.ProductID] = true

		p, err := loadInTenant[domain.Product](ctx, r.repos.ProductRepo, c.EstablishmentID, line.ProductID, "product")
		if err != nil {
			return err
		}
		line.ProductName = p.Name
		line.ExpectedQuantity = p.StockQuantity
		line.Difference = line.CountedQuantity - line.ExpectedQuantity
	}
	return nil
}
