package rules

import (
	"context"
	"fmt"
	"strings"

	"github.com/SscSPs/salon_management_app/internal/apperrors"
	"github.com/SscSPs/salon_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
)

// ProductRules guards the retail catalogue. Stock only moves through sales and inventory counts.
type ProductRules struct {
	deps
}

func NewProductRules(repos portsrepo.RepositoryProvider, now domain.Clock) *ProductRules {
	return &ProductRules{deps: newDeps(repos, now)}
}

func (r *ProductRules) PrepareForCreate(ctx context.Context, p *domain.Product) error {
	if err := r.check(ctx, p); err != nil {
		return err
	}
	if p.IsActive {
		return r.checkQuota(ctx, p.EstablishmentID, r.repos.ProductRepo.Count, activeOnly(),
			func(l domain.PlanLimits) int { return l.MaxProducts }, "products")
	}
	return nil
}

func (r *ProductRules) PrepareForUpdate(ctx context.Context, current, next *domain.Product) error {
	if next.StockQuantity != current.StockQuantity {
		return fmt.Errorf("%w: stock of product %s changes only through sales and inventory counts", apperrors.ErrImmutableField, current.ID)
	}
	if err := r.check(ctx, next); err != nil {
		return err
	}
	if reactivated(current.IsActive, next.IsActive) {
		return r.checkQuota(ctx, next.EstablishmentID, r.repos.ProductRepo.Count, activeOnly(),
			func(l domain.PlanLimits) int { return l.MaxProducts }, "products")
	}
	return nil
}

func (r *ProductRules) check(ctx context.Context, p *domain.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	p.SKU = strings.ToUpper(strings.TrimSpace(p.SKU))
	if err := validateStruct(p); err != nil {
		return err
	}
	if p.Price.IsNegative() || p.Cost.IsNegative() {
		return apperrors.Validationf("price and cost cannot be negative")
	}
	if p.SKU == "" {
		return nil
	}
	q := portsrepo.Query{EstablishmentID: p.EstablishmentID}.Where("sku", portsrepo.OpEqual, p.SKU)
	return ensureUnique[domain.Product](ctx, r.repos.ProductRepo, q, p.ID, "a product with SKU "+p.SKU+" already exists")
}
