package rules

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/salon_management_app/internal/apperrors"
	"github.com/SscSPs/salon_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// SaleRules prices sales and checks stock. The stock itself moves through the StockLedger
// using the plan returned by PlanFor.
type SaleRules struct {
	deps
}

func NewSaleRules(repos portsrepo.RepositoryProvider, now domain.Clock) *SaleRules {
	return &SaleRules{deps: newDeps(repos, now)}
}

func (r *SaleRules) PrepareForCreate(ctx context.Context, s *domain.Sale) error {
	if s.Status == "" {
		s.Status = domain.SaleCompleted
	}
	if s.Status != domain.SaleCompleted {
		return apperrors.Validationf("new sales must be %s", domain.SaleCompleted)
	}
	if s.SoldAt.IsZero() {
		s.SoldAt = r.now()
	}
	s.SoldAt = s.SoldAt.UTC().Truncate(time.Second)
	if err := r.check(ctx, s); err != nil {
		return err
	}
	return r.checkStock(ctx, s.EstablishmentID, PlanFor(nil, s))
}

func (r *SaleRules) PrepareForUpdate(ctx context.Context, current, next *domain.Sale) error {
	if current.Status == domain.SaleCancelled {
		return fmt.Errorf("%w: sale %s is cancelled", apperrors.ErrImmutableField, current.ID)
	}
	if next.Status == "" {
		next.Status = current.Status
	}
	next.SoldAt = next.SoldAt.UTC().Truncate(time.Second)
	if next.SoldAt.IsZero() {
		next.SoldAt = current.SoldAt
	}

	if next.Status == domain.SaleCancelled {
		// a cancellation only records notes; the lines stay as sold
		next.Items = current.Items
		next.Discount = current.Discount
		next.Total = current.Total
		next.ClientID = current.ClientID
		next.EmployeeID = current.EmployeeID
		next.PaymentMethod = current.PaymentMethod
		next.Notes = strings.TrimSpace(next.Notes)
		return validateStruct(next)
	}

	if err := r.check(ctx, next); err != nil {
		return err
	}
	return r.checkStock(ctx, next.EstablishmentID, PlanFor(current, next))
}

// PrepareForDelete refuses to drop a sale that still has payments recorded against it.
func (r *SaleRules) PrepareForDelete(ctx context.Context, s *domain.Sale) error {
	q := portsrepo.Query{EstablishmentID: s.EstablishmentID}.
		Where("saleID", portsrepo.OpEqual, s.ID).
		Where("status", portsrepo.OpEqual, domain.PaymentRecordPaid)
	n, err := r.repos.PaymentRepo.Count(ctx, q)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: sale %s has %d payments, refund them first", apperrors.ErrInUse, s.ID, n)
	}
	return nil
}

// PlanFor returns the stock movement that turns current into next. A nil current is a new
// sale and a nil next a deleted one. Only completed sales hold stock.
func PlanFor(current, next *domain.Sale) domain.StockPlan {
	plan := domain.StockPlan{}
	if current != nil && current.Status == domain.SaleCompleted {
		for id, qty := range current.QuantitiesByProduct() {
			plan[id] += qty
		}
	}
	if next != nil && next.Status == domain.SaleCompleted {
		for id, qty := range next.QuantitiesByProduct() {
			plan[id] -= qty
		}
	}
	for id, d := range plan {
		if d == 0 {
			delete(plan, id)
		}
	}
	return plan
}

func (r *SaleRules) check(ctx context.Context, s *domain.Sale) error {
	s.Notes = strings.TrimSpace(s.Notes)
	if err := validateStruct(s); err != nil {
		return err
	}
	if s.ClientID != "" {
		if _, err := loadInTenant[domain.Client](ctx, r.repos.ClientRepo, s.EstablishmentID, s.ClientID, "client"); err != nil {
			return err
		}
	}
	if s.EmployeeID != "" {
		if _, err := loadInTenant[domain.Employee](ctx, r.repos.EmployeeRepo, s.EstablishmentID, s.EmployeeID, "employee"); err != nil {
			return err
		}
	}

	sum := decimal.Zero
	for i := range s.Items {
		it := &s.Items[i]
		p, err := loadInTenant[domain.Product](ctx, r.repos.ProductRepo, s.EstablishmentID, it.ProductID, "product")
		if err != nil {
			return err
		}
		if !p.IsActive {
			return apperrors.Validationf("product %s is inactive", p.Name)
		}
		it.ProductName = p.Name
		if it.UnitPrice.IsZero() {
			it.UnitPrice = p.Price
		}
		if it.UnitPrice.IsNegative() {
			return apperrors.Validationf("unit price of %s cannot be negative", p.Name)
		}
		it.Subtotal = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))).Round(2)
		sum = sum.Add(it.Subtotal)
	}

	if s.Discount.IsNegative() || s.Discount.GreaterThan(sum) {
		return apperrors.Validationf("discount must be between 0 and %s", sum.StringFixed(2))
	}
	s.Total = sum.Sub(s.Discount)
	return nil
}

// checkStock fails early when a plan would drive a product below zero. The ledger repeats
// the check atomically when writing.
func (r *SaleRules) checkStock(ctx context.Context, establishmentID string, plan domain.StockPlan) error {
	for id, delta := range plan {
		if delta >= 0 {
			continue
		}
		p, err := loadInTenant[domain.Product](ctx, r.repos.ProductRepo, establishmentID, id, "product")
		if err != nil {
			return err
		}
		if p.StockQuantity+delta < 0 {
			return fmt.Errorf("%w: product %s has %d units, %d requested", apperrors.ErrInsufficientStock, p.Name, p.StockQuantity, -delta)
		}
	}
	return nil
}
