package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/salon_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/salon_management_app/internal/core/ports/services"
	"github.com/SscSPs/salon_management_app/internal/core/rules"
	"github.com/SscSPs/salon_management_app/internal/dto"
)

// saleService keeps sales and product stock consistent: every write goes through the
// stock ledger together with the stock plan of the change.
type saleService struct {
	*CrudService[domain.Sale, *domain.Sale]
	rules  *rules.SaleRules
	ledger portsrepo.StockLedger
}

// NewSaleService creates the point-of-sale service.
func NewSaleService(repos portsrepo.RepositoryProvider, options ...BaseOption) portssvc.SaleSvcFacade {
	base := newBaseService(options...)
	saleRules := rules.NewSaleRules(repos, base.Now)
	return &saleService{
		CrudService: NewCrudService[domain.Sale](repos.SaleRepo, saleRules, domain.CollectionSales,
			CrudPolicy{Read: domain.RoleEmployee, Write: domain.RoleEmployee, Delete: domain.RoleAdmin}, options...),
		rules:  saleRules,
		ledger: repos.StockLedger,
	}
}

var _ portssvc.SaleSvcFacade = (*saleService)(nil)

func (s *saleService) ListSales(ctx context.Context, establishmentID, requestingUserID string, params dto.ListSalesParams) ([]domain.Sale, string, error) {
	q := portsrepo.Query{OrderBy: "soldAt", Descending: true}
	if params.From != nil {
		q = q.Where("soldAt", portsrepo.OpGreaterEqual, params.From.UTC())
	}
	if params.To != nil {
		q = q.Where("soldAt", portsrepo.OpLess, params.To.UTC())
	}
	if params.ClientID != "" {
		q = q.Where("clientID", portsrepo.OpEqual, params.ClientID)
	}
	if params.Status != "" {
		q = q.Where("status", portsrepo.OpEqual, params.Status)
	}
	return s.List(ctx, establishmentID, requestingUserID, params.ListParams, q)
}

func (s *saleService) GetSale(ctx context.Context, establishmentID, saleID, requestingUserID string) (*domain.Sale, error) {
	return s.Get(ctx, establishmentID, saleID, requestingUserID)
}

// CreateSale prices the sale and decrements the stock of its products.
func (s *saleService) CreateSale(ctx context.Context, establishmentID string, req dto.CreateSaleRequest, requestingUserID string) (*domain.Sale, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, establishmentID, domain.RoleEmployee); err != nil {
		return nil, err
	}
	sale := req.ToDomain()
	if err := s.PrepareCreate(ctx, establishmentID, requestingUserID, &sale); err != nil {
		return nil, err
	}
	if err := s.ledger.InsertSale(ctx, &sale, rules.PlanFor(nil, &sale)); err != nil {
		s.LogError(ctx, err, "Failed to record sale", slog.String("establishment_id", establishmentID))
		return nil, err
	}
	s.LogInfo(ctx, "Sale recorded",
		slog.String("sale_id", sale.ID),
		slog.String("total", sale.Total.StringFixed(2)))
	return &sale, nil
}

// UpdateSale edits a completed sale; changed items move stock by the difference.
func (s *saleService) UpdateSale(ctx context.Context, establishmentID, saleID string, req dto.UpdateSaleRequest, requestingUserID string) (*domain.Sale, error) {
	return s.change(ctx, establishmentID, saleID, requestingUserID, func(sale *domain.Sale) error {
		req.Apply(sale)
		return nil
	})
}

// CancelSale cancels a completed sale and puts its items back in stock.
func (s *saleService) CancelSale(ctx context.Context, establishmentID, saleID, requestingUserID string) (*domain.Sale, error) {
	return s.change(ctx, establishmentID, saleID, requestingUserID, func(sale *domain.Sale) error {
		sale.Status = domain.SaleCancelled
		return nil
	})
}

func (s *saleService) change(ctx context.Context, establishmentID, saleID, requestingUserID string, mutate func(*domain.Sale) error) (*domain.Sale, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, establishmentID, domain.RoleEmployee); err != nil {
		return nil, err
	}
	current, err := s.Load(ctx, establishmentID, saleID)
	if err != nil {
		return nil, err
	}
	next, err := s.PrepareUpdate(ctx, current, requestingUserID, mutate)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.UpdateSale(ctx, next, rules.PlanFor(current, next)); err != nil {
		s.LogError(ctx, err, "Failed to update sale", slog.String("sale_id", saleID))
		return nil, err
	}
	return next, nil
}

// DeleteSale removes a sale, restoring stock when it was completed.
func (s *saleService) DeleteSale(ctx context.Context, establishmentID, saleID, requestingUserID string) error {
	if err := s.AuthorizeUser(ctx, requestingUserID, establishmentID, domain.RoleAdmin); err != nil {
		return err
	}
	sale, err := s.Load(ctx, establishmentID, saleID)
	if err != nil {
		return err
	}
	if err := s.rules.PrepareForDelete(ctx, sale); err != nil {
		return err
	}
	if err := s.ledger.DeleteSale(ctx, sale, rules.PlanFor(sale, nil)); err != nil {
		s.LogError(ctx, err, "Failed to delete sale", slog.String("sale_id", saleID))
		return err
	}
	s.LogInfo(ctx, "Sale deleted", slog.String("sale_id", saleID))
	return nil
}
