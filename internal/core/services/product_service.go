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

type productService struct {
	*CrudService[domain.Product, *domain.Product]
}

// NewProductService creates the retail product service.
func NewProductService(repos portsrepo.RepositoryProvider, options ...BaseOption) portssvc.ProductSvcFacade {
	base := newBaseService(options...)
	return &productService{
		CrudService: NewCrudService[domain.Product](repos.ProductRepo, rules.NewProductRules(repos, base.Now), domain.CollectionProducts,
			CrudPolicy{Read: domain.RoleEmployee, Write: domain.RoleAdmin, Delete: domain.RoleAdmin}, options...),
	}
}

var _ portssvc.ProductSvcFacade = (*productService)(nil)

// ListProducts lists products. The low-stock filter compares two fields of the same
// document, so it is applied in memory.
func (s *productService) ListProducts(ctx context.Context, establishmentID, requestingUserID string, params dto.ListProductsParams) ([]domain.Product, string, error) {
	q := portsrepo.Query{OrderBy: "name"}
	if params.ActiveOnly {
		q = q.Where("isActive", portsrepo.OpEqual, true)
	}
	if !params.LowStockOnly {
		return s.List(ctx, establishmentID, requestingUserID, params.ListParams, q)
	}

	if err := s.AuthorizeUser(ctx, requestingUserID, establishmentID, domain.RoleEmployee); err != nil {
		return nil, "", err
	}
	low, err := s.lowStock(ctx, establishmentID, q)
	if err != nil {
		return nil, "", err
	}
	return pageSlice(low, domain.CollectionProducts, params.ListParams)
}

func (s *productService) GetProduct(ctx context.Context, establishmentID, productID, requestingUserID string) (*domain.Product, error) {
	return s.Get(ctx, establishmentID, productID, requestingUserID)
}

// ListLowStock returns active products at or below their minimum stock.
func (s *productService) ListLowStock(ctx context.Context, establishmentID, requestingUserID string) ([]domain.Product, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, establishmentID, domain.RoleEmployee); err != nil {
		return nil, err
	}
	return s.lowStock(ctx, establishmentID, portsrepo.Query{OrderBy: "name"}.Where("isActive", portsrepo.OpEqual, true))
}

func (s *productService) lowStock(ctx context.Context, establishmentID string, q portsrepo.Query) ([]domain.Product, error) {
	q.EstablishmentID = establishmentID
	all, err := s.Repo().Find(ctx, q)
	if err != nil {
		s.LogError(ctx, err, "Failed to list products", slog.String("establishment_id", establishmentID))
		return nil, err
	}
	out := make([]domain.Product, 0, len(all))
	for i := range all {
		if all[i].LowStock() {
			out = append(out, all[i])
		}
	}
	return out, nil
}

func (s *productService) CreateProduct(ctx context.Context, establishmentID string, req dto.CreateProductRequest, requestingUserID string) (*domain.Product, error) {
	p := req.ToDomain()
	return s.Create(ctx, establishmentID, requestingUserID, &p)
}

func (s *productService) UpdateProduct(ctx context.Context, establishmentID, productID string, req dto.UpdateProductRequest, requestingUserID string) (*domain.Product, error) {
	return s.Update(ctx, establishmentID, productID, requestingUserID, func(p *domain.Product) error {
		req.Apply(p)
		return nil
	})
}

func (s *productService) DeleteProduct(ctx context.Context, establishmentID, productID, requestingUserID string) error {
	return s.Delete(ctx, establishmentID, productID, requestingUserID)
}
