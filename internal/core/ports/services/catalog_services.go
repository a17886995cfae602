package services

import (
	"context"

	"github.com/SscSPs/salon_management_app/internal/core/domain"
	"github.com/SscSPs/salon_management_app/internal/dto"
)

// CatalogSvcFacade manages the service catalogue of an establishment.
type CatalogSvcFacade interface {
	ListServices(ctx context.Context, establishmentID, requestingUserID string, params dto.ListServicesParams) ([]domain.Service, string, error)
	GetService(ctx context.Context, establishmentID, serviceID, requestingUserID string) (*domain.Service, error)
	CreateService(ctx context.Context, establishmentID string, req dto.CreateServiceRequest, requestingUserID string) (*domain.Service, error)
	UpdateService(ctx context.Context, establishmentID, serviceID string, req dto.UpdateServiceRequest, requestingUserID string) (*domain.Service, error)
	DeleteService(ctx context.Context, establishmentID, serviceID, requestingUserID string) error
}

// ProductSvcFacade manages retail products.
type ProductSvcFacade interface {
	ListProducts(ctx context.Context, establishmentID, requestingUserID string, params dto.ListProductsParams) ([]domain.Product, string, error)
	GetProduct(ctx context.Context, establishmentID, productID, requestingUserID string) (*domain.Product, error)
	// ListLowStock returns active products at or below their minimum stock.
	ListLowStock(ctx context.Context, establishmentID, requestingUserID string) ([]domain.Product, error)
	CreateProduct(ctx context.Context, establishmentID string, req dto.CreateProductRequest, requestingUserID string) (*domain.Product, error)
	UpdateProduct(ctx context.Context, establishmentID, productID string, req dto.UpdateProductRequest, requestingUserID string) (*domain.Product, error)
	DeleteProduct(ctx context.Context, establishmentID, productID, requestingUserID string) error
}
