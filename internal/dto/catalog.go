package dto

import (
	"github.com/SscSPs/salon_management_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateServiceRequest defines data for adding a service to the catalogue.
type CreateServiceRequest struct {
	Name               string           `json:"name" binding:"required,max=120"`
	Description        string           `json:"description" binding:"omitempty,max=1000"`
	Price              decimal.Decimal  `json:"price" swaggertype:"string" example:"50.00"`
	DurationMinutes    int              `json:"durationMinutes" binding:"required,gt=0,lte=1440"`
	CommissionOverride *decimal.Decimal `json:"commissionOverride" swaggertype:"string"`
	IsActive           *bool            `json:"isActive"`
}

func (r CreateServiceRequest) ToDomain() domain.Service {
	return domain.Service{
		Name:               r.Name,
		Description:        r.Description,
		Price:              r.Price,
		DurationMinutes:    r.DurationMinutes,
		CommissionOverride: r.CommissionOverride,
		IsActive:           boolOr(r.IsActive, true),
	}
}

// UpdateServiceRequest defines the data allowed for updating a service.
type UpdateServiceRequest struct {
	Name                    *string          `json:"name" binding:"omitempty,max=120"`
	Description             *string          `json:"description" binding:"omitempty,max=1000"`
	Price                   *decimal.Decimal `json:"price" swaggertype:"string"`
	DurationMinutes         *int             `json:"durationMinutes" binding:"omitempty,gt=0,lte=1440"`
	CommissionOverride      *decimal.Decimal `json:"commissionOverride" swaggertype:"string"`
	ClearCommissionOverride bool             `json:"clearCommissionOverride"`
	IsActive                *bool            `json:"isActive"`
}

func (r UpdateServiceRequest) Apply(s *domain.Service) {
	if r.Name != nil {
		s.Name = *r.Name
	}
	if r.Description != nil {
		s.Description = *r.Description
	}
	if r.Price != nil {
		s.Price = *r.Price
	}
	if r.DurationMinutes != nil {
		s.DurationMinutes = *r.DurationMinutes
	}
	if r.CommissionOverride != nil {
		s.CommissionOverride = r.CommissionOverride
	}
	if r.ClearCommissionOverride {
		s.CommissionOverride = nil
	}
	if r.IsActive != nil {
		s.IsActive = *r.IsActive
	}
}

// ListServicesParams filters the catalogue listing.
type ListServicesParams struct {
	ListParams
	ActiveOnly bool `form:"activeOnly"`
}

// CreateProductRequest defines data for adding a retail product.
type CreateProductRequest struct {
	Name          string          `json:"name" binding:"required,max=120"`
	SKU           string          `json:"sku" binding:"omitempty,max=64"`
	Description   string          `json:"description" binding:"omitempty,max=1000"`
	Price         decimal.Decimal `json:"price" swaggertype:"string" example:"30.00"`
	Cost          decimal.Decimal `json:"cost" swaggertype:"string" example:"12.50"`
	StockQuantity int             `json:"stockQuantity" binding:"gte=0"`
	MinStock      int             `json:"minStock" binding:"gte=0"`
	IsActive      *bool           `json:"isActive"`
}

func (r CreateProductRequest) ToDomain() domain.Product {
	return domain.Product{
		Name:          r.Name,
		SKU:           r.SKU,
		Description:   r.Description,
		Price:         r.Price,
		Cost:          r.Cost,
		StockQuantity: r.StockQuantity,
		MinStock:      r.MinStock,
		IsActive:      boolOr(r.IsActive, true),
	}
}

// UpdateProductRequest defines the data allowed for updating a product. Stock levels only
// change through sales and inventory counts.
type UpdateProductRequest struct {
	Name        *string          `json:"name" binding:"omitempty,max=120"`
	SKU         *string          `json:"sku" binding:"omitempty,max=64"`
	Description *string          `json:"description" binding:"omitempty,max=1000"`
	Price       *decimal.Decimal `json:"price" swaggertype:"string"`
	Cost        *decimal.Decimal `json:"cost" swaggertype:"string"`
	MinStock    *int             `json:"minStock" binding:"omitempty,gte=0"`
	IsActive    *bool            `json:"isActive"`
}

func (r UpdateProductRequest) Apply(p *domain.Product) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.SKU != nil {
		p.SKU = *r.SKU
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.Cost != nil {
		p.Cost = *r.Cost
	}
	if r.MinStock != nil {
		p.MinStock = *r.MinStock
	}
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
}

// ListProductsParams filters the product listing.
type ListProductsParams struct {
	ListParams
	ActiveOnly   bool `form:"activeOnly"`
	LowStockOnly bool `form:"lowStockOnly"`
}
