package dto

import (
	"time"

	"github.com/SscSPs/salon_management_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SaleItemRequest is one product line of a sale. UnitPrice defaults to the product price.
type SaleItemRequest struct {
	ProductID string           `json:"productID" binding:"required"`
	Quantity  int              `json:"quantity" binding:"required,gt=0"`
	UnitPrice *decimal.Decimal `json:"unitPrice" swaggertype:"string"`
}

func toSaleItems(in []SaleItemRequest) []domain.SaleItem {
	items := make([]domain.SaleItem, len(in))
	for i, it := range in {
		items[i] = domain.SaleItem{ProductID: it.ProductID, Quantity: it.Quantity}
		if it.UnitPrice != nil {
			items[i].UnitPrice = *it.UnitPrice
		}
	}
	return items
}

// CreateSaleRequest registers a point-of-sale ticket and decrements stock.
type CreateSaleRequest struct {
	ClientID      string               `json:"clientID"`
	EmployeeID    string               `json:"employeeID"`
	Items         []SaleItemRequest    `json:"items" binding:"required,min=1,dive"`
	Discount      decimal.Decimal      `json:"discount" swaggertype:"string" example:"0"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod" binding:"required,oneof=CASH CARD PIX OTHER"`
	SoldAt        *time.Time           `json:"soldAt"`
	Notes         string               `json:"notes" binding:"omitempty,max=2000"`
}

func (r CreateSaleRequest) ToDomain() domain.Sale {
	s := domain.Sale{
		ClientID:      r.ClientID,
		EmployeeID:    r.EmployeeID,
		Items:         toSaleItems(r.Items),
		Discount:      r.Discount,
		PaymentMethod: r.PaymentMethod,
		Notes:         r.Notes,
	}
	if r.SoldAt != nil {
		s.SoldAt = *r.SoldAt
	}
	return s
}

// UpdateSaleRequest edits a completed sale. Replacing the items adjusts stock by the difference.
type UpdateSaleRequest struct {
	ClientID      *string               `json:"clientID"`
	EmployeeID    *string               `json:"employeeID"`
	Items         *[]SaleItemRequest    `json:"items" binding:"omitempty,min=1,dive"`
	Discount      *decimal.Decimal      `json:"discount" swaggertype:"string"`
	PaymentMethod *domain.PaymentMethod `json:"paymentMethod" binding:"omitempty,oneof=CASH CARD PIX OTHER"`
	Notes         *string               `json:"notes" binding:"omitempty,max=2000"`
}

func (r UpdateSaleRequest) Apply(s *domain.Sale) {
	if r.ClientID != nil {
		s.ClientID = *r.ClientID
	}
	if r.EmployeeID != nil {
		s.EmployeeID = *r.EmployeeID
	}
	if r.Items != nil {
		s.Items = toSaleItems(*r.Items)
	}
	if r.Discount != nil {
		s.Discount = *r.Discount
	}
	if r.PaymentMethod != nil {
		s.PaymentMethod = *r.PaymentMethod
	}
	if r.Notes != nil {
		s.Notes = *r.Notes
	}
}

// ListSalesParams filters the sales listing.
type ListSalesParams struct {
	ListParams
	From     *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To       *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	ClientID string     `form:"clientID"`
	Status   string     `form:"status" binding:"omitempty,oneof=COMPLETED CANCELLED"`
}
