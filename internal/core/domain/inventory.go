package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a retail item sold at the point of sale.
type Product struct {
	Document
	Name          string          `json:"name" validate:"required,max=120"`
	SKU           string          `json:"sku" validate:"omitempty,max=64"`
	Description   string          `json:"description" validate:"omitempty,max=1000"`
	Price         decimal.Decimal `json:"price"`
	Cost          decimal.Decimal `json:"cost"`
	StockQuantity int             `json:"stockQuantity" validate:"gte=0"`
	MinStock      int             `json:"minStock" validate:"gte=0"`
	IsActive      bool            `json:"isActive"`
}

// LowStock reports whether the stock is at or below the configured minimum.
func (p *Product) LowStock() bool {
	return p.StockQuantity <= p.MinStock
}

// SaleStatus is the state of a point-of-sale ticket.
type SaleStatus string

const (
	SaleCompleted SaleStatus = "COMPLETED"
	SaleCancelled SaleStatus = "CANCELLED"
)

// PaymentMethod is how a charge was settled.
type PaymentMethod string

const (
	PaymentCash  PaymentMethod = "CASH"
	PaymentCard  PaymentMethod = "CARD"
	PaymentPix   PaymentMethod = "PIX"
	PaymentOther PaymentMethod = "OTHER"
)

// SaleItem is one line of a sale.
type SaleItem struct {
	ProductID   string          `json:"productID" validate:"required"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity" validate:"gt=0"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// Sale is a point-of-sale ticket. Completed sales have decremented stock.
type Sale struct {
	Document
	ClientID      string          `json:"clientID,omitempty"`
	EmployeeID    string          `json:"employeeID,omitempty"`
	Items         []SaleItem      `json:"items" validate:"required,min=1,dive"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"paymentMethod" validate:"required,oneof=CASH CARD PIX OTHER"`
	Status        SaleStatus      `json:"status" validate:"omitempty,oneof=COMPLETED CANCELLED"`
	SoldAt        time.Time       `json:"soldAt"`
	Notes         string          `json:"notes" validate:"omitempty,max=2000"`
}

// QuantitiesByProduct sums item quantities per product.
func (s *Sale) QuantitiesByProduct() map[string]int {
	out := make(map[string]int, len(s.Items))
	for _, it := range s.Items {
		out[it.ProductID] += it.Quantity
	}
	return out
}

// StockPlan maps product ids to signed stock deltas that must be applied atomically.
type StockPlan map[string]int

// Empty reports whether the plan changes nothing.
func (p StockPlan) Empty() bool {
	for _, d := range p {
		if d != 0 {
			return false
		}
	}
	return true
}

// ProductIDs returns the ids touched by the plan.
func (p StockPlan) ProductIDs() []string {
	ids := make([]string, 0, len(p))
	for id := range p {
		ids = append(ids, id)
	}
	return ids
}

// InventoryCountStatus is the state of a stock-taking.
type InventoryCountStatus string

const (
	InventoryDraft   InventoryCountStatus = "DRAFT"
	InventoryApplied InventoryCountStatus = "APPLIED"
)

// InventoryCountLine is the counted quantity of one product.
type InventoryCountLine struct {
	ProductID        string `json:"productID" validate:"required"`
	ProductName      string `json:"productName"`
	ExpectedQuantity int    `json:"expectedQuantity"`
	CountedQuantity  int    `json:"countedQuantity" validate:"gte=0"`
	Difference       int    `json:"difference"`
}

// InventoryCount is a physical stock count that, once applied, overwrites product stock levels.
type InventoryCount struct {
	Document
	Lines     []InventoryCountLine `json:"lines" validate:"required,min=1,dive"`
	Status    InventoryCountStatus `json:"status" validate:"omitempty,oneof=DRAFT APPLIED"`
	CountedAt time.Time            `json:"countedAt"`
	AppliedAt *time.Time           `json:"appliedAt,omitempty"`
	Notes     string               `json:"notes" validate:"omitempty,max=2000"`
}

// Levels returns the counted quantity per product.
func (c *InventoryCount) Levels() map[string]int {
	out := make(map[string]int, len(c.Lines))
	for _, l := range c.Lines {
		out[l.ProductID] = l.CountedQuantity
	}
	return out
}
