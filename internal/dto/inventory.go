package dto

import (
	"time"

	"github.com/SscSPs/salon_management_app/internal/core/domain"
)

// InventoryLineRequest is the counted quantity of one product.
type InventoryLineRequest struct {
	ProductID       string `json:"productID" binding:"required"`
	CountedQuantity int    `json:"countedQuantity" binding:"gte=0"`
}

func toInventoryLines(in []InventoryLineRequest) []domain.InventoryCountLine {
	lines := make([]domain.InventoryCountLine, len(in))
	for i, l := range in {
		lines[i] = domain.InventoryCountLine{ProductID: l.ProductID, CountedQuantity: l.CountedQuantity}
	}
	return lines
}

// CreateInventoryCountRequest opens a draft stock count.
type CreateInventoryCountRequest struct {
	Lines     []InventoryLineRequest `json:"lines" binding:"required,min=1,dive"`
	CountedAt *time.Time             `json:"countedAt"`
	Notes     string                 `json:"notes" binding:"omitempty,max=2000"`
}

func (r CreateInventoryCountRequest) ToDomain() domain.InventoryCount {
	c := domain.InventoryCount{Lines: toInventoryLines(r.Lines), Notes: r.Notes}
	if r.CountedAt != nil {
		c.CountedAt = *r.CountedAt
	}
	return c
}

// UpdateInventoryCountRequest edits a draft count.
type UpdateInventoryCountRequest struct {
	Lines     *[]InventoryLineRequest `json:"lines" binding:"omitempty,min=1,dive"`
	CountedAt *time.Time              `json:"countedAt"`
	Notes     *string                 `json:"notes" binding:"omitempty,max=2000"`
}

func (r UpdateInventoryCountRequest) Apply(c *domain.InventoryCount) {
	if r.Lines != nil {
		c.Lines = toInventoryLines(*r.Lines)
	}
	if r.CountedAt != nil {
		c.CountedAt = *r.CountedAt
	}
	if r.Notes != nil {
		c.Notes = *r.Notes
	}
}

// ListInventoryCountsParams filters the stock count listing.
type ListInventoryCountsParams struct {
	ListParams
	Status string `form:"status" binding:"omitempty,oneof=DRAFT APPLIED"`
}
