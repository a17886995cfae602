package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/salon_management_app/internal/core/domain"
)

// StockLedger performs writes that must change product stock and another document atomically.
// Every method fails with apperrors.ErrInsufficientStock without writing anything when a
// product would end up below zero.
type StockLedger interface {
	// InsertSale persists a new sale and applies the stock plan.
	InsertSale(ctx context.Context, sale *domain.Sale, plan domain.StockPlan) error

	// UpdateSale replaces a sale (optimistic on version) and applies the stock plan.
	UpdateSale(ctx context.Context, sale *domain.Sale, plan domain.StockPlan) error

	// DeleteSale removes a sale (optimistic on version) and applies the stock plan.
	DeleteSale(ctx context.Context, sale *domain.Sale, plan domain.StockPlan) error

	// ApplyInventoryCount sets every counted product's stock to its counted level and
	// saves the count (optimistic on version).
	ApplyInventoryCount(ctx context.Context, count *domain.InventoryCount, userID string, now time.Time) error
}

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	EstablishmentRepo  DocumentRepository[domain.Establishment]
	UserRepo           DocumentRepository[domain.User]
	AdminRepo          DocumentRepository[domain.Admin]
	EmployeeRepo       DocumentRepository[domain.Employee]
	ClientRepo         DocumentRepository[domain.Client]
	ServiceRepo        DocumentRepository[domain.Service]
	AppointmentRepo    DocumentRepository[domain.Appointment]
	ProductRepo        DocumentRepository[domain.Product]
	SaleRepo           DocumentRepository[domain.Sale]
	InventoryCountRepo DocumentRepository[domain.InventoryCount]
	PaymentRepo        DocumentRepository[domain.Payment]
	StockLedger        StockLedger
}
