package services

import (
	"context"

	"github.com/SscSPs/salon_management_app/internal/core/domain"
	"github.com/SscSPs/salon_management_app/internal/dto"
)

// SaleSvcFacade manages point-of-sale tickets and their stock bookkeeping.
type SaleSvcFacade interface {
	ListSales(ctx context.Context, establishmentID, requestingUserID string, params dto.ListSalesParams) ([]domain.Sale, string, error)
	GetSale(ctx context.Context, establishmentID, saleID, requestingUserID string) (*domain.Sale, error)
	CreateSale(ctx context.Context, establishmentID string, req dto.CreateSaleRequest, requestingUserID string) (*domain.Sale, error)
	UpdateSale(ctx context.Context, establishmentID, saleID string, req dto.UpdateSaleRequest, requestingUserID string) (*domain.Sale, error)
	// CancelSale cancels a completed sale and restores its stock.
	CancelSale(ctx context.Context, establishmentID, saleID, requestingUserID string) (*domain.Sale, error)
	// DeleteSale removes a sale, restoring stock when it was completed.
	DeleteSale(ctx context.Context, establishmentID, saleID, requestingUserID string) error
}

// InventorySvcFacade manages stock counts.
type InventorySvcFacade interface {
	ListInventoryCounts(ctx context.Context, establishmentID, requestingUserID string, params dto.ListInventoryCountsParams) ([]domain.InventoryCount, string, error)
	GetInventoryCount(ctx context.Context, establishmentID, countID, requestingUserID string) (*domain.InventoryCount, error)
	CreateInventoryCount(ctx context.Context, establishmentID string, req dto.CreateInventoryCountRequest, requestingUserID string) (*domain.InventoryCount, error)
	UpdateInventoryCount(ctx context.Context, establishmentID, countID string, req dto.UpdateInventoryCountRequest, requestingUserID string) (*domain.InventoryCount, error)
	// ApplyInventoryCount sets every counted product's stock to its counted quantity.
	ApplyInventoryCount(ctx context.Context, establishmentID, countID, requestingUserID string) (*domain.InventoryCount, error)
	DeleteInventoryCount(ctx context.Context, establishmentID, countID, requestingUserID string) error
}

// PaymentSvcFacade records money received for appointments and sales.
type PaymentSvcFacade interface {
	ListPayments(ctx context.Context, establishmentID, requestingUserID string, params dto.ListPaymentsParams) ([]domain.Payment, string, error)
	GetPayment(ctx context.Context, establishmentID, paymentID, requestingUserID string) (*domain.Payment, error)
	RecordPayment(ctx context.Context, establishmentID string, req dto.RecordPaymentRequest, requestingUserID string) (*domain.Payment, error)
	RefundPayment(ctx context.Context, establishmentID, paymentID string, req dto.RefundPaymentRequest, requestingUserID string) (*domain.Payment, error)
}
