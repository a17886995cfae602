package services

import (
	"context"

	"github.com/SscSPs/salon_management_app/internal/core/domain"
	"github.com/SscSPs/salon_management_app/internal/dto"
)

// CommissionSvcFacade computes employee commissions.
type CommissionSvcFacade interface {
	// EmployeeCommission computes one employee's commission statement. Employees may read their own.
	EmployeeCommission(ctx context.Context, establishmentID, requestingUserID string, params dto.CommissionParams) (*domain.CommissionSummary, error)

	// EstablishmentCommissions computes the statements of every employee. Admins only.
	EstablishmentCommissions(ctx context.Context, establishmentID, requestingUserID string, params dto.PeriodParams) ([]domain.CommissionSummary, error)
}

// ReportingSvcFacade builds management reports.
type ReportingSvcFacade interface {
	PeriodReport(ctx context.Context, establishmentID, requestingUserID string, params dto.PeriodParams) (*domain.PeriodReport, error)
	LowStockReport(ctx context.Context, establishmentID, requestingUserID string) ([]domain.Product, error)
}
