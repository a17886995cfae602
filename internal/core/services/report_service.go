package services

import (
	"context"
	"log/slog"
	"sort"

	"github.com/SscSPs/salon_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/salon_management_app/internal/core/ports/services"
	"github.com/SscSPs/salon_management_app/internal/dto"
	"github.com/shopspring/decimal"
)

const topServicesLimit = 5

type reportingService struct {
	BaseService
	repos    portsrepo.RepositoryProvider
	products portssvc.ProductSvcFacade
}

// NewReportingService creates the management reporting service.
func NewReportingService(repos portsrepo.RepositoryProvider, products portssvc.ProductSvcFacade, options ...BaseOption) portssvc.ReportingSvcFacade {
	return &reportingService{
		BaseService: newBaseService(options...),
		repos:       repos,
		products:    products,
	}
}

var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

// PeriodReport summarises appointments, sales and payments over the requested days.
func (s *reportingService) PeriodReport(ctx context.Context, establishmentID, requestingUserID string, params dto.PeriodParams) (*domain.PeriodReport, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, establishmentID, domain.RoleAdmin); err != nil {
		return nil, err
	}
	est, err := s.repos.EstablishmentRepo.FindByID(ctx, establishmentID)
	if err != nil {
		return nil, err
	}
	from, to, err := periodBounds(est, params)
	if err != nil {
		return nil, err
	}

	report := &domain.PeriodReport{
		From:                 from,
		To:                   to,
		AppointmentsByStatus: map[domain.AppointmentStatus]int{},
		ServiceRevenue:       decimal.Zero,
		SalesRevenue:         decimal.Zero,
		PaymentsByMethod:     map[domain.PaymentMethod]decimal.Decimal{},
		PaymentsTotal:        decimal.Zero,
		TopServices:          []domain.ServiceRevenue{},
	}

	appointments, err := s.repos.AppointmentRepo.Find(ctx, portsrepo.Query{EstablishmentID: establishmentID}.
		Where("startTime", portsrepo.OpGreaterEqual, from).
		Where("startTime", portsrepo.OpLess, to))
	if err != nil {
		s.LogError(ctx, err, "Failed to load appointments for report", slog.String("establishment_id", establishmentID))
		return nil, err
	}
	byService := map[string]*domain.ServiceRevenue{}
	for _, a := range appointments {
		report.AppointmentsByStatus[a.Status]++
		if a.Status != domain.AppointmentCompleted {
			continue
		}
		report.ServiceRevenue = report.ServiceRevenue.Add(a.Price)
		row, ok := byService[a.ServiceID]
		if !ok {
			row = &domain.ServiceRevenue{ServiceID: a.ServiceID, ServiceName: a.ServiceName, Revenue: decimal.Zero}
			byService[a.ServiceID] = row
		}
		row.Appointments++
		row.Revenue = row.Revenue.Add(a.Price)
	}
	report.TopServices = topServices(byService, topServicesLimit)

	sales, err := s.repos.SaleRepo.Find(ctx, portsrepo.Query{EstablishmentID: establishmentID}.
		Where("status", portsrepo.OpEqual, domain.SaleCompleted).
		Where("soldAt", portsrepo.OpGreaterEqual, from).
		Where("soldAt", portsrepo.OpLess, to))
	if err != nil {
		s.LogError(ctx, err, "Failed to load sales for report", slog.String("establishment_id", establishmentID))
		return nil, err
	}
	for _, sale := range sales {
		report.SalesCount++
		report.SalesRevenue = report.SalesRevenue.Add(sale.Total)
	}

	payments, err := s.repos.PaymentRepo.Find(ctx, portsrepo.Query{EstablishmentID: establishmentID}.
		Where("status", portsrepo.OpEqual, domain.PaymentRecordPaid).
		Where("paidAt", portsrepo.OpGreaterEqual, from).
		Where("paidAt", portsrepo.OpLess, to))
	if err != nil {
		s.LogError(ctx, err, "Failed to load payments for report", slog.String("establishment_id", establishmentID))
		return nil, err
	}
	for _, p := range payments {
		sum, ok := report.PaymentsByMethod[p.Method]
		if !ok {
			sum = decimal.Zero
		}
		report.PaymentsByMethod[p.Method] = sum.Add(p.Amount)
		report.PaymentsTotal = report.PaymentsTotal.Add(p.Amount)
	}
	return report, nil
}

// LowStockReport lists the products that need restocking.
func (s *reportingService) LowStockReport(ctx context.Context, establishmentID, requestingUserID string) ([]domain.Product, error) {
	return s.products.ListLowStock(ctx, establishmentID, requestingUserID)
}

// topServices orders by revenue, then appointment count, then name.
func topServices(rows map[string]*domain.ServiceRevenue, limit int) []domain.ServiceRevenue {
	out := make([]domain.ServiceRevenue, 0, len(rows))
	for _, r := range rows {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
			return c > 0
		}
		if out[i].Appointments != out[j].Appointments {
			return out[i].Appointments > out[j].Appointments
		}
		if out[i].ServiceName != out[j].ServiceName {
			return out[i].ServiceName < out[j].ServiceName
		}
		return out[i].ServiceID < out[j].ServiceID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
