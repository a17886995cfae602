package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/salon_management_app/internal/apperrors"
	"github.com/SscSPs/salon_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/salon_management_app/internal/core/ports/services"
	"github.com/SscSPs/salon_management_app/internal/dto"
	"github.com/SscSPs/salon_management_app/internal/utils/commission"
	"github.com/shopspring/decimal"
)

// Commission sources reported on each line.
const (
	CommissionSourceRule     = "rule"
	CommissionSourceService  = "service"
	CommissionSourceEmployee = "employee"
)

type commissionService struct {
	BaseService
	repos  portsrepo.RepositoryProvider
	engine *commission.Engine
}

// NewCommissionService creates the commission calculator.
func NewCommissionService(repos portsrepo.RepositoryProvider, options ...BaseOption) portssvc.CommissionSvcFacade {
	return &commissionService{
		BaseService: newBaseService(options...),
		repos:       repos,
		engine:      commission.Default(),
	}
}

var _ portssvc.CommissionSvcFacade = (*commissionService)(nil)

// EmployeeCommission computes one employee's statement. Employees may only read their own.
func (s *commissionService) EmployeeCommission(ctx context.Context, establishmentID, requestingUserID string, params dto.CommissionParams) (*domain.CommissionSummary, error) {
	m, err := s.Membership(ctx, requestingUserID, establishmentID, domain.RoleEmployee)
	if err != nil {
		return nil, err
	}
	if m.Role == domain.RoleEmployee && m.ProfileID != params.EmployeeID {
		return nil, fmt.Errorf("%w: employees can only read their own commissions", apperrors.ErrForbidden)
	}
	est, err := s.repos.EstablishmentRepo.FindByID(ctx, establishmentID)
	if err != nil {
		return nil, err
	}
	from, to, err := periodBounds(est, params.PeriodParams)
	if err != nil {
		return nil, err
	}
	employee, err := s.repos.EmployeeRepo.FindByID(ctx, params.EmployeeID)
	if err != nil || employee.EstablishmentID != establishmentID {
		return nil, notFoundOr(err, "employee "+params.EmployeeID+" not found")
	}
	return s.summarize(ctx, employee, from, to, map[string]*domain.Service{})
}

// EstablishmentCommissions computes the statement of every employee.
func (s *commissionService) EstablishmentCommissions(ctx context.Context, establishmentID, requestingUserID string, params dto.PeriodParams) ([]domain.CommissionSummary, error) {
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
	employees, err := s.repos.EmployeeRepo.Find(ctx, portsrepo.Query{EstablishmentID: establishmentID, OrderBy: "name"})
	if err != nil {
		s.LogError(ctx, err, "Failed to list employees", slog.String("establishment_id", establishmentID))
		return nil, err
	}

	services := map[string]*domain.Service{}
	out := make([]domain.CommissionSummary, 0, len(employees))
	for i := range employees {
		summary, err := s.summarize(ctx, &employees[i], from, to, services)
		if err != nil {
			return nil, err
		}
		out = append(out, *summary)
	}
	return out, nil
}

func (s *commissionService) summarize(ctx context.Context, employee *domain.Employee, from, to time.Time, services map[string]*domain.Service) (*domain.CommissionSummary, error) {
	q := portsrepo.Query{EstablishmentID: employee.EstablishmentID, OrderBy: "startTime"}.
		Where("employeeID", portsrepo.OpEqual, employee.ID).
		Where("status", portsrepo.OpEqual, domain.AppointmentCompleted).
		Where("startTime", portsrepo.OpGreaterEqual, from).
		Where("startTime", portsrepo.OpLess, to)
	appointments, err := s.repos.AppointmentRepo.Find(ctx, q)
	if err != nil {
		s.LogError(ctx, err, "Failed to list completed appointments", slog.String("employee_id", employee.ID))
		return nil, err
	}

	summary := &domain.CommissionSummary{
		EmployeeID:   employee.ID,
		EmployeeName: employee.Name,
		From:         from,
		To:           to,
		Revenue:      decimal.Zero,
		Total:        decimal.Zero,
		Lines:        make([]domain.CommissionLine, 0, len(appointments)),
	}
	for i := range appointments {
		a := &appointments[i]
		svc, err := s.service(ctx, a.ServiceID, services)
		if err != nil {
			return nil, err
		}
		amount, source := s.commissionFor(ctx, employee, a, svc)
		summary.Lines = append(summary.Lines, domain.CommissionLine{
			AppointmentID: a.ID,
			ServiceID:     a.ServiceID,
			ServiceName:   a.ServiceName,
			StartTime:     a.StartTime,
			Price:         a.Price,
			Commission:    amount,
			Source:        source,
		})
		summary.Appointments++
		summary.Revenue = summary.Revenue.Add(a.Price)
		summary.Total = summary.Total.Add(amount)
	}
	return summary, nil
}

// commissionFor applies, in order, the employee's formula, the service override and the
// employee rate. A formula that fails at run time falls through to the next source.
func (s *commissionService) commissionFor(ctx context.Context, employee *domain.Employee, a *domain.Appointment, svc *domain.Service) (decimal.Decimal, string) {
	if employee.CommissionRule != "" {
		in := commission.Input{
			Price:           a.Price,
			Rate:            employee.CommissionRate,
			ServiceID:       a.ServiceID,
			ServiceName:     a.ServiceName,
			DurationMinutes: int(a.EndTime.Sub(a.StartTime) / time.Minute),
		}
		amount, err := s.engine.Evaluate(employee.CommissionRule, in)
		if err == nil {
			return amount, CommissionSourceRule
		}
		s.LogError(ctx, err, "Commission rule failed, falling back",
			slog.String("employee_id", employee.ID),
			slog.String("appointment_id", a.ID))
	}
	if svc != nil && svc.CommissionOverride != nil {
		return commission.Percent(a.Price, *svc.CommissionOverride), CommissionSourceService
	}
	return commission.Percent(a.Price, employee.CommissionRate), CommissionSourceEmployee
}

// service loads a catalogue service once per computation. Deleted services yield nil.
func (s *commissionService) service(ctx context.Context, id string, cache map[string]*domain.Service) (*domain.Service, error) {
	if svc, ok := cache[id]; ok {
		return svc, nil
	}
	svc, err := s.repos.ServiceRepo.FindByID(ctx, id)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	cache[id] = svc
	return svc, nil
}

// periodBounds turns inclusive local calendar days into a UTC [from, to) range.
func periodBounds(est *domain.Establishment, p dto.PeriodParams) (time.Time, time.Time, error) {
	loc := est.Location()
	from, err := time.ParseInLocation("2006-01-02", p.From, loc)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.NewValidationFailedError("from must be YYYY-MM-DD")
	}
	last, err := time.ParseInLocation("2006-01-02", p.To, loc)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.NewValidationFailedError("to must be YYYY-MM-DD")
	}
	if last.Before(from) {
		return time.Time{}, time.Time{}, apperrors.NewValidationFailedError("from must not be after to")
	}
	return from.UTC(), last.AddDate(0, 0, 1).UTC(), nil
}
