package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/salon_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/salon_management_app/internal/core/ports/services"
	"github.com/SscSPs/salon_management_app/internal/core/rules"
	"github.com/SscSPs/salon_management_app/internal/dto"
	"github.com/google/uuid"
)

type employeeService struct {
	*CrudService[domain.Employee, *domain.Employee]
	services portsrepo.DocumentReader[domain.Service]
	accounts portssvc.UserAccountSvc
}

// NewEmployeeService creates the employee profile service.
func NewEmployeeService(repos portsrepo.RepositoryProvider, accounts portssvc.UserAccountSvc, options ...BaseOption) portssvc.EmployeeSvcFacade {
	base := newBaseService(options...)
	return &employeeService{
		CrudService: NewCrudService[domain.Employee](repos.EmployeeRepo, rules.NewEmployeeRules(repos, base.Now), domain.CollectionEmployees,
			CrudPolicy{Read: domain.RoleClient, Write: domain.RoleAdmin, Delete: domain.RoleAdmin}, options...),
		services: repos.ServiceRepo,
		accounts: accounts,
	}
}

var _ portssvc.EmployeeSvcFacade = (*employeeService)(nil)

// ListEmployees lists employees. Filtering by service happens in memory because an empty
// service list means the employee offers everything.
func (s *employeeService) ListEmployees(ctx context.Context, establishmentID, requestingUserID string, params dto.ListEmployeesParams) ([]domain.Employee, string, error) {
	q := portsrepo.Query{OrderBy: "name"}
	if params.ActiveOnly {
		q = q.Where("isActive", portsrepo.OpEqual, true)
	}
	if params.ServiceID == "" {
		return s.List(ctx, establishmentID, requestingUserID, params.ListParams, q)
	}

	if err := s.AuthorizeUser(ctx, requestingUserID, establishmentID, domain.RoleClient); err != nil {
		return nil, "", err
	}
	offering, err := s.offering(ctx, establishmentID, params.ServiceID, q)
	if err != nil {
		return nil, "", err
	}
	return pageSlice(offering, domain.CollectionEmployees, params.ListParams)
}

func (s *employeeService) GetEmployee(ctx context.Context, establishmentID, employeeID, requestingUserID string) (*domain.Employee, error) {
	return s.Get(ctx, establishmentID, employeeID, requestingUserID)
}

// ListEmployeesByService lists the active employees able to perform a service.
func (s *employeeService) ListEmployeesByService(ctx context.Context, establishmentID, serviceID, requestingUserID string) ([]domain.Employee, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, establishmentID, domain.RoleClient); err != nil {
		return nil, err
	}
	svc, err := s.services.FindByID(ctx, serviceID)
	if err != nil || svc.EstablishmentID != establishmentID {
		return nil, notFoundOr(err, "service "+serviceID+" not found")
	}
	return s.offering(ctx, establishmentID, serviceID, portsrepo.Query{OrderBy: "name"}.Where("isActive", portsrepo.OpEqual, true))
}

func (s *employeeService) offering(ctx context.Context, establishmentID, serviceID string, q portsrepo.Query) ([]domain.Employee, error) {
	q.EstablishmentID = establishmentID
	all, err := s.Repo().Find(ctx, q)
	if err != nil {
		s.LogError(ctx, err, "Failed to list employees", slog.String("establishment_id", establishmentID))
		return nil, err
	}
	out := make([]domain.Employee, 0, len(all))
	for i := range all {
		if all[i].Offers(serviceID) {
			out = append(out, all[i])
		}
	}
	return out, nil
}

// CreateEmployee creates the profile and, when a password is given, its login account.
func (s *employeeService) CreateEmployee(ctx context.Context, establishmentID string, req dto.CreateEmployeeRequest, requestingUserID string) (*domain.Employee, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, establishmentID, domain.RoleAdmin); err != nil {
		return nil, err
	}
	employee := req.ToDomain()
	employee.ID = uuid.NewString()
	if req.Password != "" {
		employee.UserID = uuid.NewString()
	}
	if _, err := s.Insert(ctx, establishmentID, requestingUserID, &employee); err != nil {
		return nil, err
	}
	if req.Password == "" {
		return &employee, nil
	}

	login := &domain.User{
		Document:  domain.Document{ID: employee.UserID, EstablishmentID: establishmentID},
		Email:     employee.Email,
		Name:      employee.Name,
		Role:      domain.RoleEmployee,
		ProfileID: employee.ID,
		IsActive:  true,
	}
	if _, err := s.accounts.CreateStaffAccount(ctx, login, req.Password, requestingUserID); err != nil {
		if delErr := s.Repo().Delete(ctx, employee.ID); delErr != nil {
			s.LogError(ctx, delErr, "Failed to roll back employee profile", slog.String("employee_id", employee.ID))
		}
		return nil, err
	}
	return &employee, nil
}

func (s *employeeService) UpdateEmployee(ctx context.Context, establishmentID, employeeID string, req dto.UpdateEmployeeRequest, requestingUserID string) (*domain.Employee, error) {
	return s.Update(ctx, establishmentID, employeeID, requestingUserID, func(e *domain.Employee) error {
		req.Apply(e)
		return nil
	})
}

// DeleteEmployee removes the profile and its login account.
func (s *employeeService) DeleteEmployee(ctx context.Context, establishmentID, employeeID, requestingUserID string) error {
	if err := s.AuthorizeUser(ctx, requestingUserID, establishmentID, domain.RoleAdmin); err != nil {
		return err
	}
	employee, err := s.Load(ctx, establishmentID, employeeID)
	if err != nil {
		return err
	}
	if err := s.Remove(ctx, establishmentID, employeeID); err != nil {
		return err
	}
	return removeLogin(ctx, &s.BaseService, s.accounts, employee.UserID)
}
