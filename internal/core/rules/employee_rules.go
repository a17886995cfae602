package rules

import (
	"context"
	"fmt"
	"strings"

	"github.com/SscSPs/salon_management_app/internal/apperrors"
	"github.com/SscSPs/salon_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
	"github.com/SscSPs/salon_management_app/internal/utils/commission"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// EmployeeRules guards professional profiles.
type EmployeeRules struct {
	deps
}

func NewEmployeeRules(repos portsrepo.RepositoryProvider, now domain.Clock) *EmployeeRules {
	return &EmployeeRules{deps: newDeps(repos, now)}
}

func (r *EmployeeRules) PrepareForCreate(ctx context.Context, e *domain.Employee) error {
	if e.Role == "" {
		e.Role = domain.RoleEmployee
	}
	if e.Role != domain.RoleEmployee {
		return apperrors.Validationf("employee profiles must have role %s", domain.RoleEmployee)
	}
	if err := r.check(ctx, e); err != nil {
		return err
	}
	if e.IsActive {
		return r.checkQuota(ctx, e.EstablishmentID, r.repos.EmployeeRepo.Count, activeOnly(),
			func(l domain.PlanLimits) int { return l.MaxEmployees }, "employees")
	}
	return nil
}

func (r *EmployeeRules) PrepareForUpdate(ctx context.Context, current, next *domain.Employee) error {
	if next.Role == "" {
		next.Role = current.Role
	}
	if next.Role != current.Role {
		return fmt.Errorf("%w: role of employee %s is %s", apperrors.ErrImmutableField, current.ID, current.Role)
	}
	next.UserID = current.UserID
	if err := r.check(ctx, next); err != nil {
		return err
	}
	if reactivated(current.IsActive, next.IsActive) {
		return r.checkQuota(ctx, next.EstablishmentID, r.repos.EmployeeRepo.Count, activeOnly(),
			func(l domain.PlanLimits) int { return l.MaxEmployees }, "employees")
	}
	return nil
}

func (r *EmployeeRules) PrepareForDelete(ctx context.Context, e *domain.Employee) error {
	busy, err := r.hasUpcomingAppointments(ctx, e.EstablishmentID, "employeeID", e.ID)
	if err != nil {
		return err
	}
	if busy {
		return fmt.Errorf("%w: employee %s has upcoming appointments", apperrors.ErrInUse, e.ID)
	}
	return nil
}

func (r *EmployeeRules) check(ctx context.Context, e *domain.Employee) error {
	e.Name = strings.TrimSpace(e.Name)
	e.Email = normalizeEmail(e.Email)
	e.Phone = NormalizePhone(e.Phone)
	e.CommissionRule = strings.TrimSpace(e.CommissionRule)
	if err := validateStruct(e); err != nil {
		return err
	}
	if e.CommissionRate.IsNegative() || e.CommissionRate.GreaterThan(hundred) {
		return apperrors.Validationf("commission rate must be between 0 and 100")
	}
	if e.CommissionRule != "" {
		if err := commission.Default().Compile(e.CommissionRule); err != nil {
			return apperrors.Validationf("commission rule: %s", err.Error())
		}
	}

	ids, err := r.services(ctx, e.EstablishmentID, e.ServiceIDs)
	if err != nil {
		return err
	}
	e.ServiceIDs = ids

	q := portsrepo.Query{EstablishmentID: e.EstablishmentID}.Where("email", portsrepo.OpEqual, e.Email)
	return ensureUnique[domain.Employee](ctx, r.repos.EmployeeRepo, q, e.ID, "an employee with email "+e.Email+" already exists")
}

// services dedupes ids and checks each one is a service of the establishment.
func (r *EmployeeRules) services(ctx context.Context, establishmentID string, ids []string) ([]string, error) {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if _, err := loadInTenant[domain.Service](ctx, r.repos.ServiceRepo, establishmentID, id, "service"); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
