package rules

import (
	"context"
	"fmt"
	"strings"

	"github.com/SscSPs/salon_management_app/internal/apperrors"
	"github.com/SscSPs/salon_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
)

// ServiceRules guards the service catalogue.
type ServiceRules struct {
	deps
}

func NewServiceRules(repos portsrepo.RepositoryProvider, now domain.Clock) *ServiceRules {
	return &ServiceRules{deps: newDeps(repos, now)}
}

func (r *ServiceRules) PrepareForCreate(ctx context.Context, s *domain.Service) error {
	if err := r.check(ctx, s); err != nil {
		return err
	}
	if s.IsActive {
		return r.checkQuota(ctx, s.EstablishmentID, r.repos.ServiceRepo.Count, activeOnly(),
			func(l domain.PlanLimits) int { return l.MaxServices }, "services")
	}
	return nil
}

func (r *ServiceRules) PrepareForUpdate(ctx context.Context, current, next *domain.Service) error {
	if err := r.check(ctx, next); err != nil {
		return err
	}
	if reactivated(current.IsActive, next.IsActive) {
		return r.checkQuota(ctx, next.EstablishmentID, r.repos.ServiceRepo.Count, activeOnly(),
			func(l domain.PlanLimits) int { return l.MaxServices }, "services")
	}
	return nil
}

func (r *ServiceRules) PrepareForDelete(ctx context.Context, s *domain.Service) error {
	busy, err := r.hasUpcomingAppointments(ctx, s.EstablishmentID, "serviceID", s.ID)
	if err != nil {
		return err
	}
	if busy {
		return fmt.Errorf("%w: service %s has upcoming appointments", apperrors.ErrInUse, s.ID)
	}
	return nil
}

func (r *ServiceRules) check(ctx context.Context, s *domain.Service) error {
	s.Name = strings.TrimSpace(s.Name)
	s.NormalizedName = strings.ToLower(s.Name)
	if err := validateStruct(s); err != nil {
		return err
	}
	if s.Price.IsNegative() {
		return apperrors.Validationf("price cannot be negative")
	}
	if o := s.CommissionOverride; o != nil && (o.IsNegative() || o.GreaterThan(hundred)) {
		return apperrors.Validationf("commission override must be between 0 and 100")
	}
	q := portsrepo.Query{EstablishmentID: s.EstablishmentID}.Where("normalizedName", portsrepo.OpEqual, s.NormalizedName)
	return ensureUnique[domain.Service](ctx, r.repos.ServiceRepo, q, s.ID, "a service named "+s.Name+" already exists")
}
