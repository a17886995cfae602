package rules

import (
	"context"
	"fmt"
	"strings"

	"github.com/SscSPs/salon_management_app/internal/apperrors"
	"github.com/SscSPs/salon_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
)

// AdminRules guards administrator profiles.
type AdminRules struct {
	deps
}

func NewAdminRules(repos portsrepo.RepositoryProvider, now domain.Clock) *AdminRules {
	return &AdminRules{deps: newDeps(repos, now)}
}

func (r *AdminRules) PrepareForCreate(ctx context.Context, a *domain.Admin) error {
	if a.Role == "" {
		a.Role = domain.RoleAdmin
	}
	if a.Role != domain.RoleAdmin {
		return apperrors.Validationf("admin profiles must have role %s", domain.RoleAdmin)
	}
	if err := r.check(ctx, a); err != nil {
		return err
	}
	if a.IsActive {
		return r.checkQuota(ctx, a.EstablishmentID, r.repos.AdminRepo.Count, activeOnly(),
			func(l domain.PlanLimits) int { return l.MaxAdmins }, "admins")
	}
	return nil
}

func (r *AdminRules) PrepareForUpdate(ctx context.Context, current, next *domain.Admin) error {
	if next.Role == "" {
		next.Role = current.Role
	}
	if next.Role != current.Role {
		return fmt.Errorf("%w: role of admin %s is %s", apperrors.ErrImmutableField, current.ID, current.Role)
	}
	next.UserID = current.UserID
	if err := r.check(ctx, next); err != nil {
		return err
	}
	if reactivated(current.IsActive, next.IsActive) {
		if err := r.checkQuota(ctx, next.EstablishmentID, r.repos.AdminRepo.Count, activeOnly(),
			func(l domain.PlanLimits) int { return l.MaxAdmins }, "admins"); err != nil {
			return err
		}
	}
	if current.IsActive && !next.IsActive {
		return r.keepOneAdmin(ctx, current)
	}
	return nil
}

func (r *AdminRules) PrepareForDelete(ctx context.Context, a *domain.Admin) error {
	if !a.IsActive {
		return nil
	}
	return r.keepOneAdmin(ctx, a)
}

func (r *AdminRules) check(ctx context.Context, a *domain.Admin) error {
	a.Name = strings.TrimSpace(a.Name)
	a.Email = normalizeEmail(a.Email)
	a.Phone = NormalizePhone(a.Phone)
	if err := validateStruct(a); err != nil {
		return err
	}
	q := portsrepo.Query{EstablishmentID: a.EstablishmentID}.Where("email", portsrepo.OpEqual, a.Email)
	return ensureUnique[domain.Admin](ctx, r.repos.AdminRepo, q, a.ID, "an admin with email "+a.Email+" already exists")
}

// keepOneAdmin refuses to remove the last active admin of an establishment.
func (r *AdminRules) keepOneAdmin(ctx context.Context, a *domain.Admin) error {
	q := activeOnly()
	q.EstablishmentID = a.EstablishmentID
	n, err := r.repos.AdminRepo.Count(ctx, q)
	if err != nil {
		return err
	}
	if n <= 1 {
		return fmt.Errorf("%w: establishment %s needs at least one active admin", apperrors.ErrInUse, a.EstablishmentID)
	}
	return nil
}
