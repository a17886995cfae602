package rules

import (
	"context"
	"fmt"
	"strings"

	"github.com/SscSPs/salon_management_app/internal/apperrors"
	"github.com/SscSPs/salon_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
)

// UserRules guards login accounts. Emails are unique across the whole system.
type UserRules struct {
	deps
}

func NewUserRules(repos portsrepo.RepositoryProvider, now domain.Clock) *UserRules {
	return &UserRules{deps: newDeps(repos, now)}
}

func (r *UserRules) PrepareForCreate(ctx context.Context, u *domain.User) error {
	u.Email = normalizeEmail(u.Email)
	u.Name = strings.TrimSpace(u.Name)
	if err := validateStruct(u); err != nil {
		return err
	}
	if (u.Role == domain.RoleAdmin || u.Role == domain.RoleEmployee) && u.EstablishmentID == "" {
		return apperrors.Validationf("%s accounts must belong to an establishment", u.Role)
	}
	if u.EstablishmentID != "" {
		if _, err := r.establishment(ctx, u.EstablishmentID); err != nil {
			return err
		}
	}
	return r.uniqueEmail(ctx, u)
}

func (r *UserRules) PrepareForUpdate(ctx context.Context, current, next *domain.User) error {
	if next.Role == "" {
		next.Role = current.Role
	}
	if next.Role != current.Role {
		return fmt.Errorf("%w: role of user %s is %s", apperrors.ErrImmutableField, current.ID, current.Role)
	}
	if current.EstablishmentID != "" && next.EstablishmentID != current.EstablishmentID {
		return fmt.Errorf("%w: establishment of user %s", apperrors.ErrImmutableField, current.ID)
	}
	if current.GoogleSub != "" {
		next.GoogleSub = current.GoogleSub
	}

	next.Email = normalizeEmail(next.Email)
	next.Name = strings.TrimSpace(next.Name)
	if err := validateStruct(next); err != nil {
		return err
	}
	if next.Email != current.Email {
		return r.uniqueEmail(ctx, next)
	}
	return nil
}

func (r *UserRules) uniqueEmail(ctx context.Context, u *domain.User) error {
	q := portsrepo.Query{}.Where("email", portsrepo.OpEqual, u.Email)
	return ensureUnique[domain.User](ctx, r.repos.UserRepo, q, u.ID, "email "+u.Email+" is already registered")
}
