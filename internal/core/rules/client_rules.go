package rules

import (
	"context"
	"fmt"
	"strings"

	"github.com/SscSPs/salon_management_app/internal/apperrors"
	"github.com/SscSPs/salon_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
)

// ClientRules guards customer records.
type ClientRules struct {
	deps
}

func NewClientRules(repos portsrepo.RepositoryProvider, now domain.Clock) *ClientRules {
	return &ClientRules{deps: newDeps(repos, now)}
}

func (r *ClientRules) PrepareForCreate(ctx context.Context, c *domain.Client) error {
	if err := r.check(ctx, c); err != nil {
		return err
	}
	if c.IsActive {
		return r.checkQuota(ctx, c.EstablishmentID, r.repos.ClientRepo.Count, activeOnly(),
			func(l domain.PlanLimits) int { return l.MaxClients }, "clients")
	}
	return nil
}

func (r *ClientRules) PrepareForUpdate(ctx context.Context, current, next *domain.Client) error {
	if current.UserID != "" {
		next.UserID = current.UserID
	}
	if err := r.check(ctx, next); err != nil {
		return err
	}
	if reactivated(current.IsActive, next.IsActive) {
		return r.checkQuota(ctx, next.EstablishmentID, r.repos.ClientRepo.Count, activeOnly(),
			func(l domain.PlanLimits) int { return l.MaxClients }, "clients")
	}
	return nil
}

func (r *ClientRules) PrepareForDelete(ctx context.Context, c *domain.Client) error {
	busy, err := r.hasUpcomingAppointments(ctx, c.EstablishmentID, "clientID", c.ID)
	if err != nil {
		return err
	}
	if busy {
		return fmt.Errorf("%w: client %s has upcoming appointments", apperrors.ErrInUse, c.ID)
	}
	return nil
}

func (r *ClientRules) check(ctx context.Context, c *domain.Client) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = normalizeEmail(c.Email)
	c.Phone = NormalizePhone(c.Phone)
	if err := validateStruct(c); err != nil {
		return err
	}
	if c.BirthDate != nil && c.BirthDate.After(r.now()) {
		return apperrors.Validationf("birth date cannot be in the future")
	}

	q := portsrepo.Query{EstablishmentID: c.EstablishmentID}.Where("phone", portsrepo.OpEqual, c.Phone)
	if err := ensureUnique[domain.Client](ctx, r.repos.ClientRepo, q, c.ID, "a client with phone "+c.Phone+" already exists"); err != nil {
		return err
	}
	if c.Email != "" {
		q = portsrepo.Query{EstablishmentID: c.EstablishmentID}.Where("email", portsrepo.OpEqual, c.Email)
		if err := ensureUnique[domain.Client](ctx, r.repos.ClientRepo, q, c.ID, "a client with email "+c.Email+" already exists"); err != nil {
			return err
		}
	}
	return nil
}
