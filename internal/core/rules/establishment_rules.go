package rules

import (
	"context"
	"fmt"
	"strings"

	"github.com/SscSPs/salon_management_app/internal/apperrors"
	"github.com/SscSPs/salon_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
)

// EstablishmentRules guards the tenant document.
type EstablishmentRules struct {
	deps
}

func NewEstablishmentRules(repos portsrepo.RepositoryProvider, now domain.Clock) *EstablishmentRules {
	return &EstablishmentRules{deps: newDeps(repos, now)}
}

func (r *EstablishmentRules) PrepareForCreate(ctx context.Context, e *domain.Establishment) error {
	r.normalize(e)
	if e.Plan == "" {
		e.Plan = domain.PlanFree
	}
	if err := r.check(ctx, e); err != nil {
		return err
	}
	return nil
}

func (r *EstablishmentRules) PrepareForUpdate(ctx context.Context, current, next *domain.Establishment) error {
	r.normalize(next)
	next.OwnerUserID = current.OwnerUserID
	if next.Plan == "" {
		next.Plan = current.Plan
	}
	if err := r.check(ctx, next); err != nil {
		return err
	}

	if next.Plan != current.Plan {
		limits, err := domain.LimitsFor(next.Plan)
		if err != nil {
			return apperrors.Validationf("%s", err.Error())
		}
		usage, err := MeasureUsage(ctx, r.repos, current, r.now)
		if err != nil {
			return err
		}
		if ok, over := usage.FitsWithin(limits); !ok {
			return fmt.Errorf("%w: current %s exceed the %s plan", apperrors.ErrQuotaExceeded, over, next.Plan)
		}
	}
	return nil
}

func (r *EstablishmentRules) normalize(e *domain.Establishment) {
	e.Name = strings.TrimSpace(e.Name)
	e.Email = normalizeEmail(e.Email)
	e.TaxDocument = strings.TrimSpace(e.TaxDocument)
	e.Phone = NormalizePhone(e.Phone)
}

func (r *EstablishmentRules) check(ctx context.Context, e *domain.Establishment) error {
	if err := validateStruct(e); err != nil {
		return err
	}
	if _, err := domain.LimitsFor(e.Plan); err != nil {
		return apperrors.Validationf("%s", err.Error())
	}
	if (e.OpeningTime == "") != (e.ClosingTime == "") {
		return apperrors.Validationf("opening and closing time must be set together")
	}
	// HH:MM strings order lexically.
	if e.OpeningTime != "" && e.OpeningTime >= e.ClosingTime {
		return apperrors.Validationf("opening time %s must be before closing time %s", e.OpeningTime, e.ClosingTime)
	}
	if e.TaxDocument != "" {
		q := portsrepo.Query{}.Where("taxDocument", portsrepo.OpEqual, e.TaxDocument)
		if err := ensureUnique[domain.Establishment](ctx, r.repos.EstablishmentRepo, q, e.ID, "an establishment with this document already exists"); err != nil {
			return err
		}
	}
	return nil
}
