// Package rules holds the business rules every write passes through before it reaches
// the document store. A rules type mutates the incoming entity into its canonical form and
// returns an apperrors-wrapped error when an invariant would be violated.
package rules

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/salon_management_app/internal/apperrors"
	"github.com/SscSPs/salon_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
	clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

// RegisterValidations adds the custom tags used by domain structs to v.
func RegisterValidations(v *validator.Validate) error {
	return v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return clockPattern.MatchString(fl.Field().String())
	})
}

// Validator returns the shared struct validator.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		if err := RegisterValidations(validate); err != nil {
			panic(err)
		}
	})
	return validate
}

func validateStruct(v any) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
		}
		return apperrors.Validationf("%s", strings.Join(msgs, "; "))
	}
	return apperrors.Validationf("%s", err.Error())
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhone keeps digits and a leading plus sign.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	var sb strings.Builder
	for i, r := range phone {
		if (r >= '0' && r <= '9') || (r == '+' && i == 0) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// deps is shared by every rules type.
type deps struct {
	repos portsrepo.RepositoryProvider
	now   domain.Clock
}

func newDeps(repos portsrepo.RepositoryProvider, now domain.Clock) deps {
	if now == nil {
		now = domain.SystemClock
	}
	return deps{repos: repos, now: now}
}

func (d deps) establishment(ctx context.Context, id string) (*domain.Establishment, error) {
	est, err := d.repos.EstablishmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("establishment %s: %w", id, err)
	}
	return est, nil
}

type countFunc func(ctx context.Context, q portsrepo.Query) (int, error)

// checkQuota fails with ErrQuotaExceeded when q already counts as many documents as the plan allows.
func (d deps) checkQuota(ctx context.Context, establishmentID string, count countFunc, q portsrepo.Query, pick func(domain.PlanLimits) int, what string) error {
	est, err := d.establishment(ctx, establishmentID)
	if err != nil {
		return err
	}
	limits, err := domain.LimitsFor(est.Plan)
	if err != nil {
		return apperrors.Validationf("%s", err.Error())
	}
	limit := pick(limits)
	if limit == domain.Unlimited {
		return nil
	}
	q.EstablishmentID = establishmentID
	n, err := count(ctx, q)
	if err != nil {
		return err
	}
	if !domain.Allows(limit, n) {
		return fmt.Errorf("%w: the %s plan allows %d %s", apperrors.ErrQuotaExceeded, est.Plan, limit, what)
	}
	return nil
}

// ensureUnique fails with ErrDuplicate when a document other than selfID matches q.
func ensureUnique[T any, P domain.EntityPtr[T]](ctx context.Context, repo portsrepo.DocumentReader[T], q portsrepo.Query, selfID, what string) error {
	q.Limit = 2
	docs, err := repo.Find(ctx, q)
	if err != nil {
		return err
	}
	for i := range docs {
		if P(&docs[i]).DocumentID() != selfID {
			return fmt.Errorf("%w: %s", apperrors.ErrDuplicate, what)
		}
	}
	return nil
}

// loadInTenant fetches id and hides documents of other establishments as not found.
func loadInTenant[T any, P domain.EntityPtr[T]](ctx context.Context, repo portsrepo.DocumentReader[T], establishmentID, id, what string) (*T, error) {
	if id == "" {
		return nil, apperrors.Validationf("%s is required", what)
	}
	doc, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(what + " " + id + " not found")
		}
		return nil, err
	}
	if P(doc).TenantID() != establishmentID {
		return nil, apperrors.NewNotFoundError(what + " " + id + " not found")
	}
	return doc, nil
}

// hasUpcomingAppointments reports whether an active appointment referencing id via field ends after now.
func (d deps) hasUpcomingAppointments(ctx context.Context, establishmentID, field, id string) (bool, error) {
	q := portsrepo.Query{EstablishmentID: establishmentID}.
		Where(field, portsrepo.OpEqual, id).
		Where("status", portsrepo.OpIn, domain.ActiveAppointmentStatuses).
		Where("endTime", portsrepo.OpGreater, d.now())
	n, err := d.repos.AppointmentRepo.Count(ctx, q)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func activeOnly() portsrepo.Query {
	return portsrepo.Query{}.Where("isActive", portsrepo.OpEqual, true)
}

// reactivated reports whether an update turns an inactive document active again,
// which consumes quota like a create.
func reactivated(currentActive, nextActive bool) bool {
	return !currentActive && nextActive
}

func monthBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	from := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	return from.UTC(), from.AddDate(0, 1, 0).UTC()
}
