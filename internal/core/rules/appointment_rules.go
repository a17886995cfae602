package rules

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/salon_management_app/internal/apperrors"
	"github.com/SscSPs/salon_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// AppointmentRules guards bookings: tenant references, opening hours, the per-employee
// conflict check, status transitions and the monthly quota.
type AppointmentRules struct {
	deps
}

func NewAppointmentRules(repos portsrepo.RepositoryProvider, now domain.Clock) *AppointmentRules {
	return &AppointmentRules{deps: newDeps(repos, now)}
}

func (r *AppointmentRules) PrepareForCreate(ctx context.Context, a *domain.Appointment) error {
	if a.Status == "" {
		a.Status = domain.AppointmentScheduled
	}
	if a.Status != domain.AppointmentScheduled && a.Status != domain.AppointmentConfirmed {
		return apperrors.Validationf("new appointments must be %s or %s", domain.AppointmentScheduled, domain.AppointmentConfirmed)
	}
	a.Notes = strings.TrimSpace(a.Notes)
	a.CancelReason = ""
	if err := validateStruct(a); err != nil {
		return err
	}

	client, err := loadInTenant[domain.Client](ctx, r.repos.ClientRepo, a.EstablishmentID, a.ClientID, "client")
	if err != nil {
		return err
	}
	if !client.IsActive {
		return apperrors.Validationf("client %s is inactive", client.ID)
	}
	svc, err := r.bookable(ctx, a)
	if err != nil {
		return err
	}

	a.ServiceName = svc.Name
	if a.Price.IsZero() {
		a.Price = svc.Price
	}
	if a.Price.IsNegative() {
		return apperrors.Validationf("price cannot be negative")
	}
	a.PaidAmount = decimal.Zero
	a.PaymentStatus = domain.PaymentUnpaid

	if a.StartTime.Before(r.now()) {
		return apperrors.Validationf("appointments cannot start in the past")
	}
	if err := r.checkSchedule(ctx, a); err != nil {
		return err
	}

	est, err := r.establishment(ctx, a.EstablishmentID)
	if err != nil {
		return err
	}
	from, to := monthBounds(a.StartTime, est.Location())
	return r.checkQuota(ctx, a.EstablishmentID, r.repos.AppointmentRepo.Count, monthlyAppointments(a.EstablishmentID, from, to),
		func(l domain.PlanLimits) int { return l.MaxAppointmentsPerMonth }, "appointments per month")
}

func (r *AppointmentRules) PrepareForUpdate(ctx context.Context, current, next *domain.Appointment) error {
	if current.Status.Terminal() {
		return fmt.Errorf("%w: appointment %s is %s", apperrors.ErrImmutableField, current.ID, current.Status)
	}
	if next.Status == "" {
		next.Status = current.Status
	}
	if !current.Status.CanTransitionTo(next.Status) {
		return apperrors.Validationf("appointment cannot move from %s to %s", current.Status, next.Status)
	}
	if next.ClientID == "" {
		next.ClientID = current.ClientID
	}
	if next.ClientID != current.ClientID {
		return fmt.Errorf("%w: client of appointment %s", apperrors.ErrImmutableField, current.ID)
	}
	next.PaidAmount = current.PaidAmount
	next.PaymentStatus = current.PaymentStatus
	next.Notes = strings.TrimSpace(next.Notes)
	if next.Status != domain.AppointmentCancelled {
		next.CancelReason = current.CancelReason
	}
	if err := validateStruct(next); err != nil {
		return err
	}

	now := r.now()
	if next.Status != current.Status && (next.Status == domain.AppointmentCompleted || next.Status == domain.AppointmentNoShow) &&
		now.Before(next.StartTime) {
		return apperrors.Validationf("appointment cannot be %s before it starts", next.Status)
	}

	next.StartTime = next.StartTime.UTC().Truncate(time.Second)
	if next.EndTime.IsZero() && next.StartTime.Equal(current.StartTime) && next.ServiceID == current.ServiceID {
		next.EndTime = current.EndTime
	}
	rescheduled := !next.StartTime.Equal(current.StartTime) || !next.EndTime.Equal(current.EndTime) ||
		next.EmployeeID != current.EmployeeID || next.ServiceID != current.ServiceID

	if !rescheduled {
		next.ServiceName = current.ServiceName
	} else {
		if current.StartTime.Before(now) {
			return fmt.Errorf("%w: appointment %s already started and cannot be rescheduled", apperrors.ErrImmutableField, current.ID)
		}
		if next.StartTime.Before(now) {
			return apperrors.Validationf("appointments cannot start in the past")
		}
		svc, err := r.bookable(ctx, next)
		if err != nil {
			return err
		}
		next.ServiceName = svc.Name
		if next.ServiceID != current.ServiceID && next.Price.IsZero() {
			next.Price = svc.Price
		}
		if next.Status.Blocking() {
			if err := r.checkSchedule(ctx, next); err != nil {
				return err
			}
		}
	}

	if next.Price.IsNegative() {
		return apperrors.Validationf("price cannot be negative")
	}
	if next.Price.LessThan(next.PaidAmount) {
		return apperrors.Validationf("price cannot be lower than the %s already paid", next.PaidAmount.StringFixed(2))
	}
	next.ApplyPayment(decimal.Zero)
	return nil
}

// PrepareForDelete refuses to drop an appointment that already received money; it must be
// cancelled and refunded instead.
func (r *AppointmentRules) PrepareForDelete(ctx context.Context, a *domain.Appointment) error {
	if a.PaidAmount.IsPositive() {
		return fmt.Errorf("%w: appointment %s has %s paid", apperrors.ErrInUse, a.ID, a.PaidAmount.StringFixed(2))
	}
	return nil
}

// bookable checks the employee and service of a and derives the end time.
func (r *AppointmentRules) bookable(ctx context.Context, a *domain.Appointment) (*domain.Service, error) {
	employee, err := loadInTenant[domain.Employee](ctx, r.repos.EmployeeRepo, a.EstablishmentID, a.EmployeeID, "employee")
	if err != nil {
		return nil, err
	}
	if !employee.IsActive {
		return nil, apperrors.Validationf("employee %s is inactive", employee.ID)
	}
	svc, err := loadInTenant[domain.Service](ctx, r.repos.ServiceRepo, a.EstablishmentID, a.ServiceID, "service")
	if err != nil {
		return nil, err
	}
	if !svc.IsActive {
		return nil, apperrors.Validationf("service %s is inactive", svc.ID)
	}
	if !employee.Offers(svc.ID) {
		return nil, apperrors.Validationf("employee %s does not offer service %s", employee.Name, svc.Name)
	}

	a.StartTime = a.StartTime.UTC().Truncate(time.Second)
	if a.EndTime.IsZero() {
		a.EndTime = a.StartTime.Add(svc.Duration())
	}
	a.EndTime = a.EndTime.UTC().Truncate(time.Second)
	if !a.EndTime.After(a.StartTime) {
		return nil, apperrors.Validationf("end time must be after start time")
	}
	return svc, nil
}

// checkSchedule enforces opening hours and rejects overlaps with the employee's other bookings.
func (r *AppointmentRules) checkSchedule(ctx context.Context, a *domain.Appointment) error {
	est, err := r.establishment(ctx, a.EstablishmentID)
	if err != nil {
		return err
	}
	open, closing, ok := est.BusinessHours(a.StartTime)
	if !ok {
		return apperrors.Validationf("the establishment is closed on %s", a.StartTime.In(est.Location()).Weekday())
	}
	if a.StartTime.Before(open) || a.EndTime.After(closing) {
		return apperrors.Validationf("appointment must be within opening hours %s-%s", est.OpeningTime, est.ClosingTime)
	}

	clash, err := FindConflict(ctx, r.repos.AppointmentRepo, a.EstablishmentID, a.EmployeeID, a.StartTime, a.EndTime, a.ID)
	if err != nil {
		return err
	}
	if clash != nil {
		return fmt.Errorf("%w: employee already booked from %s to %s",
			apperrors.ErrScheduleConflict, clash.StartTime.Format(time.RFC3339), clash.EndTime.Format(time.RFC3339))
	}
	return nil
}

// FindConflict returns a blocking appointment of the employee overlapping [start, end),
// ignoring excludeID, or nil.
func FindConflict(ctx context.Context, repo portsrepo.DocumentReader[domain.Appointment], establishmentID, employeeID string, start, end time.Time, excludeID string) (*domain.Appointment, error) {
	q := EmployeeAgenda(establishmentID, employeeID, start, end)
	q.OrderBy = "startTime"
	found, err := repo.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	for i := range found {
		if found[i].ID != excludeID {
			return &found[i], nil
		}
	}
	return nil, nil
}

// EmployeeAgenda selects the blocking appointments of an employee overlapping [start, end).
func EmployeeAgenda(establishmentID, employeeID string, start, end time.Time) portsrepo.Query {
	return portsrepo.Query{EstablishmentID: establishmentID}.
		Where("employeeID", portsrepo.OpEqual, employeeID).
		Where("status", portsrepo.OpIn, domain.BlockingAppointmentStatuses).
		Where("startTime", portsrepo.OpLess, end).
		Where("endTime", portsrepo.OpGreater, start)
}
