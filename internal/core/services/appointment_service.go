package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/salon_management_app/internal/apperrors"
	"github.com/SscSPs/salon_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/salon_management_app/internal/core/ports/services"
	"github.com/SscSPs/salon_management_app/internal/core/rules"
	"github.com/SscSPs/salon_management_app/internal/dto"
	"github.com/SscSPs/salon_management_app/internal/platform/metrics"
	"github.com/shopspring/decimal"
)

// SystemUserID is recorded as the actor of changes made by background jobs.
const SystemUserID = "system"

// slotStep is the granularity of offered start times.
const slotStep = 15 * time.Minute

type appointmentService struct {
	*CrudService[domain.Appointment, *domain.Appointment]
	repos portsrepo.RepositoryProvider
}

// NewAppointmentService creates the booking service.
func NewAppointmentService(repos portsrepo.RepositoryProvider, options ...BaseOption) portssvc.AppointmentSvcFacade {
	base := newBaseService(options...)
	return &appointmentService{
		CrudService: NewCrudService[domain.Appointment](repos.AppointmentRepo, rules.NewAppointmentRules(repos, base.Now), domain.CollectionAppointments,
			CrudPolicy{Read: domain.RoleClient, Write: domain.RoleClient, Delete: domain.RoleAdmin}, options...),
		repos: repos,
	}
}

var _ portssvc.AppointmentSvcFacade = (*appointmentService)(nil)

// ListAppointments lists appointments ordered by start time. Clients only see their own.
func (s *appointmentService) ListAppointments(ctx context.Context, establishmentID, requestingUserID string, params dto.ListAppointmentsParams) ([]domain.Appointment, string, error) {
	m, err := s.Membership(ctx, requestingUserID, establishmentID, domain.RoleClient)
	if err != nil {
		return nil, "", err
	}

	q := portsrepo.Query{OrderBy: "startTime"}
	switch {
	case params.Date != "":
		from, to, err := s.localDay(ctx, establishmentID, params.Date)
		if err != nil {
			return nil, "", err
		}
		q = q.Where("startTime", portsrepo.OpGreaterEqual, from).Where("startTime", portsrepo.OpLess, to)
	default:
		if params.From != nil {
			q = q.Where("startTime", portsrepo.OpGreaterEqual, params.From.UTC())
		}
		if params.To != nil {
			q = q.Where("startTime", portsrepo.OpLess, params.To.UTC())
		}
	}
	if params.EmployeeID != "" {
		q = q.Where("employeeID", portsrepo.OpEqual, params.EmployeeID)
	}
	clientID := params.ClientID
	if m.Role == domain.RoleClient {
		clientID = m.ProfileID
	}
	if clientID != "" {
		q = q.Where("clientID", portsrepo.OpEqual, clientID)
	}
	if params.Status != "" {
		q = q.Where("status", portsrepo.OpEqual, params.Status)
	}
	return s.Page(ctx, establishmentID, params.ListParams, q)
}

func (s *appointmentService) GetAppointment(ctx context.Context, establishmentID, appointmentID, requestingUserID string) (*domain.Appointment, error) {
	m, err := s.Membership(ctx, requestingUserID, establishmentID, domain.RoleClient)
	if err != nil {
		return nil, err
	}
	a, err := s.Load(ctx, establishmentID, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := ownAppointment(m, a); err != nil {
		return nil, err
	}
	return a, nil
}

// AvailableSlots walks the opening hours of the day in fixed steps and keeps the start
// times where the whole service fits without touching a booking or the past.
func (s *appointmentService) AvailableSlots(ctx context.Context, establishmentID, requestingUserID string, params dto.AvailableSlotsParams) ([]domain.TimeSlot, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, establishmentID, domain.RoleClient); err != nil {
		return nil, err
	}
	est, err := s.repos.EstablishmentRepo.FindByID(ctx, establishmentID)
	if err != nil {
		return nil, err
	}
	day, err := time.ParseInLocation("2006-01-02", params.Date, est.Location())
	if err != nil {
		return nil, apperrors.NewValidationFailedError("date must be YYYY-MM-DD")
	}

	svc, err := s.repos.ServiceRepo.FindByID(ctx, params.ServiceID)
	if err != nil || svc.EstablishmentID != establishmentID {
		return nil, notFoundOr(err, "service "+params.ServiceID+" not found")
	}
	employee, err := s.repos.EmployeeRepo.FindByID(ctx, params.EmployeeID)
	if err != nil || employee.EstablishmentID != establishmentID {
		return nil, notFoundOr(err, "employee "+params.EmployeeID+" not found")
	}
	if !svc.IsActive || !employee.IsActive || !employee.Offers(svc.ID) {
		return []domain.TimeSlot{}, nil
	}

	open, closing, ok := est.BusinessHours(day)
	if !ok {
		return []domain.TimeSlot{}, nil
	}
	busy, err := s.Repo().Find(ctx, rules.EmployeeAgenda(establishmentID, employee.ID, open.UTC(), closing.UTC()))
	if err != nil {
		s.LogError(ctx, err, "Failed to load employee agenda", slog.String("employee_id", employee.ID))
		return nil, err
	}

	now := s.Now()
	duration := svc.Duration()
	slots := []domain.TimeSlot{}
	for start := open; !start.Add(duration).After(closing); start = start.Add(slotStep) {
		end := start.Add(duration)
		if start.Before(now) {
			continue
		}
		free := true
		for i := range busy {
			if busy[i].Overlaps(start, end) {
				free = false
				break
			}
		}
		if free {
			slots = append(slots, domain.TimeSlot{Start: start.UTC(), End: end.UTC()})
		}
	}
	return slots, nil
}

// CreateAppointment books a service. Clients always book for themselves, as SCHEDULED and
// at the catalogue price.
func (s *appointmentService) CreateAppointment(ctx context.Context, establishmentID string, req dto.CreateAppointmentRequest, requestingUserID string) (*domain.Appointment, error) {
	m, err := s.Membership(ctx, requestingUserID, establishmentID, domain.RoleClient)
	if err != nil {
		return nil, err
	}
	a := req.ToDomain()
	if m.Role == domain.RoleClient {
		a.ClientID = m.ProfileID
		a.Status = domain.AppointmentScheduled
		a.Price = decimal.Zero
	}
	return s.Insert(ctx, establishmentID, requestingUserID, &a)
}

// UpdateAppointment reschedules or edits an appointment. Clients may only move their own
// bookings; price and status stay with the staff.
func (s *appointmentService) UpdateAppointment(ctx context.Context, establishmentID, appointmentID string, req dto.UpdateAppointmentRequest, requestingUserID string) (*domain.Appointment, error) {
	m, err := s.Membership(ctx, requestingUserID, establishmentID, domain.RoleClient)
	if err != nil {
		return nil, err
	}
	if m.Role == domain.RoleClient {
		req.Price = nil
		req.Status = nil
	}
	return s.Modify(ctx, establishmentID, appointmentID, requestingUserID, func(a *domain.Appointment) error {
		if err := ownAppointment(m, a); err != nil {
			return err
		}
		req.Apply(a)
		return nil
	})
}

func (s *appointmentService) DeleteAppointment(ctx context.Context, establishmentID, appointmentID, requestingUserID string) error {
	return s.Delete(ctx, establishmentID, appointmentID, requestingUserID)
}

func (s *appointmentService) ConfirmAppointment(ctx context.Context, establishmentID, appointmentID, requestingUserID string) (*domain.Appointment, error) {
	return s.transition(ctx, establishmentID, appointmentID, requestingUserID, domain.RoleClient, domain.AppointmentConfirmed, "")
}

func (s *appointmentService) CompleteAppointment(ctx context.Context, establishmentID, appointmentID, requestingUserID string) (*domain.Appointment, error) {
	return s.transition(ctx, establishmentID, appointmentID, requestingUserID, domain.RoleEmployee, domain.AppointmentCompleted, "")
}

func (s *appointmentService) CancelAppointment(ctx context.Context, establishmentID, appointmentID, reason, requestingUserID string) (*domain.Appointment, error) {
	return s.transition(ctx, establishmentID, appointmentID, requestingUserID, domain.RoleClient, domain.AppointmentCancelled, reason)
}

func (s *appointmentService) MarkNoShow(ctx context.Context, establishmentID, appointmentID, requestingUserID string) (*domain.Appointment, error) {
	return s.transition(ctx, establishmentID, appointmentID, requestingUserID, domain.RoleEmployee, domain.AppointmentNoShow, "")
}

func (s *appointmentService) transition(ctx context.Context, establishmentID, appointmentID, requestingUserID string, required domain.Role, to domain.AppointmentStatus, reason string) (*domain.Appointment, error) {
	m, err := s.Membership(ctx, requestingUserID, establishmentID, required)
	if err != nil {
		return nil, err
	}
	a, err := s.Modify(ctx, establishmentID, appointmentID, requestingUserID, func(a *domain.Appointment) error {
		if err := ownAppointment(m, a); err != nil {
			return err
		}
		if a.Status == to {
			return apperrors.Validationf("appointment is already %s", to)
		}
		a.Status = to
		if to == domain.AppointmentCancelled {
			a.CancelReason = reason
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Appointment status changed",
		slog.String("appointment_id", a.ID),
		slog.String("status", string(a.Status)))
	return a, nil
}

// SweepPastAppointments closes appointments whose end time has passed. It scans every
// establishment; an appointment changed concurrently is skipped and retried next run.
func (s *appointmentService) SweepPastAppointments(ctx context.Context) (int, error) {
	q := portsrepo.Query{OrderBy: "endTime"}.
		Where("status", portsrepo.OpIn, domain.ActiveAppointmentStatuses).
		Where("endTime", portsrepo.OpLess, s.Now())
	due, err := s.Repo().Find(ctx, q)
	if err != nil {
		s.LogError(ctx, err, "Failed to find past appointments")
		return 0, err
	}

	swept := 0
	for i := range due {
		if err := ctx.Err(); err != nil {
			return swept, err
		}
		current := &due[i]
		to := domain.AppointmentNoShow
		if current.Status == domain.AppointmentConfirmed {
			to = domain.AppointmentCompleted
		}
		next, err := s.PrepareUpdate(ctx, current, SystemUserID, func(a *domain.Appointment) error {
			a.Status = to
			return nil
		})
		if err == nil {
			err = s.Repo().Update(ctx, next)
		}
		if err != nil {
			if !errors.Is(err, apperrors.ErrConflict) {
				s.LogError(ctx, err, "Failed to sweep appointment", slog.String("appointment_id", current.ID))
			}
			continue
		}
		metrics.RecordSweptAppointment(string(to))
		swept++
	}
	if swept > 0 {
		s.LogInfo(ctx, "Past appointments closed", slog.Int("count", swept))
	}
	return swept, nil
}

func (s *appointmentService) localDay(ctx context.Context, establishmentID, date string) (time.Time, time.Time, error) {
	est, err := s.repos.EstablishmentRepo.FindByID(ctx, establishmentID)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	day, err := time.ParseInLocation("2006-01-02", date, est.Location())
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.NewValidationFailedError("date must be YYYY-MM-DD")
	}
	return day.UTC(), day.AddDate(0, 0, 1).UTC(), nil
}

// ownAppointment refuses clients access to other clients' appointments.
func ownAppointment(m *domain.Membership, a *domain.Appointment) error {
	if m.Role == domain.RoleClient && a.ClientID != m.ProfileID {
		return fmt.Errorf("%w: appointment %s belongs to another client", apperrors.ErrForbidden, a.ID)
	}
	return nil
}
