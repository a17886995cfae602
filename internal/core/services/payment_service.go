package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/salon_management_app/internal/apperrors"
	"github.com/SscSPs/salon_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/salon_management_app/internal/core/ports/services"
	"github.com/SscSPs/salon_management_app/internal/core/rules"
	"github.com/SscSPs/salon_management_app/internal/dto"
	"github.com/shopspring/decimal"
)

// paymentApplyAttempts bounds the retries when the appointment changes concurrently.
const paymentApplyAttempts = 3

type paymentService struct {
	*CrudService[domain.Payment, *domain.Payment]
	appointments portsrepo.DocumentRepository[domain.Appointment]
}

// NewPaymentService creates the payment service.
func NewPaymentService(repos portsrepo.RepositoryProvider, options ...BaseOption) portssvc.PaymentSvcFacade {
	base := newBaseService(options...)
	return &paymentService{
		CrudService: NewCrudService[domain.Payment](repos.PaymentRepo, rules.NewPaymentRules(repos, base.Now), domain.CollectionPayments,
			CrudPolicy{Read: domain.RoleEmployee, Write: domain.RoleEmployee, Delete: domain.RoleAdmin}, options...),
		appointments: repos.AppointmentRepo,
	}
}

var _ portssvc.PaymentSvcFacade = (*paymentService)(nil)

func (s *paymentService) ListPayments(ctx context.Context, establishmentID, requestingUserID string, params dto.ListPaymentsParams) ([]domain.Payment, string, error) {
	q := portsrepo.Query{OrderBy: "paidAt", Descending: true}
	if params.AppointmentID != "" {
		q = q.Where("appointmentID", portsrepo.OpEqual, params.AppointmentID)
	}
	if params.SaleID != "" {
		q = q.Where("saleID", portsrepo.OpEqual, params.SaleID)
	}
	if params.From != nil {
		q = q.Where("paidAt", portsrepo.OpGreaterEqual, params.From.UTC())
	}
	if params.To != nil {
		q = q.Where("paidAt", portsrepo.OpLess, params.To.UTC())
	}
	if params.Method != "" {
		q = q.Where("method", portsrepo.OpEqual, params.Method)
	}
	return s.List(ctx, establishmentID, requestingUserID, params.ListParams, q)
}

func (s *paymentService) GetPayment(ctx context.Context, establishmentID, paymentID, requestingUserID string) (*domain.Payment, error) {
	return s.Get(ctx, establishmentID, paymentID, requestingUserID)
}

// RecordPayment stores the payment and adds it to the appointment's paid amount. The payment
// is removed again when the appointment cannot be updated.
func (s *paymentService) RecordPayment(ctx context.Context, establishmentID string, req dto.RecordPaymentRequest, requestingUserID string) (*domain.Payment, error) {
	p := req.ToDomain()
	if _, err := s.Create(ctx, establishmentID, requestingUserID, &p); err != nil {
		return nil, err
	}
	if p.AppointmentID == "" {
		return &p, nil
	}
	if err := s.applyToAppointment(ctx, establishmentID, p.AppointmentID, p.Amount, requestingUserID); err != nil {
		if delErr := s.Repo().Delete(ctx, p.ID); delErr != nil {
			s.LogError(ctx, delErr, "Failed to roll back payment", slog.String("payment_id", p.ID))
		}
		return nil, err
	}
	return &p, nil
}

// RefundPayment marks a payment refunded and takes it off the appointment's paid amount.
// The payment goes back to PAID when the appointment cannot be updated, so the refund can be retried.
func (s *paymentService) RefundPayment(ctx context.Context, establishmentID, paymentID string, req dto.RefundPaymentRequest, requestingUserID string) (*domain.Payment, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, establishmentID, domain.RoleAdmin); err != nil {
		return nil, err
	}
	var previousNotes string
	p, err := s.Modify(ctx, establishmentID, paymentID, requestingUserID, func(p *domain.Payment) error {
		if p.Status == domain.PaymentRecordRefunded {
			return fmt.Errorf("%w: payment %s is already refunded", apperrors.ErrImmutableField, p.ID)
		}
		previousNotes = p.Notes
		p.Status = domain.PaymentRecordRefunded
		if req.Notes != "" {
			p.Notes = req.Notes
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if p.AppointmentID != "" {
		if err := s.applyToAppointment(ctx, establishmentID, p.AppointmentID, p.Amount.Neg(), requestingUserID); err != nil {
			s.LogError(ctx, err, "Refund not reflected on appointment",
				slog.String("payment_id", p.ID),
				slog.String("appointment_id", p.AppointmentID))
			p.Status = domain.PaymentRecordPaid
			p.RefundedAt = nil
			p.Notes = previousNotes
			if restoreErr := s.Repo().Update(ctx, p); restoreErr != nil {
				s.LogError(ctx, restoreErr, "Failed to restore payment after refund error", slog.String("payment_id", p.ID))
			}
			return nil, err
		}
	}
	s.LogInfo(ctx, "Payment refunded", slog.String("payment_id", p.ID))
	return p, nil
}

// applyToAppointment adds delta to the paid amount. It writes the appointment directly
// because payment bookkeeping also applies to completed appointments. A positive delta is
// checked against the outstanding amount on every attempt, since a retry sees newer payments.
func (s *paymentService) applyToAppointment(ctx context.Context, establishmentID, appointmentID string, delta decimal.Decimal, userID string) error {
	var err error
	for attempt := 0; attempt < paymentApplyAttempts; attempt++ {
		var a *domain.Appointment
		a, err = s.appointments.FindByID(ctx, appointmentID)
		if err != nil || a.EstablishmentID != establishmentID {
			return notFoundOr(err, "appointment "+appointmentID+" not found")
		}
		if delta.IsPositive() && delta.GreaterThan(a.Outstanding()) {
			return apperrors.Validationf("payment of %s exceeds the outstanding %s of appointment %s",
				delta.StringFixed(2), a.Outstanding().StringFixed(2), a.ID)
		}
		a.ApplyPayment(delta)
		a.StampUpdated(userID, s.Now())
		if err = s.appointments.Update(ctx, a); err == nil {
			return nil
		}
		if !errors.Is(err, apperrors.ErrConflict) {
			return err
		}
		s.LogDebug(ctx, "Appointment changed concurrently, retrying payment update",
			slog.String("appointment_id", appointmentID),
			slog.Int("attempt", attempt+1))
	}
	return err
}
