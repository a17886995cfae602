package services

import (
	"context"

	"github.com/SscSPs/salon_management_app/internal/core/domain"
	"github.com/SscSPs/salon_management_app/internal/dto"
)

// AppointmentReaderSvc defines read operations for appointments
type AppointmentReaderSvc interface {
	// ListAppointments lists appointments; clients only see their own.
	ListAppointments(ctx context.Context, establishmentID, requestingUserID string, params dto.ListAppointmentsParams) ([]domain.Appointment, string, error)
	GetAppointment(ctx context.Context, establishmentID, appointmentID, requestingUserID string) (*domain.Appointment, error)
	// AvailableSlots lists the free start times of an employee for a service on a local day.
	AvailableSlots(ctx context.Context, establishmentID, requestingUserID string, params dto.AvailableSlotsParams) ([]domain.TimeSlot, error)
}

// AppointmentWriterSvc defines write operations for appointments
type AppointmentWriterSvc interface {
	CreateAppointment(ctx context.Context, establishmentID string, req dto.CreateAppointmentRequest, requestingUserID string) (*domain.Appointment, error)
	UpdateAppointment(ctx context.Context, establishmentID, appointmentID string, req dto.UpdateAppointmentRequest, requestingUserID string) (*domain.Appointment, error)
	DeleteAppointment(ctx context.Context, establishmentID, appointmentID, requestingUserID string) error
}

// AppointmentLifecycleSvc moves appointments through their statuses.
type AppointmentLifecycleSvc interface {
	ConfirmAppointment(ctx context.Context, establishmentID, appointmentID, requestingUserID string) (*domain.Appointment, error)
	CompleteAppointment(ctx context.Context, establishmentID, appointmentID, requestingUserID string) (*domain.Appointment, error)
	CancelAppointment(ctx context.Context, establishmentID, appointmentID, reason, requestingUserID string) (*domain.Appointment, error)
	MarkNoShow(ctx context.Context, establishmentID, appointmentID, requestingUserID string) (*domain.Appointment, error)

	// SweepPastAppointments closes every appointment that ended without a final status:
	// CONFIRMED ones become COMPLETED and SCHEDULED ones NO_SHOW. Returns how many changed.
	SweepPastAppointments(ctx context.Context) (int, error)
}

// AppointmentSvcFacade combines all appointment-related service interfaces
type AppointmentSvcFacade interface {
	AppointmentReaderSvc
	AppointmentWriterSvc
	AppointmentLifecycleSvc
}
