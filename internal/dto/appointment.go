package dto

import (
	"time"

	"github.com/SscSPs/salon_management_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAppointmentRequest books a service. EndTime is derived from the service duration
// when omitted; Price defaults to the service price.
type CreateAppointmentRequest struct {
	ClientID   string                   `json:"clientID"`
	EmployeeID string                   `json:"employeeID" binding:"required"`
	ServiceID  string                   `json:"serviceID" binding:"required"`
	StartTime  time.Time                `json:"startTime" binding:"required"`
	EndTime    *time.Time               `json:"endTime"`
	Status     domain.AppointmentStatus `json:"status" binding:"omitempty,oneof=SCHEDULED CONFIRMED"`
	Price      *decimal.Decimal         `json:"price" swaggertype:"string"`
	Notes      string                   `json:"notes" binding:"omitempty,max=2000"`
}

func (r CreateAppointmentRequest) ToDomain() domain.Appointment {
	a := domain.Appointment{
		ClientID:   r.ClientID,
		EmployeeID: r.EmployeeID,
		ServiceID:  r.ServiceID,
		StartTime:  r.StartTime,
		Status:     r.Status,
		Notes:      r.Notes,
	}
	if r.EndTime != nil {
		a.EndTime = *r.EndTime
	}
	if r.Price != nil {
		a.Price = *r.Price
	}
	return a
}

// UpdateAppointmentRequest reschedules or edits an appointment. Status changes go through
// the dedicated confirm/complete/cancel/no-show endpoints as well.
type UpdateAppointmentRequest struct {
	EmployeeID *string                   `json:"employeeID"`
	ServiceID  *string                   `json:"serviceID"`
	StartTime  *time.Time                `json:"startTime"`
	EndTime    *time.Time                `json:"endTime"`
	Status     *domain.AppointmentStatus `json:"status" binding:"omitempty,oneof=SCHEDULED CONFIRMED COMPLETED CANCELLED NO_SHOW"`
	Price      *decimal.Decimal          `json:"price" swaggertype:"string"`
	Notes      *string                   `json:"notes" binding:"omitempty,max=2000"`
}

// Reschedules reports whether the request moves the appointment in time or to another service.
func (r UpdateAppointmentRequest) Reschedules() bool {
	return r.StartTime != nil || r.ServiceID != nil
}

// Apply copies the provided fields onto a. A new start or service without an explicit end
// clears the end time so it is derived again from the service duration.
func (r UpdateAppointmentRequest) Apply(a *domain.Appointment) {
	if r.EmployeeID != nil {
		a.EmployeeID = *r.EmployeeID
	}
	if r.ServiceID != nil {
		a.ServiceID = *r.ServiceID
	}
	if r.StartTime != nil {
		a.StartTime = *r.StartTime
	}
	if r.EndTime != nil {
		a.EndTime = *r.EndTime
	} else if r.Reschedules() {
		a.EndTime = time.Time{}
	}
	if r.Status != nil {
		a.Status = *r.Status
	}
	if r.Price != nil {
		a.Price = *r.Price
	}
	if r.Notes != nil {
		a.Notes = *r.Notes
	}
}

// CancelAppointmentRequest carries the optional reason of a cancellation.
type CancelAppointmentRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

// ListAppointmentsParams filters the appointment listing. Date selects one local calendar
// day and takes precedence over From/To.
type ListAppointmentsParams struct {
	ListParams
	Date       string     `form:"date" binding:"omitempty,datetime=2006-01-02"`
	From       *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To         *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	EmployeeID string     `form:"employeeID"`
	ClientID   string     `form:"clientID"`
	Status     string     `form:"status" binding:"omitempty,oneof=SCHEDULED CONFIRMED COMPLETED CANCELLED NO_SHOW"`
}

// AvailableSlotsParams asks for the free slots of an employee on one day.
type AvailableSlotsParams struct {
	EmployeeID string `form:"employeeID" binding:"required"`
	ServiceID  string `form:"serviceID" binding:"required"`
	Date       string `form:"date" binding:"required,datetime=2006-01-02"`
}

// AvailableSlotsResponse lists free slots.
type AvailableSlotsResponse struct {
	Slots []domain.TimeSlot `json:"slots"`
}
