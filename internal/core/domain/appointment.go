package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Service is an item of the salon's service catalogue (haircut, manicure, ...).
type Service struct {
	Document
	Name               string           `json:"name" validate:"required,max=120"`
	NormalizedName     string           `json:"normalizedName"` // lower-cased name, used for uniqueness
	Description        string           `json:"description" validate:"omitempty,max=1000"`
	Price              decimal.Decimal  `json:"price"`
	DurationMinutes    int              `json:"durationMinutes" validate:"gt=0,lte=1440"`
	CommissionOverride *decimal.Decimal `json:"commissionOverride,omitempty"` // percent; replaces the employee rate
	IsActive           bool             `json:"isActive"`
}

// Duration returns the service duration.
func (s *Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "SCHEDULED"
	AppointmentConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentCompleted AppointmentStatus = "COMPLETED"
	AppointmentCancelled AppointmentStatus = "CANCELLED"
	AppointmentNoShow    AppointmentStatus = "NO_SHOW"
)

var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentScheduled: {AppointmentConfirmed, AppointmentCancelled, AppointmentNoShow, AppointmentCompleted},
	AppointmentConfirmed: {AppointmentCompleted, AppointmentCancelled, AppointmentNoShow},
}

// CanTransitionTo reports whether moving from s to next is allowed. Staying in place is always allowed.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range appointmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions exist.
func (s AppointmentStatus) Terminal() bool {
	return len(appointmentTransitions[s]) == 0
}

// Blocking reports whether an appointment in this status occupies the employee's agenda.
// Only a cancellation frees the slot.
func (s AppointmentStatus) Blocking() bool {
	return s != AppointmentCancelled
}

// ActiveAppointmentStatuses are statuses that still expect the client to show up.
var ActiveAppointmentStatuses = []string{string(AppointmentScheduled), string(AppointmentConfirmed)}

// BlockingAppointmentStatuses are statuses considered by the conflict check.
var BlockingAppointmentStatuses = []string{
	string(AppointmentScheduled),
	string(AppointmentConfirmed),
	string(AppointmentCompleted),
	string(AppointmentNoShow),
}

// PaymentStatus tracks how much of a charge has been paid.
type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "UNPAID"
	PaymentPartial PaymentStatus = "PARTIAL"
	PaymentPaid    PaymentStatus = "PAID"
)

// Appointment is a booking of one service with one employee for one client.
type Appointment struct {
	Document
	ClientID      string            `json:"clientID" validate:"required"`
	EmployeeID    string            `json:"employeeID" validate:"required"`
	ServiceID     string            `json:"serviceID" validate:"required"`
	ServiceName   string            `json:"serviceName"`
	StartTime     time.Time         `json:"startTime" validate:"required"`
	EndTime       time.Time         `json:"endTime"`
	Status        AppointmentStatus `json:"status" validate:"omitempty,oneof=SCHEDULED CONFIRMED COMPLETED CANCELLED NO_SHOW"`
	Price         decimal.Decimal   `json:"price"`
	PaidAmount    decimal.Decimal   `json:"paidAmount"`
	PaymentStatus PaymentStatus     `json:"paymentStatus"`
	Notes         string            `json:"notes" validate:"omitempty,max=2000"`
	CancelReason  string            `json:"cancelReason,omitempty"`
}

// Overlaps reports whether [start,end) intersects the appointment's interval.
func (a *Appointment) Overlaps(start, end time.Time) bool {
	return a.StartTime.Before(end) && start.Before(a.EndTime)
}

// ApplyPayment adds delta (negative for refunds) to the paid amount and recomputes the payment status.
func (a *Appointment) ApplyPayment(delta decimal.Decimal) {
	a.PaidAmount = a.PaidAmount.Add(delta)
	if a.PaidAmount.IsNegative() {
		a.PaidAmount = decimal.Zero
	}
	switch {
	case a.PaidAmount.IsZero():
		a.PaymentStatus = PaymentUnpaid
	case a.PaidAmount.GreaterThanOrEqual(a.Price):
		a.PaymentStatus = PaymentPaid
	default:
		a.PaymentStatus = PaymentPartial
	}
}

// Outstanding is the part of the price not yet paid.
func (a *Appointment) Outstanding() decimal.Decimal {
	out := a.Price.Sub(a.PaidAmount)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// TimeSlot is a free interval in an employee's agenda.
type TimeSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
