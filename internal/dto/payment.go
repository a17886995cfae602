package dto

import (
	"time"

	"github.com/SscSPs/salon_management_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RecordPaymentRequest registers money received for exactly one appointment or sale.
type RecordPaymentRequest struct {
	AppointmentID string               `json:"appointmentID"`
	SaleID        string               `json:"saleID"`
	Amount        decimal.Decimal      `json:"amount" swaggertype:"string" example:"50.00"`
	Method        domain.PaymentMethod `json:"method" binding:"required,oneof=CASH CARD PIX OTHER"`
	PaidAt        *time.Time           `json:"paidAt"`
	Notes         string               `json:"notes" binding:"omitempty,max=2000"`
}

func (r RecordPaymentRequest) ToDomain() domain.Payment {
	p := domain.Payment{
		AppointmentID: r.AppointmentID,
		SaleID:        r.SaleID,
		Amount:        r.Amount,
		Method:        r.Method,
		Notes:         r.Notes,
	}
	if r.PaidAt != nil {
		p.PaidAt = *r.PaidAt
	}
	return p
}

// RefundPaymentRequest carries an optional note for the refund.
type RefundPaymentRequest struct {
	Notes string `json:"notes" binding:"omitempty,max=2000"`
}

// ListPaymentsParams filters the payment listing.
type ListPaymentsParams struct {
	ListParams
	AppointmentID string     `form:"appointmentID"`
	SaleID        string     `form:"saleID"`
	From          *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To            *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	Method        string     `form:"method" binding:"omitempty,oneof=CASH CARD PIX OTHER"`
}

// CommissionParams selects the employee and period of a commission statement.
type CommissionParams struct {
	PeriodParams
	EmployeeID string `form:"employeeID" binding:"required"`
}
