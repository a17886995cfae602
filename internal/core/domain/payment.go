package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRecordStatus is the state of a recorded payment.
type PaymentRecordStatus string

const (
	PaymentRecordPaid     PaymentRecordStatus = "PAID"
	PaymentRecordRefunded PaymentRecordStatus = "REFUNDED"
)

// Payment is money received for an appointment or a sale.
type Payment struct {
	Document
	AppointmentID string              `json:"appointmentID,omitempty"`
	SaleID        string              `json:"saleID,omitempty"`
	ClientID      string              `json:"clientID,omitempty"`
	Amount        decimal.Decimal     `json:"amount"`
	Method        PaymentMethod       `json:"method" validate:"required,oneof=CASH CARD PIX OTHER"`
	Status        PaymentRecordStatus `json:"status"`
	PaidAt        time.Time           `json:"paidAt"`
	RefundedAt    *time.Time          `json:"refundedAt,omitempty"`
	Notes         string              `json:"notes" validate:"omitempty,max=2000"`
}
