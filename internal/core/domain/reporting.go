package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommissionLine is the commission earned on a single completed appointment.
type CommissionLine struct {
	AppointmentID string          `json:"appointmentID"`
	ServiceID     string          `json:"serviceID"`
	ServiceName   string          `json:"serviceName"`
	StartTime     time.Time       `json:"startTime"`
	Price         decimal.Decimal `json:"price"`
	Commission    decimal.Decimal `json:"commission"`
	Source        string          `json:"source"` // rule, service or employee
}

// CommissionSummary aggregates one employee's commissions over a period.
type CommissionSummary struct {
	EmployeeID   string           `json:"employeeID"`
	EmployeeName string           `json:"employeeName"`
	From         time.Time        `json:"from"`
	To           time.Time        `json:"to"`
	Appointments int              `json:"appointments"`
	Revenue      decimal.Decimal  `json:"revenue"`
	Total        decimal.Decimal  `json:"total"`
	Lines        []CommissionLine `json:"lines"`
}

// ServiceRevenue is revenue aggregated per catalogue service.
type ServiceRevenue struct {
	ServiceID    string          `json:"serviceID"`
	ServiceName  string          `json:"serviceName"`
	Appointments int             `json:"appointments"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// PeriodReport summarises an establishment's activity in [From, To).
type PeriodReport struct {
	From                 time.Time                         `json:"from"`
	To                   time.Time                         `json:"to"`
	AppointmentsByStatus map[AppointmentStatus]int         `json:"appointmentsByStatus"`
	ServiceRevenue       decimal.Decimal                   `json:"serviceRevenue"`
	SalesCount           int                               `json:"salesCount"`
	SalesRevenue         decimal.Decimal                   `json:"salesRevenue"`
	PaymentsByMethod     map[PaymentMethod]decimal.Decimal `json:"paymentsByMethod"`
	PaymentsTotal        decimal.Decimal                   `json:"paymentsTotal"`
	TopServices          []ServiceRevenue                  `json:"topServices"`
}
