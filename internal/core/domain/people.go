package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Admin is the management profile of an establishment administrator.
type Admin struct {
	Document
	UserID   string `json:"userID"`
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
	Role     Role   `json:"role"`
	IsActive bool   `json:"isActive"`
}

// Employee is a professional who performs services and earns commission.
type Employee struct {
	Document
	UserID         string          `json:"userID"`
	Name           string          `json:"name" validate:"required,max=120"`
	Email          string          `json:"email" validate:"required,email"`
	Phone          string          `json:"phone" validate:"omitempty,max=32"`
	Role           Role            `json:"role"`
	CommissionRate decimal.Decimal `json:"commissionRate"`           // percent, 0..100
	CommissionRule string          `json:"commissionRule,omitempty"` // optional expression, see commission service
	ServiceIDs     []string        `json:"serviceIDs"`
	IsActive       bool            `json:"isActive"`
}

// Offers reports whether the employee performs the service. An empty list means every service.
func (e *Employee) Offers(serviceID string) bool {
	if len(e.ServiceIDs) == 0 {
		return true
	}
	for _, id := range e.ServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}

// Client is a customer of an establishment.
type Client struct {
	Document
	UserID    string     `json:"userID,omitempty"`
	Name      string     `json:"name" validate:"required,max=120"`
	Email     string     `json:"email" validate:"omitempty,email"`
	Phone     string     `json:"phone" validate:"required,max=32"`
	BirthDate *time.Time `json:"birthDate,omitempty"`
	Notes     string     `json:"notes" validate:"omitempty,max=2000"`
	IsActive  bool       `json:"isActive"`
}
