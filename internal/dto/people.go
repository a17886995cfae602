package dto

import (
	"time"

	"github.com/SscSPs/salon_management_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAdminRequest defines data for creating an administrator profile. When Password is
// set a login account is created alongside it.
type CreateAdminRequest struct {
	Name     string `json:"name" binding:"required,max=120"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"omitempty,max=32"`
	Password string `json:"password" binding:"omitempty,min=8,max=72"`
	IsActive *bool  `json:"isActive"`
}

func (r CreateAdminRequest) ToDomain() domain.Admin {
	return domain.Admin{
		Name:     r.Name,
		Email:    r.Email,
		Phone:    r.Phone,
		IsActive: boolOr(r.IsActive, true),
	}
}

// UpdateAdminRequest defines the data allowed for updating an administrator.
type UpdateAdminRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=120"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Phone    *string `json:"phone" binding:"omitempty,max=32"`
	IsActive *bool   `json:"isActive"`
}

func (r UpdateAdminRequest) Apply(a *domain.Admin) {
	if r.Name != nil {
		a.Name = *r.Name
	}
	if r.Email != nil {
		a.Email = *r.Email
	}
	if r.Phone != nil {
		a.Phone = *r.Phone
	}
	if r.IsActive != nil {
		a.IsActive = *r.IsActive
	}
}

// CreateEmployeeRequest defines data for creating an employee profile.
type CreateEmployeeRequest struct {
	Name           string          `json:"name" binding:"required,max=120"`
	Email          string          `json:"email" binding:"required,email"`
	Phone          string          `json:"phone" binding:"omitempty,max=32"`
	Password       string          `json:"password" binding:"omitempty,min=8,max=72"`
	CommissionRate decimal.Decimal `json:"commissionRate" swaggertype:"string" example:"40"`
	CommissionRule string          `json:"commissionRule" binding:"omitempty,max=500"`
	ServiceIDs     []string        `json:"serviceIDs"`
	IsActive       *bool           `json:"isActive"`
}

func (r CreateEmployeeRequest) ToDomain() domain.Employee {
	return domain.Employee{
		Name:           r.Name,
		Email:          r.Email,
		Phone:          r.Phone,
		CommissionRate: r.CommissionRate,
		CommissionRule: r.CommissionRule,
		ServiceIDs:     r.ServiceIDs,
		IsActive:       boolOr(r.IsActive, true),
	}
}

// UpdateEmployeeRequest defines the data allowed for updating an employee.
type UpdateEmployeeRequest struct {
	Name           *string          `json:"name" binding:"omitempty,max=120"`
	Email          *string          `json:"email" binding:"omitempty,email"`
	Phone          *string          `json:"phone" binding:"omitempty,max=32"`
	CommissionRate *decimal.Decimal `json:"commissionRate" swaggertype:"string"`
	CommissionRule *string          `json:"commissionRule" binding:"omitempty,max=500"`
	ServiceIDs     *[]string        `json:"serviceIDs"`
	IsActive       *bool            `json:"isActive"`
}

func (r UpdateEmployeeRequest) Apply(e *domain.Employee) {
	if r.Name != nil {
		e.Name = *r.Name
	}
	if r.Email != nil {
		e.Email = *r.Email
	}
	if r.Phone != nil {
		e.Phone = *r.Phone
	}
	if r.CommissionRate != nil {
		e.CommissionRate = *r.CommissionRate
	}
	if r.CommissionRule != nil {
		e.CommissionRule = *r.CommissionRule
	}
	if r.ServiceIDs != nil {
		e.ServiceIDs = *r.ServiceIDs
	}
	if r.IsActive != nil {
		e.IsActive = *r.IsActive
	}
}

// ListEmployeesParams filters the employee listing.
type ListEmployeesParams struct {
	ListParams
	ServiceID  string `form:"serviceID"`
	ActiveOnly bool   `form:"activeOnly"`
}

// CreateClientRequest defines data for registering a client at the front desk.
type CreateClientRequest struct {
	Name      string     `json:"name" binding:"required,max=120"`
	Email     string     `json:"email" binding:"omitempty,email"`
	Phone     string     `json:"phone" binding:"required,max=32"`
	BirthDate *time.Time `json:"birthDate"`
	Notes     string     `json:"notes" binding:"omitempty,max=2000"`
	IsActive  *bool      `json:"isActive"`
}

func (r CreateClientRequest) ToDomain() domain.Client {
	return domain.Client{
		Name:      r.Name,
		Email:     r.Email,
		Phone:     r.Phone,
		BirthDate: r.BirthDate,
		Notes:     r.Notes,
		IsActive:  boolOr(r.IsActive, true),
	}
}

// UpdateClientRequest defines the data allowed for updating a client.
type UpdateClientRequest struct {
	Name      *string    `json:"name" binding:"omitempty,max=120"`
	Email     *string    `json:"email" binding:"omitempty,email"`
	Phone     *string    `json:"phone" binding:"omitempty,max=32"`
	BirthDate *time.Time `json:"birthDate"`
	Notes     *string    `json:"notes" binding:"omitempty,max=2000"`
	IsActive  *bool      `json:"isActive"`
}

func (r UpdateClientRequest) Apply(c *domain.Client) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Email != nil {
		c.Email = *r.Email
	}
	if r.Phone != nil {
		c.Phone = *r.Phone
	}
	if r.BirthDate != nil {
		c.BirthDate = r.BirthDate
	}
	if r.Notes != nil {
		c.Notes = *r.Notes
	}
	if r.IsActive != nil {
		c.IsActive = *r.IsActive
	}
}

// ListClientsParams filters the client listing.
type ListClientsParams struct {
	ListParams
	Phone      string `form:"phone"`
	ActiveOnly bool   `form:"activeOnly"`
}

// JoinEstablishmentRequest links the calling client account to an establishment.
type JoinEstablishmentRequest struct {
	Phone     string     `json:"phone" binding:"required,max=32"`
	BirthDate *time.Time `json:"birthDate"`
}
