package dto

import (
	"time"

	"github.com/SscSPs/salon_management_app/internal/core/domain"
)

// CreateEstablishmentRequest defines data for creating a new establishment.
type CreateEstablishmentRequest struct {
	Name        string         `json:"name" binding:"required,max=120"`
	TaxDocument string         `json:"taxDocument" binding:"omitempty,max=32"`
	Email       string         `json:"email" binding:"omitempty,email"`
	Phone       string         `json:"phone" binding:"omitempty,max=32"`
	Address     string         `json:"address" binding:"omitempty,max=255"`
	Plan        domain.Plan    `json:"plan" binding:"omitempty,oneof=FREE BASIC PRO ENTERPRISE"`
	OpeningTime string         `json:"openingTime" binding:"omitempty,clock"`
	ClosingTime string         `json:"closingTime" binding:"omitempty,clock"`
	WorkingDays []time.Weekday `json:"workingDays" binding:"omitempty,dive,min=0,max=6"`
	Timezone    string         `json:"timezone" binding:"omitempty,timezone"`
}

// ToDomain maps the request onto a new establishment.
func (r CreateEstablishmentRequest) ToDomain() domain.Establishment {
	return domain.Establishment{
		Name:        r.Name,
		TaxDocument: r.TaxDocument,
		Email:       r.Email,
		Phone:       r.Phone,
		Address:     r.Address,
		Plan:        r.Plan,
		OpeningTime: r.OpeningTime,
		ClosingTime: r.ClosingTime,
		WorkingDays: r.WorkingDays,
		Timezone:    r.Timezone,
		IsActive:    true,
	}
}

// UpdateEstablishmentRequest defines the data allowed for updating an establishment.
type UpdateEstablishmentRequest struct {
	Name        *string         `json:"name" binding:"omitempty,max=120"`
	TaxDocument *string         `json:"taxDocument" binding:"omitempty,max=32"`
	Email       *string         `json:"email" binding:"omitempty,email"`
	Phone       *string         `json:"phone" binding:"omitempty,max=32"`
	Address     *string         `json:"address" binding:"omitempty,max=255"`
	Plan        *domain.Plan    `json:"plan" binding:"omitempty,oneof=FREE BASIC PRO ENTERPRISE"`
	OpeningTime *string         `json:"openingTime" binding:"omitempty,clock"`
	ClosingTime *string         `json:"closingTime" binding:"omitempty,clock"`
	WorkingDays *[]time.Weekday `json:"workingDays"`
	Timezone    *string         `json:"timezone" binding:"omitempty,timezone"`
	IsActive    *bool           `json:"isActive"`
}

// Apply copies the provided fields onto e.
func (r UpdateEstablishmentRequest) Apply(e *domain.Establishment) {
	if r.Name != nil {
		e.Name = *r.Name
	}
	if r.TaxDocument != nil {
		e.TaxDocument = *r.TaxDocument
	}
	if r.Email != nil {
		e.Email = *r.Email
	}
	if r.Phone != nil {
		e.Phone = *r.Phone
	}
	if r.Address != nil {
		e.Address = *r.Address
	}
	if r.Plan != nil {
		e.Plan = *r.Plan
	}
	if r.OpeningTime != nil {
		e.OpeningTime = *r.OpeningTime
	}
	if r.ClosingTime != nil {
		e.ClosingTime = *r.ClosingTime
	}
	if r.WorkingDays != nil {
		e.WorkingDays = *r.WorkingDays
	}
	if r.Timezone != nil {
		e.Timezone = *r.Timezone
	}
	if r.IsActive != nil {
		e.IsActive = *r.IsActive
	}
}

// EstablishmentResponse defines data returned for an establishment.
type EstablishmentResponse struct {
	EstablishmentID string         `json:"establishmentID"`
	Name            string         `json:"name"`
	TaxDocument     string         `json:"taxDocument,omitempty"`
	Email           string         `json:"email,omitempty"`
	Phone           string         `json:"phone,omitempty"`
	Address         string         `json:"address,omitempty"`
	Plan            domain.Plan    `json:"plan"`
	OpeningTime     string         `json:"openingTime,omitempty"`
	ClosingTime     string         `json:"closingTime,omitempty"`
	WorkingDays     []time.Weekday `json:"workingDays"`
	Timezone        string         `json:"timezone,omitempty"`
	IsActive        bool           `json:"isActive"`
	OwnerUserID     string         `json:"ownerUserID"`
	CreatedAt       time.Time      `json:"createdAt"`
	LastUpdatedAt   time.Time      `json:"lastUpdatedAt"`
	Version         int64          `json:"version"`
}

// ToEstablishmentResponse converts domain.Establishment to DTO.
func ToEstablishmentResponse(e *domain.Establishment) EstablishmentResponse {
	days := e.WorkingDays
	if days == nil {
		days = []time.Weekday{}
	}
	return EstablishmentResponse{
		EstablishmentID: e.ID,
		Name:            e.Name,
		TaxDocument:     e.TaxDocument,
		Email:           e.Email,
		Phone:           e.Phone,
		Address:         e.Address,
		Plan:            e.Plan,
		OpeningTime:     e.OpeningTime,
		ClosingTime:     e.ClosingTime,
		WorkingDays:     days,
		Timezone:        e.Timezone,
		IsActive:        e.IsActive,
		OwnerUserID:     e.OwnerUserID,
		CreatedAt:       e.CreatedAt,
		LastUpdatedAt:   e.LastUpdatedAt,
		Version:         e.Version,
	}
}

// ListEstablishmentsResponse wraps a list of establishments.
type ListEstablishmentsResponse struct {
	Establishments []EstablishmentResponse `json:"establishments"`
}

// ToListEstablishmentsResponse converts a slice of domain.Establishment to DTO.
func ToListEstablishmentsResponse(es []domain.Establishment) ListEstablishmentsResponse {
	list := make([]EstablishmentResponse, len(es))
	for i := range es {
		list[i] = ToEstablishmentResponse(&es[i])
	}
	return ListEstablishmentsResponse{Establishments: list}
}
