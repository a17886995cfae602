package dto

import (
	"time"

	"github.com/SscSPs/salon_management_app/internal/core/domain"
)

// UpdateUserRequest defines the data allowed for updating a user.
// Using pointers to differentiate between omitted fields and zero-value fields.
type UpdateUserRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=120"`
	Password *string `json:"password" binding:"omitempty,min=8,max=72"`
}

// UserResponse defines the user data returned by the API.
type UserResponse struct {
	UserID          string      `json:"userID"`
	Email           string      `json:"email"`
	Name            string      `json:"name"`
	Role            domain.Role `json:"role"`
	EstablishmentID string      `json:"establishmentID,omitempty"`
	ProfileID       string      `json:"profileID,omitempty"`
	IsActive        bool        `json:"isActive"`
	LastLoginAt     *time.Time  `json:"lastLoginAt,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
	LastUpdatedAt   time.Time   `json:"lastUpdatedAt"`
}

// ToUserResponse converts a domain.User to UserResponse DTO, dropping credentials.
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:          u.ID,
		Email:           u.Email,
		Name:            u.Name,
		Role:            u.Role,
		EstablishmentID: u.EstablishmentID,
		ProfileID:       u.ProfileID,
		IsActive:        u.IsActive,
		LastLoginAt:     u.LastLoginAt,
		CreatedAt:       u.CreatedAt,
		LastUpdatedAt:   u.LastUpdatedAt,
	}
}
