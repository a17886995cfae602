package dto

import "time"

// LoginRequest carries email/password credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the response for a successful login.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// RefreshTokenResponse represents the response for a successful token refresh.
type RefreshTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// RegisterClientRequest creates a client login that can later join establishments.
type RegisterClientRequest struct {
	Name     string `json:"name" binding:"required,max=120"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// RegisterEstablishmentRequest onboards a salon together with its first administrator.
type RegisterEstablishmentRequest struct {
	Establishment CreateEstablishmentRequest `json:"establishment" binding:"required"`
	AdminName     string                     `json:"adminName" binding:"required,max=120"`
	AdminPhone    string                     `json:"adminPhone" binding:"omitempty,max=32"`
	Email         string                     `json:"email" binding:"required,email"`
	Password      string                     `json:"password" binding:"required,min=8,max=72"`
}

// RegisterEstablishmentResponse is returned after onboarding.
type RegisterEstablishmentResponse struct {
	Establishment EstablishmentResponse `json:"establishment"`
	User          UserResponse          `json:"user"`
}

// ExchangeCodeRequest carries the authorization code Google redirected the frontend with.
// State must echo the value handed out by the login redirect when that cookie is present.
type ExchangeCodeRequest struct {
	Code  string `json:"code" binding:"required"`
	State string `json:"state"`
}
