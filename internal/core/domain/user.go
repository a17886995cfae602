package domain

import "time"

// Role is the application-wide role of a user account.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleEmployee Role = "EMPLOYEE"
	RoleClient   Role = "CLIENT"
)

// rank orders roles for authorization; a higher rank satisfies every lower requirement.
func (r Role) rank() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleEmployee:
		return 2
	case RoleClient:
		return 1
	}
	return 0
}

// Satisfies reports whether r meets the required role.
func (r Role) Satisfies(required Role) bool {
	return r.rank() > 0 && r.rank() >= required.rank()
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool { return r.rank() > 0 }

// User is a login identity. Admin and employee accounts are bound to one establishment;
// client accounts may book in any establishment they are registered with.
type User struct {
	Document
	Email        string     `json:"email" validate:"required,email"`
	Name         string     `json:"name" validate:"required,max=120"`
	PasswordHash string     `json:"passwordHash,omitempty"`
	Role         Role       `json:"role" validate:"required,oneof=ADMIN EMPLOYEE CLIENT"`
	ProfileID    string     `json:"profileID"` // admin, employee or client document id
	GoogleSub    string     `json:"googleSub,omitempty"`
	IsActive     bool       `json:"isActive"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`

	RefreshTokenHash       string     `json:"refreshTokenHash,omitempty"`
	RefreshTokenExpiryTime *time.Time `json:"refreshTokenExpiryTime,omitempty"`
}

// Membership is what a user may do inside one establishment.
type Membership struct {
	UserID          string
	EstablishmentID string
	Role            Role
	ProfileID       string // admin, employee or client document id within the establishment
}

// GoogleUserInfo is the subset of the Google ID token payload used for sign-in.
type GoogleUserInfo struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}
