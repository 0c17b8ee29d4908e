//nolint:revive // types is a standard Go package name pattern
// Package types provides type definitions for structured data shared by the
// store, the screening core and the HTTP layer.
package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Role separates job seekers from recruiters.
type Role string

const (
	RoleSeeker    Role = "seeker"
	RoleRecruiter Role = "recruiter"
)

// RegisterRequest represents the request to create a new account.
type RegisterRequest struct {
	Name          string   `json:"name" validate:"required,min=1"`
	Email         string   `json:"email" validate:"required,email"`
	Password      string   `json:"password" validate:"required,min=8"`
	Role          Role     `json:"role" validate:"required,oneof=seeker recruiter"`
	WalletAddress string   `json:"wallet_address,omitempty" validate:"omitempty,max=128"`
	Skills        []string `json:"skills,omitempty" validate:"omitempty,max=50,dive,required"`
}

// LoginRequest represents the login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// User represents an account for API responses. The password hash never
// leaves the db package.
type User struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Role          Role      `json:"role"`
	WalletAddress string    `json:"wallet_address,omitempty"`
	Skills        []string  `json:"skills"`
	CreatedAt     time.Time `json:"created_at"`
}

// CandidateID is the identity recorded on applications: the wallet address
// when one is linked, the account id otherwise.
func (u *User) CandidateID() string {
	if u.WalletAddress != "" {
		return u.WalletAddress
	}
	return u.ID.String()
}

// LoginResponse represents the login/register response with user data and authentication token.
type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// Validate validates the RegisterRequest using the validator.
func (r *RegisterRequest) Validate() error {
	return validator.New().Struct(r)
}

// Validate validates the LoginRequest using the validator.
func (r *LoginRequest) Validate() error {
	return validator.New().Struct(r)
}
