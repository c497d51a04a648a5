package auth

import (
	"github.com/spot2go/spot2go-backend/internal/users"
)

// RegisterRequest is the local signup payload. Admin accounts are never
// self-registered.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required,oneof=customer owner"`
}

// LoginRequest is the local login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse carries a freshly minted access token.
type TokenResponse struct {
	Token string        `json:"token"`
	User  users.Summary `json:"user"`
}

// RequestPasswordResetRequest asks for a reset link by email.
type RequestPasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest completes a reset with the emailed token.
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// ResetPasswordResponse confirms the reset and logs the user straight in.
type ResetPasswordResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}
