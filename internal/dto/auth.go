package dto

import "github.com/arsitekta/arsitekta-api/internal/models"

// RegisterArchitectRequest creates a new architect account.
type RegisterArchitectRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required"`
	City     string `json:"city"`
	Phone    string `json:"phone"`
}

// LoginRequest authenticates an architect or admin account.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued access token and account identity.
type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int64           `json:"expires_in"`
	UserID      string          `json:"user_id"`
	Role        models.UserRole `json:"role"`
}
