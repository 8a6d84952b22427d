package dto

import "time"

// RegisterRequest payload for new portal accounts.
type RegisterRequest struct {
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	Phone     string  `json:"phone"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	IsCompany bool    `json:"is_company"`
	ParentID  *string `json:"parent_id"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
