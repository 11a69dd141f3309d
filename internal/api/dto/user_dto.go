package dto

import (
	"time"

	"github.com/spec-kit/report-portal/internal/domain"
)

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// ChangePasswordRequest payload for secret rotation.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserSummary is the public view of an account.
type UserSummary struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	District     string `json:"district"`
	IsMainOffice bool   `json:"is_main_office"`
}

// NewUserSummary maps a domain user.
func NewUserSummary(user *domain.User) UserSummary {
	return UserSummary{
		ID:           user.ID,
		Username:     user.Username,
		District:     user.District,
		IsMainOffice: user.IsMainOffice,
	}
}
