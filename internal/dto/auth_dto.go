package dto

import "time"

// LoginRequest carries admin credentials for password sign-in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// AuthProfile is the slice of profile data returned with a session.
type AuthProfile struct {
	ID           string     `json:"id"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	UniversityID string     `json:"university_id,omitempty"`
	Title        string     `json:"title,omitempty"`
	Permissions  []string   `json:"permissions"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// LoginResponse returns the locally issued session token and the signed-in
// admin's identity.
type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	AccountID string      `json:"account_id"`
	Email     string      `json:"email"`
	Role      string      `json:"role"`
	Profile   AuthProfile `json:"profile"`
}

// SessionResponse describes the current session for token introspection.
type SessionResponse struct {
	AccountID    string `json:"account_id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	UniversityID string `json:"university_id,omitempty"`
}

// ForgotPasswordRequest starts a password reset for the given email.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ChangePasswordRequest updates the caller's password via the identity
// provider using the provider access token from the reset flow.
type ChangePasswordRequest struct {
	AccessToken string `json:"access_token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}
