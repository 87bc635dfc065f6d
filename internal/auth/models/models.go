package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. PasswordHash is a bcrypt hash and never leaves the service.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile is the public view of a user.
func (u User) Profile() UserProfile {
	return UserProfile{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

type UserProfile struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Session backs an access token. Logging out revokes it.
type Session struct {
	ID                    uuid.UUID `json:"id"`
	UserID                uuid.UUID `json:"user_id"`
	DeviceDisplayName     string    `json:"device_display_name"`
	DeviceFingerprintHash string    `json:"device_fingerprint_hash"`
	ClientIP              string    `json:"client_ip,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
	ExpiresAt             time.Time `json:"expires_at"`
	Revoked               bool      `json:"revoked"`
	RevokedAt             time.Time `json:"revoked_at,omitzero"`
}

// IsActive reports whether the session can still authenticate requests at now.
func (s Session) IsActive(now time.Time) bool {
	return !s.Revoked && now.Before(s.ExpiresAt)
}

type SignupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	AcceptTerms     bool   `json:"accept_terms"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int         `json:"expires_in"`
	User        UserProfile `json:"user"`
}
