package identity

import (
	"time"

	"github.com/google/uuid"
)

// User is a staff account that can sign in to the tracker.
type User struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	Username         string     `db:"username" json:"username"`
	PasswordHash     string     `db:"password_hash" json:"-"`
	DisplayName      string     `db:"display_name" json:"display_name"`
	Role             string     `db:"role" json:"role"`
	Active           bool       `db:"active" json:"active"`
	FailedLoginCount int        `db:"failed_login_count" json:"failed_login_count"`
	LastLogin        *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// StatusRequest toggles an account's active flag.
type StatusRequest struct {
	Active bool `json:"active"`
}

// LoginRequest is the login form payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned on successful authentication.
type LoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	User    *User  `json:"user"`
}
