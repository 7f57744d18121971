package domain

import "time"

// Profile is the optional relational mirror of a user's signup data.
// The identity provider's uid is the primary key.
type Profile struct {
	UID         string     `json:"uid" db:"firebase_uid"`
	Email       string     `json:"email" db:"email"`
	DisplayName *string    `json:"display_name,omitempty" db:"display_name"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
}

// SignUpRequest represents the signup form
type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login form
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
