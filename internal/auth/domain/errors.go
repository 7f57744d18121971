package domain

import "errors"

// User-facing messages.
var (
	ErrMissingFields    = errors.New("Please fill in all fields")
	ErrPasswordTooShort = errors.New("Password must be at least 6 characters")
	ErrEmailNotVerified = errors.New("Please verify your email before logging in")
	ErrEmailInUse       = errors.New("Email is already in use")
	ErrBadCredentials   = errors.New("Invalid email or password")
	ErrNotAuthenticated = errors.New("user not authenticated")
	ErrLoginFailed      = errors.New("Failed to log in")
	ErrSignupFailed     = errors.New("Failed to create account")
	ErrLogoutFailed     = errors.New("Failed to log out")
	ErrVerifyFailed     = errors.New("Failed to send verification email")
)

var ErrUserNotFound = errors.New("user not found")
