package identity

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("the email address is already in use by another account")
	ErrWeakPassword       = errors.New("password should be at least 6 characters")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTooManyAttempts    = errors.New("too many attempts, try again later")
)

// ProviderError is an error reported by the identity provider that has no
// dedicated sentinel. Message is the provider's text, shown to the user
// verbatim.
type ProviderError struct {
	Code    int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("identity provider: %s", e.Message)
}
