// Package identity is the boundary to the identity provider: email/password
// sign-in and sign-up, verification email, sign-out, bearer-token
// verification and a subscription to session-state changes.
package identity

import (
	"context"
	"time"
)

// Identity is the authenticated user as seen by the rest of the service.
type Identity struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	DisplayName   string `json:"display_name,omitempty"`
}

// Session is the result of a successful sign-in or sign-up.
type Session struct {
	Identity     Identity  `json:"identity"`
	IDToken      string    `json:"id_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// SignUpRequest carries the signup form.
type SignUpRequest struct {
	Name     string
	Email    string
	Password string
}

// StateChange is emitted whenever the session state of a user changes.
// A nil Identity means the user no longer has a session.
type StateChange struct {
	UserID   string
	Identity *Identity
}

// Listener receives state changes. Listeners are called synchronously
// and must not block.
type Listener func(StateChange)

// Provider is implemented by the Firebase and in-memory backends.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, req SignUpRequest) (*Session, error)
	SendVerification(ctx context.Context, sess *Session) error
	SignOut(ctx context.Context, uid string) error
	VerifyToken(ctx context.Context, token string) (*Identity, error)
	Subscribe(fn Listener) (unsubscribe func())
}

// MinPasswordLength mirrors the provider's password policy.
const MinPasswordLength = 6
