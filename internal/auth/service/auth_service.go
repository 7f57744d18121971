package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/techinvestorai/techinvestor-backend/internal/auth/domain"
	"github.com/techinvestorai/techinvestor-backend/internal/identity"
	"github.com/techinvestorai/techinvestor-backend/internal/logging"
)

// DocumentCreator writes the per-user portfolio document at signup.
type DocumentCreator interface {
	CreateDocument(ctx context.Context, userID, name, email string) error
}

// ProfileDirectory is the optional relational mirror of user profiles.
type ProfileDirectory interface {
	GetByUID(ctx context.Context, uid string) (*domain.Profile, error)
	Upsert(ctx context.Context, p *domain.Profile) error
	UpdateLastLogin(ctx context.Context, uid string) error
}

// SignUpResult is returned by SignUp.
type SignUpResult struct {
	Session          *identity.Session `json:"session"`
	VerificationSent bool              `json:"verification_sent"`
}

type AuthService struct {
	provider  identity.Provider
	documents DocumentCreator
	profiles  ProfileDirectory
}

// NewAuthService creates the account service. profiles may be nil.
func NewAuthService(provider identity.Provider, documents DocumentCreator, profiles ProfileDirectory) *AuthService {
	return &AuthService{
		provider:  provider,
		documents: documents,
		profiles:  profiles,
	}
}

// SignUp creates the account and its portfolio document, then sends the
// verification email. A failed verification email does not undo the signup.
func (s *AuthService) SignUp(ctx context.Context, req *domain.SignUpRequest) (*SignUpResult, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" || email == "" || req.Password == "" {
		return nil, domain.ErrMissingFields
	}
	if len(req.Password) < identity.MinPasswordLength {
		return nil, domain.ErrPasswordTooShort
	}

	log := logging.Op(ctx, "auth.signup")

	sess, err := s.provider.SignUp(ctx, identity.SignUpRequest{Name: name, Email: email, Password: req.Password})
	if err != nil {
		return nil, mapProviderError(err, domain.ErrSignupFailed)
	}
	uid := sess.Identity.UID

	if err := s.documents.CreateDocument(ctx, uid, name, email); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSignupFailed, err)
	}

	if s.profiles != nil {
		if err := s.profiles.Upsert(ctx, &domain.Profile{UID: uid, Email: email, DisplayName: &name}); err != nil {
			log.Warn().Err(err).Str("user_id", uid).Msg("profile upsert failed")
		}
	}

	result := &SignUpResult{Session: sess}
	if err := s.provider.SendVerification(ctx, sess); err != nil {
		log.Warn().Err(err).Str("user_id", uid).Msg("verification email not sent")
	} else {
		result.VerificationSent = true
	}

	log.Info().Str("user_id", uid).Msg("account created")
	return result, nil
}

// Login signs in with email and password. Unverified accounts are refused.
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*identity.Session, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, domain.ErrMissingFields
	}

	sess, err := s.provider.SignIn(ctx, email, req.Password)
	if err != nil {
		return nil, mapProviderError(err, domain.ErrLoginFailed)
	}
	if !sess.Identity.EmailVerified {
		return nil, domain.ErrEmailNotVerified
	}

	if s.profiles != nil {
		if err := s.profiles.UpdateLastLogin(ctx, sess.Identity.UID); err != nil {
			logging.Op(ctx, "auth.login").Warn().Err(err).Str("user_id", sess.Identity.UID).Msg("record login failed")
		}
	}
	return sess, nil
}

// Logout revokes the user's sessions.
func (s *AuthService) Logout(ctx context.Context, uid string) error {
	if uid == "" {
		return domain.ErrNotAuthenticated
	}
	if err := s.provider.SignOut(ctx, uid); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrLogoutFailed, err)
	}
	return nil
}

// ResendVerification sends a new verification email for the session
// identified by token.
func (s *AuthService) ResendVerification(ctx context.Context, ident *identity.Identity, token string) error {
	if ident == nil {
		return domain.ErrNotAuthenticated
	}
	sess := &identity.Session{Identity: *ident, IDToken: token}
	if err := s.provider.SendVerification(ctx, sess); err != nil {
		return mapProviderError(err, domain.ErrVerifyFailed)
	}
	return nil
}

// Profile returns the mirrored profile of uid.
func (s *AuthService) Profile(ctx context.Context, uid string) (*domain.Profile, error) {
	if s.profiles == nil {
		return nil, domain.ErrUserNotFound
	}
	return s.profiles.GetByUID(ctx, uid)
}

// mapProviderError turns identity sentinels into user-facing errors.
// Unknown failures are wrapped in fallback.
func mapProviderError(err, fallback error) error {
	var perr *identity.ProviderError
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials):
		return domain.ErrBadCredentials
	case errors.Is(err, identity.ErrEmailExists):
		return domain.ErrEmailInUse
	case errors.Is(err, identity.ErrWeakPassword):
		return domain.ErrPasswordTooShort
	case errors.Is(err, identity.ErrTooManyAttempts):
		return err
	case errors.As(err, &perr):
		return err
	}
	return fmt.Errorf("%w: %w", fallback, err)
}
