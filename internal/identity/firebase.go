package identity

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"
)

// AdminClient is the subset of the Firebase Admin auth client the provider
// uses. *auth.Client satisfies it.
type AdminClient interface {
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*auth.Token, error)
	GetUser(ctx context.Context, uid string) (*auth.UserRecord, error)
	UpdateUser(ctx context.Context, uid string, user *auth.UserToUpdate) (*auth.UserRecord, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// FirebaseProvider authenticates against Firebase Authentication. Password
// flows use the Identity Toolkit REST API, everything else the Admin SDK.
type FirebaseProvider struct {
	Notifier

	admin   AdminClient
	toolkit *ToolkitClient
}

var _ Provider = (*FirebaseProvider)(nil)

func NewFirebaseProvider(admin AdminClient, toolkit *ToolkitClient) *FirebaseProvider {
	return &FirebaseProvider{admin: admin, toolkit: toolkit}
}

func (p *FirebaseProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	sess, err := p.toolkit.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}

	// The REST response does not carry emailVerified.
	rec, err := p.admin.GetUser(ctx, sess.Identity.UID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	sess.Identity = identityFromRecord(rec)

	ident := sess.Identity
	p.Notify(StateChange{UserID: ident.UID, Identity: &ident})
	return sess, nil
}

func (p *FirebaseProvider) SignUp(ctx context.Context, req SignUpRequest) (*Session, error) {
	sess, err := p.toolkit.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		rec, err := p.admin.UpdateUser(ctx, sess.Identity.UID, (&auth.UserToUpdate{}).DisplayName(req.Name))
		if err != nil {
			return nil, fmt.Errorf("set display name: %w", err)
		}
		sess.Identity = identityFromRecord(rec)
	}

	ident := sess.Identity
	p.Notify(StateChange{UserID: ident.UID, Identity: &ident})
	return sess, nil
}

func (p *FirebaseProvider) SendVerification(ctx context.Context, sess *Session) error {
	if sess == nil || sess.IDToken == "" {
		return ErrInvalidToken
	}
	return p.toolkit.SendEmailVerification(ctx, sess.IDToken)
}

func (p *FirebaseProvider) SignOut(ctx context.Context, uid string) error {
	if err := p.admin.RevokeRefreshTokens(ctx, uid); err != nil {
		if auth.IsUserNotFound(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("revoke refresh tokens: %w", err)
	}
	p.Notify(StateChange{UserID: uid})
	return nil
}

func (p *FirebaseProvider) VerifyToken(ctx context.Context, token string) (*Identity, error) {
	decoded, err := p.admin.VerifyIDTokenAndCheckRevoked(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return identityFromToken(decoded), nil
}

func identityFromRecord(rec *auth.UserRecord) Identity {
	ident := Identity{EmailVerified: rec.EmailVerified}
	if rec.UserInfo != nil {
		ident.UID = rec.UID
		ident.Email = rec.Email
		ident.DisplayName = rec.DisplayName
	}
	return ident
}

func identityFromToken(tok *auth.Token) *Identity {
	ident := &Identity{UID: tok.UID}
	if email, ok := tok.Claims["email"].(string); ok {
		ident.Email = email
	}
	if verified, ok := tok.Claims["email_verified"].(bool); ok {
		ident.EmailVerified = verified
	}
	if name, ok := tok.Claims["name"].(string); ok {
		ident.DisplayName = name
	}
	return ident
}
