package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const memoryIssuer = "techinvestor-memory"

type memoryUser struct {
	identity   Identity
	hash       []byte
	generation int
	signedIn   bool
}

type sessionClaims struct {
	Email      string `json:"email"`
	Name       string `json:"name,omitempty"`
	Generation int    `json:"gen"`
	jwt.RegisteredClaims
}

// MemoryProvider keeps accounts in process memory and issues HS256 session
// tokens. It backs local development and the test suites.
type MemoryProvider struct {
	Notifier

	mu      sync.RWMutex
	byEmail map[string]*memoryUser
	byUID   map[string]*memoryUser
	pending map[string]bool // uids with an outstanding verification email

	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

var _ Provider = (*MemoryProvider)(nil)

// MemoryOption configures a MemoryProvider.
type MemoryOption func(*MemoryProvider)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) MemoryOption {
	return func(p *MemoryProvider) { p.now = now }
}

// WithBcryptCost overrides the password hashing cost. Tests use
// bcrypt.MinCost.
func WithBcryptCost(cost int) MemoryOption {
	return func(p *MemoryProvider) { p.cost = cost }
}

// NewMemoryProvider creates a provider signing tokens with secret that
// expire after ttl.
func NewMemoryProvider(secret string, ttl time.Duration, opts ...MemoryOption) *MemoryProvider {
	if ttl <= 0 {
		ttl = time.Hour
	}
	p := &MemoryProvider{
		byEmail: make(map[string]*memoryUser),
		byUID:   make(map[string]*memoryUser),
		pending: make(map[string]bool),
		secret:  []byte(secret),
		ttl:     ttl,
		cost:    bcrypt.DefaultCost,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *MemoryProvider) SignUp(ctx context.Context, req SignUpRequest) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, &ProviderError{Code: 400, Message: "MISSING_EMAIL"}
	}
	if len(req.Password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), p.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	p.mu.Lock()
	if _, ok := p.byEmail[email]; ok {
		p.mu.Unlock()
		return nil, ErrEmailExists
	}
	u := &memoryUser{
		identity: Identity{
			UID:         uuid.NewString(),
			Email:       email,
			DisplayName: strings.TrimSpace(req.Name),
		},
		hash:     hash,
		signedIn: true,
	}
	p.byEmail[email] = u
	p.byUID[u.identity.UID] = u
	sess, err := p.issueLocked(u)
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}

	ident := u.identity
	p.Notify(StateChange{UserID: ident.UID, Identity: &ident})
	return sess, nil
}

func (p *MemoryProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	p.mu.Lock()
	u, ok := p.byEmail[email]
	if !ok {
		p.mu.Unlock()
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.hash, []byte(password)); err != nil {
		p.mu.Unlock()
		return nil, ErrInvalidCredentials
	}
	u.signedIn = true
	sess, err := p.issueLocked(u)
	ident := u.identity
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}

	p.Notify(StateChange{UserID: ident.UID, Identity: &ident})
	return sess, nil
}

func (p *MemoryProvider) SendVerification(ctx context.Context, sess *Session) error {
	if sess == nil {
		return ErrInvalidToken
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	u, ok := p.byUID[sess.Identity.UID]
	if !ok {
		return ErrUserNotFound
	}
	if !u.identity.EmailVerified {
		p.pending[u.identity.UID] = true
	}
	return nil
}

// VerificationPending reports whether a verification email was sent to
// uid and has not been acted on yet.
func (p *MemoryProvider) VerificationPending(uid string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pending[uid]
}

// MarkVerified flags uid's email as verified, as if the link in the
// verification email had been followed.
func (p *MemoryProvider) MarkVerified(uid string) error {
	p.mu.Lock()
	u, ok := p.byUID[uid]
	if !ok {
		p.mu.Unlock()
		return ErrUserNotFound
	}
	u.identity.EmailVerified = true
	delete(p.pending, uid)
	signedIn := u.signedIn
	ident := u.identity
	p.mu.Unlock()

	if signedIn {
		p.Notify(StateChange{UserID: uid, Identity: &ident})
	}
	return nil
}

// SignOut revokes every token issued to uid so far.
func (p *MemoryProvider) SignOut(ctx context.Context, uid string) error {
	p.mu.Lock()
	u, ok := p.byUID[uid]
	if !ok {
		p.mu.Unlock()
		return ErrUserNotFound
	}
	u.generation++
	u.signedIn = false
	p.mu.Unlock()

	p.Notify(StateChange{UserID: uid})
	return nil
}

func (p *MemoryProvider) VerifyToken(ctx context.Context, token string) (*Identity, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(memoryIssuer),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token expired", ErrInvalidToken)
		}
		return nil, ErrInvalidToken
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	u, ok := p.byUID[claims.Subject]
	if !ok || u.generation != claims.Generation {
		return nil, ErrInvalidToken
	}
	ident := u.identity
	return &ident, nil
}

func (p *MemoryProvider) issueLocked(u *memoryUser) (*Session, error) {
	now := p.now()
	expires := now.Add(p.ttl)
	claims := sessionClaims{
		Email:      u.identity.Email,
		Name:       u.identity.DisplayName,
		Generation: u.generation,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    memoryIssuer,
			Subject:   u.identity.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	return &Session{
		Identity:  u.identity,
		IDToken:   signed,
		ExpiresAt: expires,
	}, nil
}
