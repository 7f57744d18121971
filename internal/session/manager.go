// Package session tracks the current identity of every user seen by this
// instance and fans session-state changes out to subscribers.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/techinvestorai/techinvestor-backend/internal/identity"
)

const (
	defaultBufferSize = 8
	// defaultIdentityTTL matches the lifetime of a Firebase ID token.
	defaultIdentityTTL = time.Hour
)

var (
	ErrAlreadyStarted = errors.New("session manager already started")
	ErrClosed         = errors.New("session manager closed")
)

// Event is a session-state change. A nil Identity means "no identity".
// Observed marks an identity seen on a bearer token rather than reported
// by the provider.
type Event struct {
	UserID   string             `json:"user_id"`
	Identity *identity.Identity `json:"identity"`
	At       time.Time          `json:"at"`
	Observed bool               `json:"observed,omitempty"`
}

type entry struct {
	ident identity.Identity
	seen  time.Time
}

// Subscription delivers events for one user, or for all users when
// created with an empty user id. C is closed by Close or when the
// manager shuts down.
type Subscription struct {
	C <-chan Event

	ch     chan Event
	userID string
	closed bool
	m      *Manager
}

// Close releases the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.removeLocked(s)
}

// Manager observes the identity provider and keeps the last known
// identity per user. An identity not seen for the TTL is dropped, the
// same way its token would have expired.
type Manager struct {
	provider identity.Provider
	broker   Broker
	log      zerolog.Logger
	bufSize  int
	ttl      time.Duration
	now      func() time.Time

	mu          sync.Mutex
	current     map[string]entry
	signedOut   map[string]time.Time
	lastSweep   time.Time
	subs        map[*Subscription]struct{}
	unsubscribe func()
	stopBroker  func()
	started     bool
	closed      bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithBroker fans events out to other instances through b.
func WithBroker(b Broker) Option {
	return func(m *Manager) { m.broker = b }
}

func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithBufferSize sets the per-subscription channel capacity.
func WithBufferSize(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.bufSize = n
		}
	}
}

// WithIdentityTTL sets how long an identity is kept without being seen.
func WithIdentityTTL(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.ttl = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(provider identity.Provider, opts ...Option) *Manager {
	m := &Manager{
		provider: provider,
		log:      zerolog.Nop(),
		bufSize:   defaultBufferSize,
		ttl:       defaultIdentityTTL,
		now:       time.Now,
		current:   make(map[string]entry),
		signedOut: make(map[string]time.Time),
		subs:      make(map[*Subscription]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start subscribes to the provider and, when configured, to the broker.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.started {
		m.mu.Unlock()
		return ErrAlreadyStarted
	}
	m.started = true
	m.mu.Unlock()

	unsubscribe := m.provider.Subscribe(m.handleChange)

	var stopBroker func()
	if m.broker != nil {
		stop, err := m.broker.Listen(ctx, m.handleRemote)
		if err != nil {
			unsubscribe()
			m.mu.Lock()
			m.started = false
			m.mu.Unlock()
			return err
		}
		stopBroker = stop
	}

	m.mu.Lock()
	m.unsubscribe = unsubscribe
	m.stopBroker = stopBroker
	m.mu.Unlock()

	m.log.Info().Bool("broker", m.broker != nil).Msg("session manager started")
	return nil
}

// Close unsubscribes from the provider and the broker and closes every
// subscription. No event is delivered after Close returns.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	for s := range m.subs {
		m.removeLocked(s)
	}
	unsubscribe, stopBroker := m.unsubscribe, m.stopBroker
	m.unsubscribe, m.stopBroker = nil, nil
	m.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if stopBroker != nil {
		stopBroker()
	}
	m.log.Info().Msg("session manager stopped")
}

// Subscribe returns a subscription for userID, or for every user when
// userID is empty. After Close the returned channel is already closed.
func (m *Manager) Subscribe(userID string) *Subscription {
	ch := make(chan Event, m.bufSize)
	s := &Subscription{C: ch, ch: ch, userID: userID, m: m}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		s.closed = true
		close(ch)
		return s
	}
	m.subs[s] = struct{}{}
	return s
}

// Current returns the last known identity of userID.
func (m *Manager) Current(userID string) (*identity.Identity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.current[userID]
	if !ok {
		return nil, false
	}
	if m.expired(e.seen, m.now()) {
		delete(m.current, userID)
		return nil, false
	}
	ident := e.ident
	return &ident, true
}

// Observe records an identity seen on a verified bearer token. An event
// is published only when it differs from the known state. Token claims
// can be older than the known state, so a verified email is never
// downgraded, and a user who signed out stays signed out until the
// provider reports a new sign-in.
func (m *Manager) Observe(ident identity.Identity) {
	m.publish(Event{UserID: ident.UID, Identity: &ident, At: m.now(), Observed: true})
}

func (m *Manager) handleChange(change identity.StateChange) {
	m.publish(Event{UserID: change.UserID, Identity: change.Identity, At: m.now()})
}

func (m *Manager) publish(ev Event) {
	if !m.apply(ev) {
		return
	}
	if m.broker == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := m.broker.Publish(ctx, ev); err != nil {
		m.log.Warn().Err(err).Str("user_id", ev.UserID).Msg("publish session event")
	}
}

func (m *Manager) handleRemote(ev Event) {
	m.apply(ev)
}

// apply updates the state table and delivers ev. It reports false when
// nothing changed or the manager is closed.
func (m *Manager) apply(ev Event) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}

	now := m.now()
	m.sweepLocked(now)

	switch {
	case ev.Identity == nil:
		delete(m.current, ev.UserID)
		m.signedOut[ev.UserID] = now
	case ev.Observed:
		if at, out := m.signedOut[ev.UserID]; out && !m.expired(at, now) {
			return false
		}
		prev, ok := m.current[ev.UserID]
		if ok && m.expired(prev.seen, now) {
			ok = false
		}
		if ok && prev.ident.EmailVerified {
			ev.Identity.EmailVerified = true
		}
		m.current[ev.UserID] = entry{ident: *ev.Identity, seen: now}
		if ok && prev.ident == *ev.Identity {
			return false
		}
	default:
		delete(m.signedOut, ev.UserID)
		m.current[ev.UserID] = entry{ident: *ev.Identity, seen: now}
	}

	for s := range m.subs {
		if s.userID != "" && s.userID != ev.UserID {
			continue
		}
		deliver(s.ch, ev)
	}
	return true
}

func (m *Manager) expired(seen, now time.Time) bool {
	return now.Sub(seen) >= m.ttl
}

// sweepLocked drops expired identities and sign-out markers, at most
// four times per TTL.
func (m *Manager) sweepLocked(now time.Time) {
	if now.Sub(m.lastSweep) < m.ttl/4 {
		return
	}
	m.lastSweep = now
	for uid, e := range m.current {
		if m.expired(e.seen, now) {
			delete(m.current, uid)
		}
	}
	for uid, at := range m.signedOut {
		if m.expired(at, now) {
			delete(m.signedOut, uid)
		}
	}
}

// deliver never blocks: a full buffer loses its oldest event.
func deliver(ch chan Event, ev Event) {
	select {
	case ch <- ev:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- ev:
	default:
	}
}

func (m *Manager) removeLocked(s *Subscription) {
	if s.closed {
		return
	}
	s.closed = true
	delete(m.subs, s)
	close(s.ch)
}
