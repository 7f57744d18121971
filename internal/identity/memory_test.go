package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestMemoryProvider(opts ...MemoryOption) *MemoryProvider {
	opts = append([]MemoryOption{WithBcryptCost(bcrypt.MinCost)}, opts...)
	return NewMemoryProvider("test-secret", time.Hour, opts...)
}

func TestMemoryProvider_SignUpAndVerifyToken(t *testing.T) {
	p := newTestMemoryProvider()
	ctx := context.Background()

	sess, err := p.SignUp(ctx, SignUpRequest{Name: "Ada", Email: " Ada@Example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Identity.UID)
	assert.Equal(t, "ada@example.com", sess.Identity.Email)
	assert.Equal(t, "Ada", sess.Identity.DisplayName)
	assert.False(t, sess.Identity.EmailVerified)
	assert.NotEmpty(t, sess.IDToken)

	ident, err := p.VerifyToken(ctx, sess.IDToken)
	require.NoError(t, err)
	assert.Equal(t, sess.Identity.UID, ident.UID)
	assert.False(t, ident.EmailVerified)
}

func TestMemoryProvider_SignUpErrors(t *testing.T) {
	p := newTestMemoryProvider()
	ctx := context.Background()

	_, err := p.SignUp(ctx, SignUpRequest{Email: "a@b.c", Password: "123"})
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = p.SignUp(ctx, SignUpRequest{Email: "a@b.c", Password: "123456"})
	require.NoError(t, err)

	_, err = p.SignUp(ctx, SignUpRequest{Email: "A@B.C", Password: "123456"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestMemoryProvider_SignIn(t *testing.T) {
	p := newTestMemoryProvider()
	ctx := context.Background()

	_, err := p.SignUp(ctx, SignUpRequest{Email: "user@example.com", Password: "hunter22"})
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		_, err := p.SignIn(ctx, "user@example.com", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := p.SignIn(ctx, "ghost@example.com", "hunter22")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("valid credentials", func(t *testing.T) {
		sess, err := p.SignIn(ctx, "USER@example.com", "hunter22")
		require.NoError(t, err)
		assert.Equal(t, "user@example.com", sess.Identity.Email)
	})
}

func TestMemoryProvider_SignOutRevokesTokens(t *testing.T) {
	p := newTestMemoryProvider()
	ctx := context.Background()

	sess, err := p.SignUp(ctx, SignUpRequest{Email: "user@example.com", Password: "hunter22"})
	require.NoError(t, err)

	require.NoError(t, p.SignOut(ctx, sess.Identity.UID))

	_, err = p.VerifyToken(ctx, sess.IDToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	again, err := p.SignIn(ctx, "user@example.com", "hunter22")
	require.NoError(t, err)
	_, err = p.VerifyToken(ctx, again.IDToken)
	assert.NoError(t, err)

	assert.ErrorIs(t, p.SignOut(ctx, "missing"), ErrUserNotFound)
}

func TestMemoryProvider_TokenExpiry(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	p := newTestMemoryProvider(WithClock(func() time.Time { return now }))
	ctx := context.Background()

	sess, err := p.SignUp(ctx, SignUpRequest{Email: "user@example.com", Password: "hunter22"})
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = p.VerifyToken(ctx, sess.IDToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMemoryProvider_RejectsForeignTokens(t *testing.T) {
	a := newTestMemoryProvider()
	b := NewMemoryProvider("other-secret", time.Hour, WithBcryptCost(bcrypt.MinCost))
	ctx := context.Background()

	sess, err := a.SignUp(ctx, SignUpRequest{Email: "user@example.com", Password: "hunter22"})
	require.NoError(t, err)

	_, err = b.VerifyToken(ctx, sess.IDToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = a.VerifyToken(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMemoryProvider_Verification(t *testing.T) {
	p := newTestMemoryProvider()
	ctx := context.Background()

	sess, err := p.SignUp(ctx, SignUpRequest{Email: "user@example.com", Password: "hunter22"})
	require.NoError(t, err)

	require.NoError(t, p.SendVerification(ctx, sess))
	assert.True(t, p.VerificationPending(sess.Identity.UID))

	require.NoError(t, p.MarkVerified(sess.Identity.UID))
	assert.False(t, p.VerificationPending(sess.Identity.UID))

	// Existing tokens see the new state without re-issuing.
	ident, err := p.VerifyToken(ctx, sess.IDToken)
	require.NoError(t, err)
	assert.True(t, ident.EmailVerified)

	assert.ErrorIs(t, p.SendVerification(ctx, nil), ErrInvalidToken)
	assert.True(t, errors.Is(p.MarkVerified("missing"), ErrUserNotFound))
}

func TestMemoryProvider_NotifiesStateChanges(t *testing.T) {
	p := newTestMemoryProvider()
	ctx := context.Background()

	var changes []StateChange
	unsubscribe := p.Subscribe(func(c StateChange) { changes = append(changes, c) })

	sess, err := p.SignUp(ctx, SignUpRequest{Email: "user@example.com", Password: "hunter22"})
	require.NoError(t, err)
	uid := sess.Identity.UID

	require.NoError(t, p.MarkVerified(uid))
	require.NoError(t, p.SignOut(ctx, uid))

	require.Len(t, changes, 3)
	assert.Equal(t, uid, changes[0].UserID)
	require.NotNil(t, changes[0].Identity)
	assert.False(t, changes[0].Identity.EmailVerified)
	require.NotNil(t, changes[1].Identity)
	assert.True(t, changes[1].Identity.EmailVerified)
	assert.Nil(t, changes[2].Identity)

	unsubscribe()
	_, err = p.SignIn(ctx, "user@example.com", "hunter22")
	require.NoError(t, err)
	assert.Len(t, changes, 3)
}
