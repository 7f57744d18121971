package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdmin struct {
	users     map[string]*auth.UserRecord
	revoked   []string
	tokens    map[string]*auth.Token
	revokeErr error
}

func (f *fakeAdmin) VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*auth.Token, error) {
	tok, ok := f.tokens[idToken]
	if !ok {
		return nil, errors.New("id token has been revoked")
	}
	return tok, nil
}

func (f *fakeAdmin) GetUser(ctx context.Context, uid string) (*auth.UserRecord, error) {
	rec, ok := f.users[uid]
	if !ok {
		return nil, errors.New("no user record found")
	}
	return rec, nil
}

func (f *fakeAdmin) UpdateUser(ctx context.Context, uid string, user *auth.UserToUpdate) (*auth.UserRecord, error) {
	rec := &auth.UserRecord{UserInfo: &auth.UserInfo{UID: uid, Email: "new@example.com", DisplayName: "Grace"}}
	f.users[uid] = rec
	return rec, nil
}

func (f *fakeAdmin) RevokeRefreshTokens(ctx context.Context, uid string) error {
	if f.revokeErr != nil {
		return f.revokeErr
	}
	f.revoked = append(f.revoked, uid)
	return nil
}

func newFirebaseTestProvider(t *testing.T, admin *fakeAdmin) *FirebaseProvider {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body passwordRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Password == "wrong" {
			writeToolkitError(w, "INVALID_LOGIN_CREDENTIALS")
			return
		}
		_ = json.NewEncoder(w).Encode(toolkitAuthResponse{
			LocalID:   "uid-1",
			Email:     body.Email,
			IDToken:   "id-token",
			ExpiresIn: "3600",
		})
	}))
	t.Cleanup(srv.Close)
	return NewFirebaseProvider(admin, NewToolkitClient(srv.URL, "key", 0))
}

func TestFirebaseProvider_SignInLoadsVerificationState(t *testing.T) {
	admin := &fakeAdmin{users: map[string]*auth.UserRecord{
		"uid-1": {UserInfo: &auth.UserInfo{UID: "uid-1", Email: "user@example.com"}, EmailVerified: true},
	}}
	p := newFirebaseTestProvider(t, admin)

	var changes []StateChange
	p.Subscribe(func(c StateChange) { changes = append(changes, c) })

	sess, err := p.SignIn(context.Background(), "user@example.com", "hunter22")
	require.NoError(t, err)
	assert.True(t, sess.Identity.EmailVerified)
	assert.Equal(t, "id-token", sess.IDToken)

	require.Len(t, changes, 1)
	assert.Equal(t, "uid-1", changes[0].UserID)
}

func TestFirebaseProvider_SignInInvalidCredentials(t *testing.T) {
	p := newFirebaseTestProvider(t, &fakeAdmin{users: map[string]*auth.UserRecord{}})

	_, err := p.SignIn(context.Background(), "user@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestFirebaseProvider_SignUpSetsDisplayName(t *testing.T) {
	admin := &fakeAdmin{users: map[string]*auth.UserRecord{}}
	p := newFirebaseTestProvider(t, admin)

	sess, err := p.SignUp(context.Background(), SignUpRequest{Name: "Grace", Email: "new@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, "Grace", sess.Identity.DisplayName)
	assert.False(t, sess.Identity.EmailVerified)
	assert.Contains(t, admin.users, "uid-1")
}

func TestFirebaseProvider_SignOut(t *testing.T) {
	admin := &fakeAdmin{}
	p := newFirebaseTestProvider(t, admin)

	var changes []StateChange
	p.Subscribe(func(c StateChange) { changes = append(changes, c) })

	require.NoError(t, p.SignOut(context.Background(), "uid-1"))
	assert.Equal(t, []string{"uid-1"}, admin.revoked)
	require.Len(t, changes, 1)
	assert.Nil(t, changes[0].Identity)

	admin.revokeErr = errors.New("boom")
	err := p.SignOut(context.Background(), "uid-1")
	require.Error(t, err)
	assert.Len(t, changes, 1)
}

func TestFirebaseProvider_VerifyToken(t *testing.T) {
	admin := &fakeAdmin{tokens: map[string]*auth.Token{
		"good": {UID: "uid-1", Claims: map[string]interface{}{
			"email":          "user@example.com",
			"email_verified": true,
			"name":           "Ada",
		}},
	}}
	p := newFirebaseTestProvider(t, admin)

	ident, err := p.VerifyToken(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, &Identity{UID: "uid-1", Email: "user@example.com", EmailVerified: true, DisplayName: "Ada"}, ident)

	_, err = p.VerifyToken(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestFirebaseProvider_SendVerificationNeedsToken(t *testing.T) {
	p := newFirebaseTestProvider(t, &fakeAdmin{})
	assert.ErrorIs(t, p.SendVerification(context.Background(), &Session{}), ErrInvalidToken)
}
