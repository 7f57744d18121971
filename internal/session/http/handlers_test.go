package http

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/techinvestorai/techinvestor-backend/internal/auth/middleware"
	"github.com/techinvestorai/techinvestor-backend/internal/identity"
	"github.com/techinvestorai/techinvestor-backend/internal/session"
)

type fixture struct {
	provider *identity.MemoryProvider
	manager  *session.Manager
	router   *gin.Engine
	handler  *Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	p := identity.NewMemoryProvider("secret", time.Hour, identity.WithBcryptCost(bcrypt.MinCost))
	m := session.NewManager(p)
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(m.Close)

	h := New(m)
	r := gin.New()
	h.Register(r.Group("/api/v1"), middleware.OptionalAuth(p, m), middleware.RequireAuth(p, m))
	return &fixture{provider: p, manager: m, router: r, handler: h}
}

func (f *fixture) signUp(t *testing.T, email string) *identity.Session {
	t.Helper()
	sess, err := f.provider.SignUp(context.Background(), identity.SignUpRequest{Email: email, Password: "hunter22"})
	require.NoError(t, err)
	return sess
}

// sseReader reads "event:"/"data:" frames and comment lines from a stream.
type sseReader struct {
	t    *testing.T
	scan *bufio.Scanner
}

type frame struct {
	event   string
	data    string
	comment string
}

func (r *sseReader) next() frame {
	r.t.Helper()
	var f frame
	for r.scan.Scan() {
		line := r.scan.Text()
		switch {
		case line == "":
			if f != (frame{}) {
				return f
			}
		case strings.HasPrefix(line, ":"):
			f.comment = strings.TrimSpace(line[1:])
		case strings.HasPrefix(line, "event: "):
			f.event = line[len("event: "):]
		case strings.HasPrefix(line, "data: "):
			f.data = line[len("data: "):]
		}
	}
	r.t.Fatalf("stream ended: %v", r.scan.Err())
	return f
}

func openStream(t *testing.T, srv *httptest.Server, token string) (*sseReader, func()) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/session/events?access_token="+token, nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	return &sseReader{t: t, scan: bufio.NewScanner(resp.Body)}, func() { _ = resp.Body.Close() }
}

func decodeEvent(t *testing.T, data string) session.Event {
	t.Helper()
	var ev session.Event
	require.NoError(t, json.Unmarshal([]byte(data), &ev))
	return ev
}

func TestGetSession(t *testing.T) {
	f := newFixture(t)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/session", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"identity":null}`, w.Body.String())

	sess := f.signUp(t, "user@example.com")
	require.NoError(t, f.provider.MarkVerified(sess.Identity.UID))

	// The token was issued before verification.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
	req.Header.Set("Authorization", "Bearer "+sess.IDToken)
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Identity *identity.Identity `json:"identity"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Identity)
	assert.True(t, resp.Identity.EmailVerified)
}

func TestStreamEvents_RequiresSession(t *testing.T) {
	f := newFixture(t)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/session/events", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStreamEvents_DeliversChangesUntilSignOut(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.router)
	t.Cleanup(srv.Close)

	sess := f.signUp(t, "user@example.com")
	uid := sess.Identity.UID

	stream, closeStream := openStream(t, srv, sess.IDToken)
	defer closeStream()

	fr := stream.next()
	assert.Equal(t, "initial", fr.event)
	ev := decodeEvent(t, fr.data)
	assert.Equal(t, uid, ev.UserID)
	assert.False(t, ev.Identity.EmailVerified)

	require.NoError(t, f.provider.MarkVerified(uid))
	fr = stream.next()
	assert.Equal(t, "session", fr.event)
	assert.True(t, decodeEvent(t, fr.data).Identity.EmailVerified)

	require.NoError(t, f.provider.SignOut(context.Background(), uid))
	fr = stream.next()
	assert.Equal(t, "signed_out", fr.event)
	assert.Nil(t, decodeEvent(t, fr.data).Identity)

	assert.False(t, stream.scan.Scan(), "stream should end after sign-out")
}

func TestStreamEvents_KeepAlive(t *testing.T) {
	f := newFixture(t)
	f.handler.keepAlive = 20 * time.Millisecond
	srv := httptest.NewServer(f.router)
	t.Cleanup(srv.Close)

	sess := f.signUp(t, "user@example.com")
	stream, closeStream := openStream(t, srv, sess.IDToken)
	defer closeStream()

	assert.Equal(t, "initial", stream.next().event)
	assert.Equal(t, "keep-alive", stream.next().comment)
}
