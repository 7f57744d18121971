package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newToolkitServer(t *testing.T, handler http.HandlerFunc) *ToolkitClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewToolkitClient(srv.URL, "test-key", 0)
}

func writeToolkitError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_, _ = w.Write([]byte(`{"error":{"code":400,"message":"` + message + `"}}`))
}

func TestToolkitClient_SignInWithPassword(t *testing.T) {
	client := newToolkitServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/accounts:signInWithPassword", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var body passwordRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "user@example.com", body.Email)
		assert.True(t, body.ReturnSecureToken)

		_ = json.NewEncoder(w).Encode(toolkitAuthResponse{
			LocalID:      "uid-1",
			Email:        "user@example.com",
			IDToken:      "id-token",
			RefreshToken: "refresh-token",
			ExpiresIn:    "3600",
		})
	})

	before := time.Now()
	sess, err := client.SignInWithPassword(context.Background(), "user@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", sess.Identity.UID)
	assert.Equal(t, "id-token", sess.IDToken)
	assert.Equal(t, "refresh-token", sess.RefreshToken)
	assert.WithinDuration(t, before.Add(time.Hour), sess.ExpiresAt, 5*time.Second)
}

func TestToolkitClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		message string
		want    error
	}{
		{"INVALID_PASSWORD", ErrInvalidCredentials},
		{"EMAIL_NOT_FOUND", ErrInvalidCredentials},
		{"INVALID_LOGIN_CREDENTIALS", ErrInvalidCredentials},
		{"EMAIL_EXISTS", ErrEmailExists},
		{"WEAK_PASSWORD : Password should be at least 6 characters", ErrWeakPassword},
		{"TOKEN_EXPIRED", ErrInvalidToken},
		{"TOO_MANY_ATTEMPTS_TRY_LATER : Try again later.", ErrTooManyAttempts},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			client := newToolkitServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeToolkitError(w, tt.message)
			})
			_, err := client.SignUp(context.Background(), "user@example.com", "pw")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestToolkitClient_UnknownErrorIsProviderError(t *testing.T) {
	client := newToolkitServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeToolkitError(w, "OPERATION_NOT_ALLOWED")
	})

	err := client.SendEmailVerification(context.Background(), "id-token")
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 400, perr.Code)
	assert.Equal(t, "OPERATION_NOT_ALLOWED", perr.Message)
}

func TestToolkitClient_NonJSONError(t *testing.T) {
	client := newToolkitServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := client.SignInWithPassword(context.Background(), "a@b.c", "pw")
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusBadGateway, perr.Code)
}

func TestToolkitClient_SendEmailVerification(t *testing.T) {
	var got map[string]string
	client := newToolkitServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts:sendOobCode", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"email":"user@example.com"}`))
	})

	require.NoError(t, client.SendEmailVerification(context.Background(), "id-token"))
	assert.Equal(t, "VERIFY_EMAIL", got["requestType"])
	assert.Equal(t, "id-token", got["idToken"])
}

func TestToolkitClient_RespectsCancelledContext(t *testing.T) {
	client := newToolkitServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request should not be sent")
	})
	client.limiter.SetLimit(0.001)
	client.limiter.SetBurst(0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.SignInWithPassword(ctx, "a@b.c", "pw")
	assert.Error(t, err)
}
