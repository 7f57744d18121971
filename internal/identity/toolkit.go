package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultToolkitURL is the Identity Toolkit v1 endpoint used by the
// Firebase client SDKs for password authentication.
const DefaultToolkitURL = "https://identitytoolkit.googleapis.com/v1"

// ToolkitClient calls the Identity Toolkit REST API. The Admin SDK cannot
// check passwords, so sign-in, sign-up and verification mail go through
// here. Calls are throttled client-side.
type ToolkitClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
}

// NewToolkitClient creates a client. rps <= 0 disables throttling.
func NewToolkitClient(baseURL, apiKey string, rps float64) *ToolkitClient {
	if baseURL == "" {
		baseURL = DefaultToolkitURL
	}
	limit := rate.Inf
	burst := 1
	if rps > 0 {
		limit = rate.Limit(rps)
		burst = int(rps)
		if burst < 1 {
			burst = 1
		}
	}
	return &ToolkitClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(limit, burst),
	}
}

type toolkitAuthResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type toolkitErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type passwordRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

// SignInWithPassword exchanges email/password for an ID token.
func (c *ToolkitClient) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	var resp toolkitAuthResponse
	err := c.post(ctx, "accounts:signInWithPassword", passwordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.session(time.Now()), nil
}

// SignUp creates an email/password account and returns its first session.
func (c *ToolkitClient) SignUp(ctx context.Context, email, password string) (*Session, error) {
	var resp toolkitAuthResponse
	err := c.post(ctx, "accounts:signUp", passwordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.session(time.Now()), nil
}

// SendEmailVerification asks the provider to mail a verification link to
// the owner of idToken.
func (c *ToolkitClient) SendEmailVerification(ctx context.Context, idToken string) error {
	body := map[string]string{
		"requestType": "VERIFY_EMAIL",
		"idToken":     idToken,
	}
	return c.post(ctx, "accounts:sendOobCode", body, nil)
}

func (c *ToolkitClient) post(ctx context.Context, method string, in, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("identity toolkit throttled: %w", err)
	}

	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}

	reqURL := c.baseURL + "/" + method + "?key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("identity toolkit request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}

	if resp.StatusCode >= 400 {
		return toolkitError(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	return nil
}

// toolkitError maps the REST error codes onto the package sentinels.
// Codes look like "INVALID_PASSWORD" or "WEAK_PASSWORD : Password should be
// at least 6 characters".
func toolkitError(status int, body []byte) error {
	var e toolkitErrorResponse
	if err := json.Unmarshal(body, &e); err != nil || e.Error.Message == "" {
		return &ProviderError{Code: status, Message: strings.TrimSpace(string(body))}
	}

	code := e.Error.Message
	if i := strings.Index(code, " "); i > 0 {
		code = code[:i]
	}

	switch code {
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED":
		return ErrInvalidCredentials
	case "EMAIL_EXISTS":
		return ErrEmailExists
	case "WEAK_PASSWORD":
		return ErrWeakPassword
	case "INVALID_ID_TOKEN", "TOKEN_EXPIRED", "USER_NOT_FOUND":
		return ErrInvalidToken
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		return ErrTooManyAttempts
	}
	return &ProviderError{Code: e.Error.Code, Message: e.Error.Message}
}

func (r toolkitAuthResponse) session(now time.Time) *Session {
	ttl := time.Hour
	if secs, err := strconv.Atoi(r.ExpiresIn); err == nil && secs > 0 {
		ttl = time.Duration(secs) * time.Second
	}
	return &Session{
		Identity: Identity{
			UID:         r.LocalID,
			Email:       r.Email,
			DisplayName: r.DisplayName,
		},
		IDToken:      r.IDToken,
		RefreshToken: r.RefreshToken,
		ExpiresAt:    now.Add(ttl),
	}
}
