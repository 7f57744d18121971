package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/techinvestorai/techinvestor-backend/internal/auth"
	"github.com/techinvestorai/techinvestor-backend/internal/identity"
	"github.com/techinvestorai/techinvestor-backend/internal/logging"
)

// TokenVerifier is satisfied by every identity.Provider.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*identity.Identity, error)
}

// Observer is told about every identity seen on a valid token.
// *session.Manager satisfies it.
type Observer interface {
	Observe(ident identity.Identity)
}

// RequireAuth validates the bearer token and stores the identity in the
// request. Requests without a valid token are rejected with 401.
func RequireAuth(verifier TokenVerifier, observer Observer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization token"})
			return
		}

		ident, err := verifier.VerifyToken(c.Request.Context(), token)
		if err != nil {
			logTokenError(c, err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		accept(c, token, ident, observer)
		c.Next()
	}
}

// OptionalAuth behaves like RequireAuth when a token is present and lets
// anonymous requests through otherwise. An invalid token is still an error.
func OptionalAuth(verifier TokenVerifier, observer Observer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.Next()
			return
		}

		ident, err := verifier.VerifyToken(c.Request.Context(), token)
		if err != nil {
			logTokenError(c, err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		accept(c, token, ident, observer)
		c.Next()
	}
}

func accept(c *gin.Context, token string, ident *identity.Identity, observer Observer) {
	auth.SetIdentity(c, ident)
	c.Set(auth.CtxToken, token)
	if observer != nil {
		observer.Observe(*ident)
	}
}

func logTokenError(c *gin.Context, err error) {
	if errors.Is(err, identity.ErrInvalidToken) {
		logging.Op(c.Request.Context(), "auth.verify_token").Debug().Err(err).Msg("rejected token")
		return
	}
	logging.Op(c.Request.Context(), "auth.verify_token").Warn().Err(err).Msg("token verification failed")
}

// extractToken extracts the Bearer token from the Authorization header.
// SSE clients cannot set headers, so access_token is accepted as a query
// parameter too.
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.EqualFold(bearerToken[:7], "Bearer ") {
		return strings.TrimSpace(bearerToken[7:])
	}
	return strings.TrimSpace(c.Query("access_token"))
}
