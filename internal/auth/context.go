package auth

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/techinvestorai/techinvestor-backend/internal/identity"
)

const (
	CtxUID      = "uid"
	CtxIdentity = "identity"
	CtxToken    = "id_token"
)

type identityKey struct{}

// WithIdentity returns ctx carrying ident.
func WithIdentity(ctx context.Context, ident *identity.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, ident)
}

// FromContext returns the identity set by the auth middleware, or nil.
func FromContext(ctx context.Context) *identity.Identity {
	ident, _ := ctx.Value(identityKey{}).(*identity.Identity)
	return ident
}

// CurrentIdentity extracts the identity from the Gin context.
// This is set by the RequireAuth and OptionalAuth middlewares.
func CurrentIdentity(c *gin.Context) *identity.Identity {
	v, ok := c.Get(CtxIdentity)
	if !ok {
		return nil
	}
	ident, _ := v.(*identity.Identity)
	return ident
}

// UserID returns the authenticated user's id, or "".
func UserID(c *gin.Context) string {
	return c.GetString(CtxUID)
}

// BearerToken returns the raw token the request was authenticated with.
func BearerToken(c *gin.Context) string {
	return c.GetString(CtxToken)
}

// SetIdentity stores ident on both the Gin context and the request context.
func SetIdentity(c *gin.Context, ident *identity.Identity) {
	c.Set(CtxUID, ident.UID)
	c.Set(CtxIdentity, ident)
	c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), ident))
}
