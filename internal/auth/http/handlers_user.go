package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/techinvestorai/techinvestor-backend/internal/auth"
	"github.com/techinvestorai/techinvestor-backend/internal/auth/domain"
	"github.com/techinvestorai/techinvestor-backend/internal/identity"
)

// SignUp creates an account and sends the verification email
func (h *Handler) SignUp(c *gin.Context) {
	var req domain.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingFields.Error()})
		return
	}

	result, err := h.authService.SignUp(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, domain.ErrSignupFailed)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session":           result.Session,
		"verification_sent": result.VerificationSent,
		"message":           "Account created! Please check your email to verify your account.",
	})
}

// Login exchanges email and password for a session token
func (h *Handler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingFields.Error()})
		return
	}

	sess, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, domain.ErrLoginFailed)
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": sess})
}

// Logout revokes the caller's sessions
func (h *Handler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), auth.UserID(c)); err != nil {
		respondError(c, err, domain.ErrLogoutFailed)
		return
	}
	c.Status(http.StatusNoContent)
}

// ResendVerification mails a new verification link to the caller
func (h *Handler) ResendVerification(c *gin.Context) {
	ident := auth.CurrentIdentity(c)
	if ident != nil && ident.EmailVerified {
		c.JSON(http.StatusOK, gin.H{"message": "Email already verified"})
		return
	}

	if err := h.authService.ResendVerification(c.Request.Context(), ident, auth.BearerToken(c)); err != nil {
		respondError(c, err, domain.ErrVerifyFailed)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Verification email sent"})
}

// GetProfile returns the current user's mirrored profile
func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := h.authService.Profile(c.Request.Context(), auth.UserID(c))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": profile})
}

func respondError(c *gin.Context, err, fallback error) {
	var perr *identity.ProviderError
	switch {
	case errors.Is(err, domain.ErrMissingFields), errors.Is(err, domain.ErrPasswordTooShort):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrBadCredentials), errors.Is(err, domain.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrEmailNotVerified):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrEmailInUse):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, identity.ErrTooManyAttempts):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many attempts, please try again later"})
	case errors.As(err, &perr) && perr.Code < http.StatusInternalServerError:
		c.JSON(http.StatusBadRequest, gin.H{"error": perr.Message})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": fallback.Error()})
	}
}
