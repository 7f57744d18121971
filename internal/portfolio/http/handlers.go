package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/techinvestorai/techinvestor-backend/internal/auth"
	"github.com/techinvestorai/techinvestor-backend/internal/portfolio/domain"
)

// GetPortfolio returns the caller's saved symbols.
func (h *Handler) GetPortfolio(c *gin.Context) {
	ident := auth.CurrentIdentity(c)
	if ident == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": MsgLoginToView})
		return
	}

	symbols, err := h.portfolioService.FetchPortfolio(c.Request.Context(), ident.UID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": domain.ErrLoadFailed.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"portfolio": symbols})
}

// AddSymbol adds one symbol to the caller's portfolio.
func (h *Handler) AddSymbol(c *gin.Context) {
	// An unreadable body counts as an empty symbol, so the identity
	// checks still come first.
	var req addSymbolRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			req = addSymbolRequest{}
		}
	}

	symbol, err := h.portfolioService.AddSymbol(c.Request.Context(), auth.CurrentIdentity(c), req.Symbol)
	if err != nil {
		status, msg := addSymbolError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "message": symbol + " added to your portfolio"})
}

func addSymbolError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, domain.ErrEmailNotVerified):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrEmptySymbol):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusBadGateway, domain.ErrAddFailed.Error()
	}
}
