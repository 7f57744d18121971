package http

import "github.com/gin-gonic/gin"

// Register mounts the portfolio routes. rg must run OptionalAuth so that
// anonymous callers get the login prompt instead of a bare 401.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/portfolio", h.GetPortfolio)
	rg.POST("/portfolio/symbols", h.AddSymbol)
}
