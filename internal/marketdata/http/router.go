package http

import "github.com/gin-gonic/gin"

// Register mounts the market data routes. None of them need an identity.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/stocks/:symbol", h.GetStock)
	rg.GET("/news", h.GetNews)
	rg.POST("/ask", h.Ask)
}
