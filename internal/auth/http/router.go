package http

import "github.com/gin-gonic/gin"

// Register mounts the /auth routes. requireAuth guards the routes that act
// on an existing session.
func (h *Handler) Register(rg *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	g := rg.Group("/auth")
	g.POST("/signup", h.SignUp)
	g.POST("/login", h.Login)
	g.POST("/logout", requireAuth, h.Logout)
	g.POST("/verification", requireAuth, h.ResendVerification)
	g.GET("/profile", requireAuth, h.GetProfile)
}
