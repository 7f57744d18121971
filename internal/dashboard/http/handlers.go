package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/techinvestorai/techinvestor-backend/internal/auth"
	"github.com/techinvestorai/techinvestor-backend/internal/dashboard/service"
	portfoliodomain "github.com/techinvestorai/techinvestor-backend/internal/portfolio/domain"
	portfoliohttp "github.com/techinvestorai/techinvestor-backend/internal/portfolio/http"
)

type Handler struct {
	dashboardService *service.DashboardService
}

func New(dashboardService *service.DashboardService) *Handler {
	return &Handler{dashboardService: dashboardService}
}

// Register mounts the dashboard routes behind OptionalAuth.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/dashboard/portfolio", h.GetHoldings)
	rg.GET("/dashboard/social", h.GetSocial)
}

func (h *Handler) GetHoldings(c *gin.Context) {
	ident := auth.CurrentIdentity(c)
	if ident == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": portfoliohttp.MsgLoginToView})
		return
	}

	quotes, err := h.dashboardService.Holdings(c.Request.Context(), ident.UID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"portfolio": quotes})
}

func (h *Handler) GetSocial(c *gin.Context) {
	ident := auth.CurrentIdentity(c)
	if ident == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": portfoliohttp.MsgLoginToView})
		return
	}

	posts, err := h.dashboardService.SocialPosts(c.Request.Context(), ident.UID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func writeError(c *gin.Context, err error) {
	msg := service.ErrMarketData.Error()
	if errors.Is(err, portfoliodomain.ErrLoadFailed) {
		msg = portfoliodomain.ErrLoadFailed.Error()
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": msg})
}
