package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/techinvestorai/techinvestor-backend/internal/marketdata/domain"
)

func (h *Handler) GetStock(c *gin.Context) {
	view, err := h.marketService.Stock(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		if errors.Is(err, domain.ErrEmptySymbol) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": domain.ErrSourceFailed.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetNews serves the cached market news board.
func (h *Handler) GetNews(c *gin.Context) {
	board, err := h.newsBoard.Current(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": domain.ErrSourceFailed.Error()})
		return
	}
	c.JSON(http.StatusOK, board)
}

// Ask answers an investing question.
func (h *Handler) Ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	answer, err := h.marketService.Ask(c.Request.Context(), req.Query)
	switch {
	case errors.Is(err, domain.ErrEmptyQuestion):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusBadGateway, gin.H{"error": domain.ErrAdvisorFailed.Error()})
	default:
		c.JSON(http.StatusOK, askResponse{Answer: answer})
	}
}
