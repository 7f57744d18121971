package http

import "github.com/techinvestorai/techinvestor-backend/internal/portfolio/service"

type Handler struct {
	portfolioService *service.PortfolioService
}

func New(portfolioService *service.PortfolioService) *Handler {
	return &Handler{portfolioService: portfolioService}
}

type addSymbolRequest struct {
	Symbol string `json:"symbol"`
}

// MsgLoginToView is shown to anonymous callers of the portfolio views.
const MsgLoginToView = "Please log in to view your portfolio."
