package http

import "github.com/techinvestorai/techinvestor-backend/internal/marketdata/service"

type Handler struct {
	marketService *service.MarketService
	newsBoard     *service.NewsBoard
}

func New(marketService *service.MarketService, newsBoard *service.NewsBoard) *Handler {
	return &Handler{marketService: marketService, newsBoard: newsBoard}
}

type askRequest struct {
	Query string `json:"query"`
}

type askResponse struct {
	Answer string `json:"answer"`
}
