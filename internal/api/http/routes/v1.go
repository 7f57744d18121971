package routes

import (
	"github.com/gin-gonic/gin"

	authhttp "github.com/techinvestorai/techinvestor-backend/internal/auth/http"
	"github.com/techinvestorai/techinvestor-backend/internal/auth/middleware"
	authservice "github.com/techinvestorai/techinvestor-backend/internal/auth/service"
	dashboardhttp "github.com/techinvestorai/techinvestor-backend/internal/dashboard/http"
	dashboardservice "github.com/techinvestorai/techinvestor-backend/internal/dashboard/service"
	"github.com/techinvestorai/techinvestor-backend/internal/identity"
	markethttp "github.com/techinvestorai/techinvestor-backend/internal/marketdata/http"
	marketservice "github.com/techinvestorai/techinvestor-backend/internal/marketdata/service"
	portfoliohttp "github.com/techinvestorai/techinvestor-backend/internal/portfolio/http"
	portfolioservice "github.com/techinvestorai/techinvestor-backend/internal/portfolio/service"
	"github.com/techinvestorai/techinvestor-backend/internal/quiz"
	quizhttp "github.com/techinvestorai/techinvestor-backend/internal/quiz/http"
	"github.com/techinvestorai/techinvestor-backend/internal/session"
	sessionhttp "github.com/techinvestorai/techinvestor-backend/internal/session/http"
)

type V1Deps struct {
	Provider  identity.Provider
	Sessions  *session.Manager
	Auth      *authservice.AuthService
	Portfolio *portfolioservice.PortfolioService
	Market    *marketservice.MarketService
	News      *marketservice.NewsBoard
	Quiz      *quiz.Bank
}

func RegisterV1(r *gin.Engine, dep V1Deps) {
	api := r.Group("/api/v1")

	requireAuth := middleware.RequireAuth(dep.Provider, dep.Sessions)
	optionalAuth := middleware.OptionalAuth(dep.Provider, dep.Sessions)

	// Login and signup must work with a stale token in the browser, so
	// /auth is mounted without optionalAuth.
	authhttp.New(dep.Auth).Register(api, requireAuth)
	sessionhttp.New(dep.Sessions).Register(api, optionalAuth, requireAuth)

	markethttp.New(dep.Market, dep.News).Register(api)
	quizhttp.New(dep.Quiz).Register(api)

	user := api.Group("", optionalAuth)
	portfoliohttp.New(dep.Portfolio).Register(user)
	dashboardhttp.New(dashboardservice.NewDashboardService(dep.Portfolio, dep.Market)).Register(user)
}
