package bootstrap

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/techinvestorai/techinvestor-backend/config"
	"github.com/techinvestorai/techinvestor-backend/internal/api/http/routes"
	authservice "github.com/techinvestorai/techinvestor-backend/internal/auth/service"
	marketservice "github.com/techinvestorai/techinvestor-backend/internal/marketdata/service"
	"github.com/techinvestorai/techinvestor-backend/internal/marketdata/source"
	portfolioservice "github.com/techinvestorai/techinvestor-backend/internal/portfolio/service"
	"github.com/techinvestorai/techinvestor-backend/internal/quiz"
	"github.com/techinvestorai/techinvestor-backend/internal/session"
)

// BuildServices wires the domain services on top of the opened backends.
// The returned session manager is not started yet.
func BuildServices(ctx context.Context, cfg *config.Config, b *Backends, log zerolog.Logger) (routes.V1Deps, error) {
	managerOpts := []session.Option{
		session.WithLogger(log.With().Str("component", "session").Logger()),
		session.WithIdentityTTL(cfg.Identity.SessionTTL),
	}
	if cfg.Redis.SessionBroker {
		broker := session.NewRedisBroker(b.Redis, session.DefaultChannel, log)
		managerOpts = append(managerOpts, session.WithBroker(broker))
		log.Info().Str("instance", broker.InstanceID()).Msg("session broker enabled")
	}
	manager := session.NewManager(b.Provider, managerOpts...)

	mock := source.NewMock(cfg.Market.MockLatency)
	sources := source.FromMock(mock)

	var advisor source.Advisor = mock
	if cfg.Market.GeminiAPIKey != "" {
		gemini, err := source.NewGeminiAdvisor(ctx, cfg.Market.GeminiAPIKey,
			source.WithGeminiModel(cfg.Market.GeminiModel),
			source.WithGeminiLogger(log),
		)
		if err != nil {
			return routes.V1Deps{}, fmt.Errorf("gemini advisor: %w", err)
		}
		advisor = gemini
		log.Info().Str("model", cfg.Market.GeminiModel).Msg("gemini advisor enabled")
	}

	portfolio := portfolioservice.NewPortfolioService(b.Store)

	return routes.V1Deps{
		Provider:  b.Provider,
		Sessions:  manager,
		Auth:      authservice.NewAuthService(b.Provider, portfolio, b.Profiles),
		Portfolio: portfolio,
		Market:    marketservice.NewMarketService(sources, advisor),
		News:      marketservice.NewNewsBoard(sources.MarketNews, log.With().Str("component", "news").Logger()),
		Quiz:      quiz.NewBank(),
	}, nil
}
