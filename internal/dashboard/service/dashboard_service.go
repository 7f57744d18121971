// Package service composes the saved portfolio with market data for the
// dashboard views.
package service

import (
	"context"
	"errors"

	"github.com/techinvestorai/techinvestor-backend/internal/logging"
	"github.com/techinvestorai/techinvestor-backend/internal/marketdata/domain"
	marketservice "github.com/techinvestorai/techinvestor-backend/internal/marketdata/service"
	portfolioservice "github.com/techinvestorai/techinvestor-backend/internal/portfolio/service"
)

// ErrMarketData is returned when the portfolio loaded but its market data
// did not.
var ErrMarketData = errors.New("Failed to load market data")

type DashboardService struct {
	portfolio *portfolioservice.PortfolioService
	market    *marketservice.MarketService
}

func NewDashboardService(portfolio *portfolioservice.PortfolioService, market *marketservice.MarketService) *DashboardService {
	return &DashboardService{portfolio: portfolio, market: market}
}

// Holdings returns a quote for every saved symbol, in portfolio order.
func (s *DashboardService) Holdings(ctx context.Context, userID string) ([]domain.Quote, error) {
	symbols, err := s.portfolio.FetchPortfolio(ctx, userID)
	if err != nil {
		return nil, err
	}

	quotes, err := s.market.Quotes(ctx, symbols)
	if err != nil {
		logging.Op(ctx, "dashboard.holdings").Warn().Err(err).Str("user_id", userID).Msg("quotes failed")
		return nil, errors.Join(ErrMarketData, err)
	}
	return quotes, nil
}

// SocialPosts returns post ids about the saved symbols. An empty
// portfolio has no posts.
func (s *DashboardService) SocialPosts(ctx context.Context, userID string) ([]string, error) {
	symbols, err := s.portfolio.FetchPortfolio(ctx, userID)
	if err != nil {
		return nil, err
	}

	posts, err := s.market.Posts(ctx, symbols)
	if err != nil {
		return nil, errors.Join(ErrMarketData, err)
	}
	return posts, nil
}

