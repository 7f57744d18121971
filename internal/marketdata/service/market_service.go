package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/techinvestorai/techinvestor-backend/internal/logging"
	"github.com/techinvestorai/techinvestor-backend/internal/marketdata/domain"
	"github.com/techinvestorai/techinvestor-backend/internal/marketdata/source"
	portfoliodomain "github.com/techinvestorai/techinvestor-backend/internal/portfolio/domain"
)

// MarketService assembles market data views from the configured sources.
type MarketService struct {
	sources source.Sources
	advisor source.Advisor
}

func NewMarketService(sources source.Sources, advisor source.Advisor) *MarketService {
	return &MarketService{sources: sources, advisor: advisor}
}

// Stock returns the detail page of one symbol.
func (s *MarketService) Stock(ctx context.Context, rawSymbol string) (*domain.StockView, error) {
	symbol := portfoliodomain.Normalize(rawSymbol)
	if symbol == "" {
		return nil, domain.ErrEmptySymbol
	}

	details, err := s.sources.Details.Details(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: details: %w", domain.ErrSourceFailed, err)
	}
	news, err := s.sources.News.SymbolNews(ctx, details)
	if err != nil {
		return nil, fmt.Errorf("%w: news: %w", domain.ErrSourceFailed, err)
	}
	posts, err := s.sources.Social.Posts(ctx, []string{symbol})
	if err != nil {
		return nil, fmt.Errorf("%w: posts: %w", domain.ErrSourceFailed, err)
	}
	analysis, err := s.sources.Analysis.Analyze(ctx, details)
	if err != nil {
		return nil, fmt.Errorf("%w: analysis: %w", domain.ErrSourceFailed, err)
	}

	return &domain.StockView{
		Details:  details,
		News:     news,
		Posts:    posts,
		Analysis: analysis,
	}, nil
}

// Quotes returns one quote per symbol, in order.
func (s *MarketService) Quotes(ctx context.Context, symbols []string) ([]domain.Quote, error) {
	quotes := make([]domain.Quote, 0, len(symbols))
	for _, sym := range symbols {
		q, err := s.sources.Quotes.Quote(ctx, sym)
		if err != nil {
			return nil, fmt.Errorf("%w: quote %s: %w", domain.ErrSourceFailed, sym, err)
		}
		quotes = append(quotes, *q)
	}
	return quotes, nil
}

// Posts returns social posts about symbols. No symbols means no posts.
func (s *MarketService) Posts(ctx context.Context, symbols []string) ([]string, error) {
	if len(symbols) == 0 {
		return []string{}, nil
	}
	posts, err := s.sources.Social.Posts(ctx, symbols)
	if err != nil {
		return nil, fmt.Errorf("%w: posts: %w", domain.ErrSourceFailed, err)
	}
	return posts, nil
}

// Ask forwards a question to the advisor. Blank questions are rejected
// without calling it.
func (s *MarketService) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", domain.ErrEmptyQuestion
	}

	answer, err := s.advisor.Ask(ctx, question)
	if err != nil {
		logging.Op(ctx, "market.ask").Warn().Err(err).Msg("advisor failed")
		return "", fmt.Errorf("%w: %w", domain.ErrAdvisorFailed, err)
	}
	return answer, nil
}
