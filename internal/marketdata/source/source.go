// Package source defines the pluggable market-data boundaries and their
// implementations. Nothing here is a real market feed: Mock generates
// random figures and GeminiAdvisor answers investing questions.
package source

import (
	"context"

	"github.com/techinvestorai/techinvestor-backend/internal/marketdata/domain"
)

type QuoteSource interface {
	Quote(ctx context.Context, symbol string) (*domain.Quote, error)
}

type DetailsSource interface {
	Details(ctx context.Context, symbol string) (*domain.SymbolDetails, error)
}

// NewsSource returns headlines about the symbol described by d.
type NewsSource interface {
	SymbolNews(ctx context.Context, d *domain.SymbolDetails) ([]domain.NewsItem, error)
}

type MarketNewsSource interface {
	MarketNews(ctx context.Context) ([]domain.MarketNewsItem, error)
}

// SocialSource returns embeddable post ids about the given symbols.
type SocialSource interface {
	Posts(ctx context.Context, symbols []string) ([]string, error)
}

type AnalysisSource interface {
	Analyze(ctx context.Context, d *domain.SymbolDetails) ([]domain.AnalysisPoint, error)
}

type Advisor interface {
	Ask(ctx context.Context, question string) (string, error)
}

// Sources groups every data boundary except the advisor.
type Sources struct {
	Quotes     QuoteSource
	Details    DetailsSource
	News       NewsSource
	MarketNews MarketNewsSource
	Social     SocialSource
	Analysis   AnalysisSource
}

// FromMock wires every boundary to m.
func FromMock(m *Mock) Sources {
	return Sources{
		Quotes:     m,
		Details:    m,
		News:       m,
		MarketNews: m,
		Social:     m,
		Analysis:   m,
	}
}
