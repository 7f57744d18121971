package source

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/techinvestorai/techinvestor-backend/internal/marketdata/domain"
)

// Posts embedded by the social feed and the stock page.
var demoPostIDs = []string{
	"1767742391092162561",
	"1767741891092162561",
	"1767741791092162561",
}

var marketHeadlines = []domain.MarketNewsItem{
	{ID: "1", Title: "Tech Stocks Rally on Positive Earnings Reports", URL: "#", Source: "Financial Times"},
	{ID: "2", Title: "What the Latest Fed Decision Means for Your Portfolio", URL: "#", Source: "Bloomberg"},
	{ID: "3", Title: "Top 5 Undervalued Tech Stocks to Watch in 2024", URL: "#", Source: "CNBC"},
	{ID: "4", Title: "Market Analysis: Is Another Bull Run Coming?", URL: "#", Source: "Wall Street Journal"},
	{ID: "5", Title: "How AI is Transforming Investment Strategies", URL: "#", Source: "Reuters"},
}

var cannedAnswers = []string{
	"When investing in tech stocks, consider the company's growth potential, competitive advantage, and leadership team. Look for companies with strong financial health and sustainable business models.",
	"Diversification is key when building a stock portfolio. Don't put all your investments in a single sector or company, regardless of how promising it seems.",
	"P/E ratio (Price to Earnings) helps assess if a stock is overvalued or undervalued. A lower P/E might indicate an undervalued stock, but always look at industry averages for context.",
	"For beginners, consider starting with ETFs (Exchange Traded Funds) which offer instant diversification across many stocks.",
	"Dollar-cost averaging, investing fixed amounts regularly regardless of market conditions, can help reduce the impact of market volatility on your investments.",
}

var recommendations = []domain.Recommendation{domain.RecommendBuy, domain.RecommendHold, domain.RecommendSell}

// Mock generates random market data. Details and MarketNews wait for the
// configured latency, Ask waits one and a half times as long. Derived
// data (news, analysis, posts) and quotes return immediately.
type Mock struct {
	mu      sync.Mutex
	rng     *rand.Rand
	latency time.Duration
	now     func() time.Time
}

var _ Advisor = (*Mock)(nil)

type MockOption func(*Mock)

// WithRand makes the generated figures deterministic.
func WithRand(r *rand.Rand) MockOption {
	return func(m *Mock) { m.rng = r }
}

func WithClock(now func() time.Time) MockOption {
	return func(m *Mock) { m.now = now }
}

func NewMock(latency time.Duration, opts ...MockOption) *Mock {
	m := &Mock{
		rng:     rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x7ec4)),
		latency: latency,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Mock) float() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rng.Float64()
}

func (m *Mock) intn(n int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rng.IntN(n)
}

// between returns a random value in [base, base+span) rounded to places.
func (m *Mock) between(base, span float64, places int32) decimal.Decimal {
	return decimal.NewFromFloat(m.float()*span + base).Round(places)
}

func (m *Mock) Quote(ctx context.Context, symbol string) (*domain.Quote, error) {
	return &domain.Quote{
		Symbol:         symbol,
		Name:           symbol + " Corp.",
		Price:          m.between(50, 500, 2),
		Recommendation: recommendations[m.intn(len(recommendations))],
	}, nil
}

func (m *Mock) Details(ctx context.Context, symbol string) (*domain.SymbolDetails, error) {
	if err := sleep(ctx, m.latency); err != nil {
		return nil, err
	}
	return &domain.SymbolDetails{
		Symbol:      symbol,
		Name:        symbol + " Technologies Inc.",
		Exchange:    "NASDAQ",
		Price:       m.between(50, 500, 2),
		High:        m.between(60, 500, 2),
		Low:         m.between(40, 500, 2),
		Open:        m.between(45, 500, 2),
		PrevClose:   m.between(48, 500, 2),
		MarketCap:   m.between(5, 100, 1),
		PERatio:     m.between(10, 40, 1),
		BookValue:   decimal.RequireFromString("7.58"),
		Dividend:    decimal.Zero,
		ROE:         decimal.RequireFromString("-0.49"),
		OtherIncome: decimal.NewFromInt(1077),
		DebtorDays: domain.DebtorDays{
			Current:  decimal.RequireFromString("35.1"),
			Previous: decimal.RequireFromString("27.5"),
		},
	}, nil
}

func (m *Mock) SymbolNews(ctx context.Context, d *domain.SymbolDetails) ([]domain.NewsItem, error) {
	now := m.now()
	day := 24 * time.Hour
	target := d.Price.Mul(decimal.RequireFromString("1.2")).StringFixed(2)
	return []domain.NewsItem{
		{ID: "1", Headline: fmt.Sprintf("%s Reports Strong Q2 Earnings, Beats Expectations", d.Symbol), URL: "#", Published: now.Add(-day)},
		{ID: "2", Headline: fmt.Sprintf("Analysts Set $%s Price Target for %s", target, d.Symbol), URL: "#", Published: now.Add(-2 * day)},
		{ID: "3", Headline: fmt.Sprintf("%s Announces New Product Line, Shares Jump 5%%", d.Symbol), URL: "#", Published: now.Add(-3 * day)},
		{ID: "4", Headline: fmt.Sprintf("Institutional Investors Increase Positions in %s", d.Symbol), URL: "#", Published: now.Add(-4 * day)},
	}, nil
}

func (m *Mock) MarketNews(ctx context.Context) ([]domain.MarketNewsItem, error) {
	if err := sleep(ctx, m.latency); err != nil {
		return nil, err
	}
	return append([]domain.MarketNewsItem(nil), marketHeadlines...), nil
}

// Posts returns the demo posts, or nothing when there are no symbols.
func (m *Mock) Posts(ctx context.Context, symbols []string) ([]string, error) {
	if len(symbols) == 0 {
		return []string{}, nil
	}
	return append([]string(nil), demoPostIDs...), nil
}

func (m *Mock) Analyze(ctx context.Context, d *domain.SymbolDetails) ([]domain.AnalysisPoint, error) {
	bookType := domain.AnalysisPositive
	if d.BookValue.GreaterThan(decimal.NewFromInt(5)) {
		bookType = domain.AnalysisNegative
	}
	return []domain.AnalysisPoint{
		{
			Point:       fmt.Sprintf("Stock is trading at %s times its book value", d.BookValue),
			Type:        bookType,
			Explanation: "A high price-to-book ratio might indicate overvaluation",
		},
		{
			Point:       "Company is not paying dividends despite profitability",
			Type:        domain.AnalysisNeutral,
			Explanation: "This could indicate the company is reinvesting in growth",
		},
		{
			Point:       fmt.Sprintf("Return on Equity (ROE) of %s%% over last 3 years", d.ROE),
			Type:        domain.AnalysisNegative,
			Explanation: "Negative ROE indicates poor profitability",
		},
		{
			Point:       fmt.Sprintf("Other income of ₹%s Cr in earnings", d.OtherIncome),
			Type:        domain.AnalysisNeutral,
			Explanation: "High other income might not represent core business strength",
		},
		{
			Point:       fmt.Sprintf("Debtor days increased from %s to %s", d.DebtorDays.Previous, d.DebtorDays.Current),
			Type:        domain.AnalysisNegative,
			Explanation: "Increasing debtor days might indicate collection issues",
		},
	}, nil
}

func (m *Mock) Ask(ctx context.Context, question string) (string, error) {
	if err := sleep(ctx, m.latency*3/2); err != nil {
		return "", err
	}
	return cannedAnswers[m.intn(len(cannedAnswers))], nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
