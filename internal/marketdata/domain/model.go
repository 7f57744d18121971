package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Recommendation string

const (
	RecommendBuy  Recommendation = "buy"
	RecommendHold Recommendation = "hold"
	RecommendSell Recommendation = "sell"
)

type AnalysisType string

const (
	AnalysisPositive AnalysisType = "positive"
	AnalysisNegative AnalysisType = "negative"
	AnalysisNeutral  AnalysisType = "neutral"
)

// Quote is the summary shown in the portfolio list.
type Quote struct {
	Symbol         string          `json:"symbol"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	Recommendation Recommendation  `json:"recommendation"`
}

type DebtorDays struct {
	Current  decimal.Decimal `json:"current"`
	Previous decimal.Decimal `json:"previous"`
}

// SymbolDetails holds the figures of the stock detail page. MarketCap is
// in billions of dollars.
type SymbolDetails struct {
	Symbol      string          `json:"symbol"`
	Name        string          `json:"name"`
	Exchange    string          `json:"exchange"`
	Price       decimal.Decimal `json:"price"`
	High        decimal.Decimal `json:"high"`
	Low         decimal.Decimal `json:"low"`
	Open        decimal.Decimal `json:"open"`
	PrevClose   decimal.Decimal `json:"prev_close"`
	MarketCap   decimal.Decimal `json:"market_cap"`
	PERatio     decimal.Decimal `json:"pe_ratio"`
	BookValue   decimal.Decimal `json:"book_value"`
	Dividend    decimal.Decimal `json:"dividend"`
	ROE         decimal.Decimal `json:"roe"`
	OtherIncome decimal.Decimal `json:"other_income"`
	DebtorDays  DebtorDays      `json:"debtor_days"`
}

// NewsItem is a headline about one symbol.
type NewsItem struct {
	ID        string    `json:"id"`
	Headline  string    `json:"headline"`
	URL       string    `json:"url"`
	Published time.Time `json:"published"`
}

// MarketNewsItem is a general market headline.
type MarketNewsItem struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	URL    string `json:"url"`
	Source string `json:"source"`
}

type AnalysisPoint struct {
	Point       string       `json:"point"`
	Type        AnalysisType `json:"type"`
	Explanation string       `json:"explanation"`
}

// StockView is everything the stock detail page renders.
type StockView struct {
	Details  *SymbolDetails  `json:"details"`
	News     []NewsItem      `json:"news"`
	Posts    []string        `json:"posts"`
	Analysis []AnalysisPoint `json:"analysis"`
}
