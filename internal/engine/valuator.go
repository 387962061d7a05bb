package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"simutrade-go/internal/market"
	"simutrade-go/internal/models"
)

// timelinePoints is the fixed length of the synthetic valuation curve.
const timelinePoints = 10

// Holding is one position enriched with its current market value.
// QuoteError is set when the symbol's quote could not be fetched; its
// market value is then zero rather than a stale or invented price.
type Holding struct {
	Symbol       string  `json:"symbol"`
	Quantity     float64 `json:"quantity"`
	AveragePrice float64 `json:"averagePrice"`
	MarketValue  float64 `json:"marketValue"`
	QuoteError   bool    `json:"quoteError,omitempty"`
}

// TimelinePoint is one entry of the illustrative valuation curve.
type TimelinePoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Snapshot is the full portfolio valuation returned by /api/portfolio.
type Snapshot struct {
	Cash           float64         `json:"cash"`
	Currency       string          `json:"currency"`
	Holdings       []Holding       `json:"holdings"`
	PortfolioValue float64         `json:"portfolioValue"`
	TotalEquity    float64         `json:"totalEquity"`
	Timeline       []TimelinePoint `json:"timeline"`
}

// QuoteFunc resolves a symbol to its current quote.
type QuoteFunc func(symbol string) (*market.Quote, error)

// Valuate computes per-position market values, the portfolio total, and
// total equity. A failed quote fetch never aborts the valuation: the
// affected holding is flagged and contributes zero market value.
//
// The timeline is a display smoothing heuristic, not a historical
// reconstruction: ten points scaling the current snapshot by a fixed,
// monotonically increasing factor (0.9 + 0.02*i).
func Valuate(account models.Account, positions []models.Position, quoteFn QuoteFunc) Snapshot {
	cash := decimal.NewFromFloat(account.Cash)
	portfolioValue := decimal.Zero

	holdings := make([]Holding, 0, len(positions))
	for _, p := range positions {
		holding := Holding{
			Symbol:       p.Symbol,
			Quantity:     p.Quantity,
			AveragePrice: p.AveragePrice,
		}
		quote, err := quoteFn(p.Symbol)
		if err != nil {
			holding.QuoteError = true
		} else {
			marketValue := decimal.NewFromFloat(p.Quantity).Mul(decimal.NewFromFloat(quote.LatestPrice))
			holding.MarketValue = marketValue.InexactFloat64()
			portfolioValue = portfolioValue.Add(marketValue)
		}
		holdings = append(holdings, holding)
	}

	timeline := make([]TimelinePoint, timelinePoints)
	for i := range timeline {
		factor := decimal.NewFromFloat(0.9 + 0.02*float64(i))
		timeline[i] = TimelinePoint{
			Date:  fmt.Sprintf("Day %d", i+1),
			Value: cash.Add(portfolioValue.Mul(factor)).InexactFloat64(),
		}
	}

	return Snapshot{
		Cash:           account.Cash,
		Currency:       account.Currency,
		Holdings:       holdings,
		PortfolioValue: portfolioValue.InexactFloat64(),
		TotalEquity:    cash.Add(portfolioValue).InexactFloat64(),
		Timeline:       timeline,
	}
}
