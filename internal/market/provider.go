package market

import (
	"context"
	"errors"
)

// ErrQuoteUnavailable marks an upstream market-data failure: the fetch
// failed, timed out, or returned data with no usable price. Callers must
// treat it as a fault, never as a zero price.
var ErrQuoteUnavailable = errors.New("quote unavailable")

// PricePoint is one entry of a quote's recent price history.
type PricePoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// Quote is a snapshot price plus roughly a month of daily history,
// chronological. Execution pricing uses LatestPrice only; History feeds
// the dashboard chart.
type Quote struct {
	LatestPrice float64      `json:"latestPrice"`
	History     []PricePoint `json:"history"`
}

// Provider fetches a quote for a ticker symbol.
type Provider interface {
	GetQuote(ctx context.Context, symbol string) (*Quote, error)
}
