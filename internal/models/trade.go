package models

import "time"

// Trade sides and order types accepted by the API.
const (
	SideBuy  = "buy"
	SideSell = "sell"

	OrderTypeMarket = "market"
	OrderTypeLimit  = "limit"
)

// Trade is an immutable record of one executed order.
// Price is the slippage-adjusted execution price, not the raw quote.
type Trade struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Symbol    string    `gorm:"index" json:"symbol"`
	Side      string    `json:"type"` // "buy" or "sell"
	Price     float64   `json:"price"`
	Quantity  float64   `json:"quantity"`
	Timestamp time.Time `gorm:"index" json:"timestamp"`
}
