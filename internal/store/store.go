package store

import (
	"context"
	"errors"
	"time"

	"simutrade-go/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store is the persistence boundary for the single simulated account, its
// positions, and the append-only trade ledger. Implementations must make
// ApplyFill atomic: the cash update, position change, and trade row commit
// together or not at all.
type Store interface {
	// Account returns the one account row.
	Account(ctx context.Context) (models.Account, error)

	// Positions returns all open positions.
	Positions(ctx context.Context) ([]models.Position, error)

	// Position returns the position for a symbol, or ErrNotFound.
	Position(ctx context.Context, symbol string) (models.Position, error)

	// SetCash overwrites the account cash balance.
	SetCash(ctx context.Context, cash float64) error

	// UpsertPosition inserts or replaces the position for its symbol.
	UpsertPosition(ctx context.Context, position models.Position) error

	// RemovePosition deletes the position for a symbol, if present.
	RemovePosition(ctx context.Context, symbol string) error

	// AppendTrade appends one trade to the ledger.
	AppendTrade(ctx context.Context, trade *models.Trade) error

	// Trades lists the ledger, most recent first.
	Trades(ctx context.Context) ([]models.Trade, error)

	// ApplyFill atomically commits the outcome of one executed order:
	// the new cash balance, the new position (removed when nil), and the
	// trade record.
	ApplyFill(ctx context.Context, account models.Account, position *models.Position, symbol string, trade *models.Trade) error
}

// Seed is the initial demo state loaded into an empty store.
type Seed struct {
	Account   models.Account
	Positions []models.Position
	Trades    []models.Trade
}

// DefaultSeed returns the stock demo portfolio: 25k USD in cash, a little
// AAPL and BTC, and one historical trade.
func DefaultSeed() Seed {
	return Seed{
		Account: models.Account{
			ID:       1,
			Email:    "demo@simutrade.io",
			Cash:     25000,
			Currency: "USD",
		},
		Positions: []models.Position{
			{Symbol: "AAPL", Quantity: 12, AveragePrice: 170.12},
			{Symbol: "BTC", Quantity: 0.4, AveragePrice: 28000.0},
		},
		Trades: []models.Trade{
			{
				Symbol:    "AAPL",
				Side:      models.SideBuy,
				Price:     168.25,
				Quantity:  10,
				Timestamp: time.Now().Add(-24 * time.Hour),
			},
		},
	}
}
