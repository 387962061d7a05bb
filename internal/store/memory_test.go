package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"simutrade-go/internal/models"
)

func TestMemory_SeededState(t *testing.T) {
	m := NewMemory(DefaultSeed())
	ctx := context.Background()

	account, err := m.Account(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 25000.0, account.Cash)
	assert.Equal(t, "USD", account.Currency)

	positions, err := m.Positions(ctx)
	assert.NoError(t, err)
	assert.Len(t, positions, 2)
	assert.Equal(t, "AAPL", positions[0].Symbol)
	assert.Equal(t, "BTC", positions[1].Symbol)

	trades, err := m.Trades(ctx)
	assert.NoError(t, err)
	assert.Len(t, trades, 1)
}

func TestMemory_PositionLookup(t *testing.T) {
	m := NewMemory(DefaultSeed())
	ctx := context.Background()

	p, err := m.Position(ctx, "btc") // lookup is case-insensitive
	assert.NoError(t, err)
	assert.Equal(t, 0.4, p.Quantity)

	_, err = m.Position(ctx, "TSLA")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_ApplyFill_UpsertsPosition(t *testing.T) {
	m := NewMemory(DefaultSeed())
	ctx := context.Background()

	err := m.ApplyFill(ctx,
		models.Account{ID: 1, Cash: 22191.5944, Currency: "USD"},
		&models.Position{Symbol: "BTC", Quantity: 0.5, AveragePrice: 28011.2},
		"BTC",
		&models.Trade{Symbol: "BTC", Side: models.SideBuy, Price: 28056, Quantity: 0.1, Timestamp: time.Now()},
	)
	assert.NoError(t, err)

	account, _ := m.Account(ctx)
	assert.Equal(t, 22191.5944, account.Cash)

	p, err := m.Position(ctx, "BTC")
	assert.NoError(t, err)
	assert.Equal(t, 0.5, p.Quantity)
	assert.Equal(t, 28011.2, p.AveragePrice)

	trades, _ := m.Trades(ctx)
	assert.Len(t, trades, 2)
	// Most recent first.
	assert.Equal(t, "BTC", trades[0].Symbol)
	assert.NotZero(t, trades[0].ID)
}

func TestMemory_ApplyFill_RemovesEmptiedPosition(t *testing.T) {
	m := NewMemory(DefaultSeed())
	ctx := context.Background()

	err := m.ApplyFill(ctx,
		models.Account{ID: 1, Cash: 27153.52432, Currency: "USD"},
		nil, // sold down to zero
		"AAPL",
		&models.Trade{Symbol: "AAPL", Side: models.SideSell, Price: 179.64, Quantity: 12, Timestamp: time.Now()},
	)
	assert.NoError(t, err)

	_, err = m.Position(ctx, "AAPL")
	assert.ErrorIs(t, err, ErrNotFound)

	positions, _ := m.Positions(ctx)
	assert.Len(t, positions, 1)
}

func TestMemory_TradesOrderedMostRecentFirst(t *testing.T) {
	m := NewMemory(Seed{Account: models.Account{ID: 1, Cash: 100}})
	ctx := context.Background()

	for i, symbol := range []string{"A", "B", "C"} {
		err := m.AppendTrade(ctx, &models.Trade{
			Symbol:    symbol,
			Side:      models.SideBuy,
			Timestamp: time.Now().Add(time.Duration(i) * time.Minute),
		})
		assert.NoError(t, err)
	}

	trades, err := m.Trades(ctx)
	assert.NoError(t, err)
	assert.Equal(t, []string{"C", "B", "A"}, []string{trades[0].Symbol, trades[1].Symbol, trades[2].Symbol})
}
