package trading

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"simutrade-go/internal/engine"
	"simutrade-go/internal/market"
	"simutrade-go/internal/models"
	"simutrade-go/internal/store"
)

// MockProvider is a mock implementation of market.Provider.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) GetQuote(ctx context.Context, symbol string) (*market.Quote, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*market.Quote), args.Error(1)
}

// setupService creates a service over a seeded memory store and mock quotes.
func setupService(t *testing.T) (*Service, *store.Memory, *MockProvider) {
	st := store.NewMemory(store.DefaultSeed())
	quotes := new(MockProvider)
	svc := NewService(zap.NewNop(), st, quotes, engine.New(0.001, 0.002), time.Second)
	return svc, st, quotes
}

func TestPlaceOrder_BuyAddsToExistingPosition(t *testing.T) {
	// Arrange: seed holds BTC 0.4 @ 28000; buy 0.1 more at latest 28000.
	svc, st, quotes := setupService(t)
	quotes.On("GetQuote", mock.Anything, "BTC").Return(&market.Quote{LatestPrice: 28000}, nil)

	// Act
	fill, err := svc.PlaceOrder(context.Background(), OrderRequest{
		Symbol: "btc", Side: models.SideBuy, Quantity: 0.1, OrderType: models.OrderTypeMarket,
	})

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 28056.0, fill.Trade.Price)

	account, _ := st.Account(context.Background())
	assert.Equal(t, 22191.5944, account.Cash)

	p, err := st.Position(context.Background(), "BTC")
	assert.NoError(t, err)
	assert.Equal(t, 0.5, p.Quantity)
	// (0.4*28000 + 0.1*28056) / 0.5
	assert.Equal(t, 28011.2, p.AveragePrice)

	trades, _ := st.Trades(context.Background())
	assert.Len(t, trades, 2)
	assert.Equal(t, "BTC", trades[0].Symbol)
	quotes.AssertExpectations(t)
}

func TestPlaceOrder_SellEverything(t *testing.T) {
	svc, st, quotes := setupService(t)
	quotes.On("GetQuote", mock.Anything, "AAPL").Return(&market.Quote{LatestPrice: 180}, nil)

	fill, err := svc.PlaceOrder(context.Background(), OrderRequest{
		Symbol: "AAPL", Side: models.SideSell, Quantity: 12, OrderType: models.OrderTypeMarket,
	})

	assert.NoError(t, err)
	assert.Equal(t, 179.64, fill.Trade.Price)
	assert.Nil(t, fill.Position)

	_, err = st.Position(context.Background(), "AAPL")
	assert.ErrorIs(t, err, store.ErrNotFound)

	account, _ := st.Account(context.Background())
	assert.Equal(t, 25000+2153.52432, account.Cash)
}

func TestPlaceOrder_DefaultsToMarketOrder(t *testing.T) {
	svc, _, quotes := setupService(t)
	quotes.On("GetQuote", mock.Anything, "AAPL").Return(&market.Quote{LatestPrice: 180}, nil)

	fill, err := svc.PlaceOrder(context.Background(), OrderRequest{
		Symbol: "AAPL", Side: models.SideBuy, Quantity: 1,
	})

	assert.NoError(t, err)
	assert.Equal(t, 180.36, fill.Trade.Price)
}

func TestPlaceOrder_RejectionLeavesStoreUntouched(t *testing.T) {
	// Arrange: cash cannot cover 10 TSLA at 50.
	svc, st, quotes := setupService(t)
	quotes.On("GetQuote", mock.Anything, "TSLA").Return(&market.Quote{LatestPrice: 50000}, nil)

	before, _ := st.Account(context.Background())
	beforePositions, _ := st.Positions(context.Background())
	beforeTrades, _ := st.Trades(context.Background())

	// Act
	fill, err := svc.PlaceOrder(context.Background(), OrderRequest{
		Symbol: "TSLA", Side: models.SideBuy, Quantity: 10, OrderType: models.OrderTypeMarket,
	})

	// Assert: typed rejection, no mutation anywhere.
	assert.Nil(t, fill)
	rejection, ok := engine.AsRejection(err)
	assert.True(t, ok)
	assert.Equal(t, engine.RejectInsufficientCash, rejection.Kind)

	after, _ := st.Account(context.Background())
	afterPositions, _ := st.Positions(context.Background())
	afterTrades, _ := st.Trades(context.Background())
	assert.Equal(t, before, after)
	assert.Equal(t, beforePositions, afterPositions)
	assert.Equal(t, beforeTrades, afterTrades)
}

func TestPlaceOrder_QuoteFailurePropagates(t *testing.T) {
	svc, st, quotes := setupService(t)
	quotes.On("GetQuote", mock.Anything, "AAPL").Return(nil, market.ErrQuoteUnavailable)

	fill, err := svc.PlaceOrder(context.Background(), OrderRequest{
		Symbol: "AAPL", Side: models.SideBuy, Quantity: 1, OrderType: models.OrderTypeMarket,
	})

	assert.Nil(t, fill)
	assert.ErrorIs(t, err, market.ErrQuoteUnavailable)

	trades, _ := st.Trades(context.Background())
	assert.Len(t, trades, 1) // seed trade only
}

func TestPlaceOrder_ConcurrentOrdersDoNotLoseUpdates(t *testing.T) {
	// Ten concurrent buys must each debit cash; a lost read-modify-write
	// update would leave the final balance too high.
	svc, st, quotes := setupService(t)
	quotes.On("GetQuote", mock.Anything, "MSFT").Return(&market.Quote{LatestPrice: 100}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.PlaceOrder(context.Background(), OrderRequest{
				Symbol: "MSFT", Side: models.SideBuy, Quantity: 1, OrderType: models.OrderTypeMarket,
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Each buy costs 100*1.002 + fee = 100.2 + 0.1002 = 100.3002.
	account, _ := st.Account(context.Background())
	assert.InDelta(t, 25000-10*100.3002, account.Cash, 1e-9)

	p, err := st.Position(context.Background(), "MSFT")
	assert.NoError(t, err)
	assert.InDelta(t, 10.0, p.Quantity, 1e-9)
}

func TestPortfolio_ValuesAllPositions(t *testing.T) {
	svc, _, quotes := setupService(t)
	quotes.On("GetQuote", mock.Anything, "AAPL").Return(&market.Quote{LatestPrice: 180}, nil)
	quotes.On("GetQuote", mock.Anything, "BTC").Return(&market.Quote{LatestPrice: 30000}, nil)

	snapshot, err := svc.Portfolio(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 25000.0, snapshot.Cash)
	assert.Len(t, snapshot.Holdings, 2)
	assert.Equal(t, 2160.0+12000.0, snapshot.PortfolioValue)
	assert.Equal(t, 25000.0+14160.0, snapshot.TotalEquity)
	assert.Len(t, snapshot.Timeline, 10)
	quotes.AssertExpectations(t)
}

func TestPortfolio_OneFailedQuoteDoesNotAbort(t *testing.T) {
	svc, _, quotes := setupService(t)
	quotes.On("GetQuote", mock.Anything, "AAPL").Return(&market.Quote{LatestPrice: 180}, nil)
	quotes.On("GetQuote", mock.Anything, "BTC").Return(nil, market.ErrQuoteUnavailable)

	snapshot, err := svc.Portfolio(context.Background())

	assert.NoError(t, err)
	assert.Len(t, snapshot.Holdings, 2)
	for _, h := range snapshot.Holdings {
		if h.Symbol == "BTC" {
			assert.True(t, h.QuoteError)
			assert.Equal(t, 0.0, h.MarketValue)
		} else {
			assert.False(t, h.QuoteError)
		}
	}
	assert.Equal(t, 2160.0, snapshot.PortfolioValue)
}

func TestHeldSymbols(t *testing.T) {
	svc, _, _ := setupService(t)

	symbols, err := svc.HeldSymbols(context.Background())

	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"AAPL", "BTC"}, symbols)
}
