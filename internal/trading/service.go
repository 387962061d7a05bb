package trading

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"simutrade-go/internal/engine"
	"simutrade-go/internal/market"
	"simutrade-go/internal/models"
	"simutrade-go/internal/store"
)

// OrderRequest is the inbound order shape, pre-conversion. LimitPrice is a
// pointer so a missing field is distinguishable from zero. An empty
// OrderType means a market order.
type OrderRequest struct {
	Symbol     string   `json:"symbol"`
	Side       string   `json:"side"`
	Quantity   float64  `json:"quantity"`
	OrderType  string   `json:"orderType"`
	LimitPrice *float64 `json:"limitPrice"`
}

// Service ties the quote provider, execution engine, and store together.
//
// Order placement is serialized per account. The read-compute-write cycle
// runs under orderMu, so two concurrent orders cannot both read the same
// cash balance and lose one update. With a single simulated account, one
// mutex covers every account.
type Service struct {
	logger       *zap.Logger
	store        store.Store
	quotes       market.Provider
	engine       *engine.Engine
	quoteTimeout time.Duration

	orderMu sync.Mutex
}

// NewService creates a trading service.
func NewService(logger *zap.Logger, st store.Store, quotes market.Provider, eng *engine.Engine, quoteTimeout time.Duration) *Service {
	return &Service{
		logger:       logger.Named("trading"),
		store:        st,
		quotes:       quotes,
		engine:       eng,
		quoteTimeout: quoteTimeout,
	}
}

// Quote fetches the current quote for a symbol.
func (s *Service) Quote(ctx context.Context, symbol string) (*market.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, s.quoteTimeout)
	defer cancel()
	return s.quotes.GetQuote(ctx, strings.ToUpper(symbol))
}

// PlaceOrder validates, prices, and executes one order, committing the
// resulting account, position, and trade atomically. The returned error is
// either an *engine.Rejection, a market.ErrQuoteUnavailable wrap, or a
// store fault.
func (s *Service) PlaceOrder(ctx context.Context, req OrderRequest) (*engine.Fill, error) {
	order := engine.Order{
		Symbol:   strings.ToUpper(strings.TrimSpace(req.Symbol)),
		Side:     req.Side,
		Quantity: decimal.NewFromFloat(req.Quantity),
		Type:     req.OrderType,
	}
	if order.Type == "" {
		order.Type = models.OrderTypeMarket
	}
	if req.LimitPrice != nil {
		order.LimitPrice = decimal.NewFromFloat(*req.LimitPrice)
	}

	// Fail malformed orders before spending a quote fetch on them.
	if err := engine.ValidateOrder(order); err != nil {
		return nil, err
	}

	quote, err := s.Quote(ctx, order.Symbol)
	if err != nil {
		return nil, err
	}

	// Single writer per account: read, execute, and apply as one unit.
	s.orderMu.Lock()
	defer s.orderMu.Unlock()

	account, err := s.store.Account(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read account: %w", err)
	}

	var position *models.Position
	existing, err := s.store.Position(ctx, order.Symbol)
	switch {
	case err == nil:
		position = &existing
	case errors.Is(err, store.ErrNotFound):
		// No holding yet; a buy opens one, a sell is rejected below.
	default:
		return nil, fmt.Errorf("failed to read position: %w", err)
	}

	fill, err := s.engine.Execute(order, quote, account, position)
	if err != nil {
		return nil, err
	}

	if err := s.store.ApplyFill(ctx, fill.Account, fill.Position, order.Symbol, &fill.Trade); err != nil {
		return nil, fmt.Errorf("failed to apply fill: %w", err)
	}

	s.logger.Info("Order filled",
		zap.String("symbol", fill.Trade.Symbol),
		zap.String("side", fill.Trade.Side),
		zap.Float64("price", fill.Trade.Price),
		zap.Float64("quantity", fill.Trade.Quantity),
		zap.Float64("cash_after", fill.Account.Cash),
	)
	return fill, nil
}

type quoteResult struct {
	symbol string
	quote  *market.Quote
	err    error
}

// Portfolio values all positions against fresh quotes. Quotes are fetched
// concurrently, one goroutine per held symbol, each with its own timeout.
// A failed fetch degrades that one holding instead of failing the request.
func (s *Service) Portfolio(ctx context.Context) (engine.Snapshot, error) {
	account, err := s.store.Account(ctx)
	if err != nil {
		return engine.Snapshot{}, fmt.Errorf("failed to read account: %w", err)
	}
	positions, err := s.store.Positions(ctx)
	if err != nil {
		return engine.Snapshot{}, fmt.Errorf("failed to read positions: %w", err)
	}

	var wg sync.WaitGroup
	results := make(chan quoteResult, len(positions))
	for _, p := range positions {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			quote, err := s.Quote(ctx, symbol)
			results <- quoteResult{symbol: symbol, quote: quote, err: err}
		}(p.Symbol)
	}
	wg.Wait()
	close(results)

	quotes := make(map[string]*market.Quote, len(positions))
	for r := range results {
		if r.err != nil {
			s.logger.Warn("Quote fetch failed during valuation",
				zap.String("symbol", r.symbol), zap.Error(r.err))
			continue
		}
		quotes[r.symbol] = r.quote
	}

	snapshot := engine.Valuate(account, positions, func(symbol string) (*market.Quote, error) {
		quote, ok := quotes[symbol]
		if !ok {
			return nil, market.ErrQuoteUnavailable
		}
		return quote, nil
	})
	return snapshot, nil
}

// History lists executed trades, most recent first.
func (s *Service) History(ctx context.Context) ([]models.Trade, error) {
	trades, err := s.store.Trades(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read trades: %w", err)
	}
	return trades, nil
}

// HeldSymbols reports the symbols of all open positions. The quote
// refresher uses it to know what to keep warm.
func (s *Service) HeldSymbols(ctx context.Context) ([]string, error) {
	positions, err := s.store.Positions(ctx)
	if err != nil {
		return nil, err
	}
	symbols := make([]string, len(positions))
	for i, p := range positions {
		symbols[i] = p.Symbol
	}
	return symbols, nil
}
