package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"simutrade-go/internal/market"
	"simutrade-go/internal/models"
)

// Order is a validated-on-entry order request. LimitPrice is only
// meaningful when Type is "limit".
type Order struct {
	Symbol     string
	Side       string
	Quantity   decimal.Decimal
	Type       string
	LimitPrice decimal.Decimal
}

// Fill is the complete outcome of one executed order: the post-trade
// account, the post-trade position (nil when the position was sold down to
// zero and removed), and the ledger record. The three are committed
// together by the store.
type Fill struct {
	Account  models.Account
	Position *models.Position
	Trade    models.Trade
}

// Engine executes orders against quotes. Execute is a pure function of its
// inputs: the engine holds only the fee and slippage rates and never
// carries state between calls.
type Engine struct {
	feeRate      decimal.Decimal
	slippageRate decimal.Decimal
	now          func() time.Time
}

// New creates an execution engine with the given fee and slippage rates
// (fractions, e.g. 0.001 and 0.002).
func New(feeRate, slippageRate float64) *Engine {
	return &Engine{
		feeRate:      decimal.NewFromFloat(feeRate),
		slippageRate: decimal.NewFromFloat(slippageRate),
		now:          time.Now,
	}
}

// Execute decides whether the order fills against the quote and, if so,
// computes the resulting account, position, and trade. position is nil when
// no position for the symbol exists. A non-nil error is either a *Rejection
// (no fill, nothing to apply) or a fault; in both cases the returned Fill
// is nil and no state has changed.
//
// Pricing: market and limit orders both execute at the quote's latest price
// adjusted by the slippage rate against the trader. Buys pay latest*(1+s),
// sells receive latest*(1-s). The limit price only gates the
// fill, it never sets the execution price. The fee is charged on the
// slippage-adjusted notional: buys pay notional+fee, sells receive
// notional-fee.
func (e *Engine) Execute(order Order, quote *market.Quote, account models.Account, position *models.Position) (*Fill, error) {
	if err := ValidateOrder(order); err != nil {
		return nil, err
	}
	symbol := strings.ToUpper(order.Symbol)
	latest := decimal.NewFromFloat(quote.LatestPrice)

	// Limit gate: a buy fills only at or below the limit, a sell only at
	// or above it.
	if order.Type == models.OrderTypeLimit {
		notFilled := (order.Side == models.SideBuy && latest.GreaterThan(order.LimitPrice)) ||
			(order.Side == models.SideSell && latest.LessThan(order.LimitPrice))
		if notFilled {
			return nil, reject(RejectLimitNotFilled, "Limit order not filled at current market price.")
		}
	}

	one := decimal.NewFromInt(1)
	var executionPrice decimal.Decimal
	if order.Side == models.SideBuy {
		executionPrice = latest.Mul(one.Add(e.slippageRate))
	} else {
		executionPrice = latest.Mul(one.Sub(e.slippageRate))
	}

	notional := executionPrice.Mul(order.Quantity)
	fee := notional.Mul(e.feeRate)

	cash := decimal.NewFromFloat(account.Cash)
	var existingQty, existingAvg decimal.Decimal
	if position != nil {
		existingQty = decimal.NewFromFloat(position.Quantity)
		existingAvg = decimal.NewFromFloat(position.AveragePrice)
	}

	var newCash decimal.Decimal
	var newPosition *models.Position

	if order.Side == models.SideBuy {
		tradeCost := notional.Add(fee)
		if cash.LessThan(tradeCost) {
			return nil, reject(RejectInsufficientCash, "Insufficient cash.")
		}
		newCash = cash.Sub(tradeCost)

		// Volume-weighted average over the old lot and this execution.
		newQty := existingQty.Add(order.Quantity)
		totalCost := existingAvg.Mul(existingQty).Add(executionPrice.Mul(order.Quantity))
		newAvg := totalCost.Div(newQty)

		newPosition = &models.Position{
			Symbol:       symbol,
			Quantity:     newQty.InexactFloat64(),
			AveragePrice: newAvg.InexactFloat64(),
		}
		if position != nil {
			newPosition.ID = position.ID
		}
	} else {
		if position == nil || existingQty.LessThan(order.Quantity) {
			return nil, reject(RejectInsufficientHoldings, "Not enough holdings to sell.")
		}
		proceeds := notional.Sub(fee)
		newCash = cash.Add(proceeds)

		// Selling leaves the cost basis untouched; a position sold down
		// to exactly zero is removed.
		newQty := existingQty.Sub(order.Quantity)
		if !newQty.IsZero() {
			newPosition = &models.Position{
				ID:           position.ID,
				Symbol:       symbol,
				Quantity:     newQty.InexactFloat64(),
				AveragePrice: position.AveragePrice,
			}
		}
	}

	account.Cash = newCash.InexactFloat64()

	return &Fill{
		Account:  account,
		Position: newPosition,
		Trade: models.Trade{
			Symbol:    symbol,
			Side:      order.Side,
			Price:     executionPrice.InexactFloat64(),
			Quantity:  order.Quantity.InexactFloat64(),
			Timestamp: e.now(),
		},
	}, nil
}

// ValidateOrder checks the order preconditions: symbol and side present,
// positive quantity, a known order type, and a positive limit price on
// limit orders. It returns a RejectInvalidRequest rejection on violation.
// Callers can run it before fetching a quote to fail fast.
func ValidateOrder(order Order) error {
	if strings.TrimSpace(order.Symbol) == "" {
		return reject(RejectInvalidRequest, "Missing trade details.")
	}
	if order.Side != models.SideBuy && order.Side != models.SideSell {
		return reject(RejectInvalidRequest, fmt.Sprintf("Invalid side %q.", order.Side))
	}
	if !order.Quantity.IsPositive() {
		return reject(RejectInvalidRequest, "Quantity must be positive.")
	}
	switch order.Type {
	case models.OrderTypeMarket:
	case models.OrderTypeLimit:
		if !order.LimitPrice.IsPositive() {
			return reject(RejectInvalidRequest, "Limit orders require a positive limit price.")
		}
	default:
		return reject(RejectInvalidRequest, fmt.Sprintf("Invalid order type %q.", order.Type))
	}
	return nil
}
