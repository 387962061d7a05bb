package market

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Refresher periodically re-warms quotes for the symbols currently held so
// the dashboard reads from a fresh cache. Refreshes run inline in the loop:
// at most one is in flight, and ticks that arrive while a refresh is still
// running are dropped by the ticker rather than queued up.
type Refresher struct {
	logger   *zap.Logger
	provider Provider
	symbols  func(ctx context.Context) ([]string, error)
	interval time.Duration
	timeout  time.Duration
}

// NewRefresher creates a refresher. symbols reports which symbols to keep
// warm, typically the currently held positions. Each fetch is bounded by
// timeout so a hung upstream cannot stall the loop.
func NewRefresher(provider Provider, symbols func(ctx context.Context) ([]string, error), interval, timeout time.Duration, logger *zap.Logger) *Refresher {
	return &Refresher{
		logger:   logger.Named("refresher"),
		provider: provider,
		symbols:  symbols,
		interval: interval,
		timeout:  timeout,
	}
}

// Run starts the refresh loop and blocks until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("Starting quote refresh loop", zap.Duration("interval", r.interval))

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Stopping quote refresh loop")
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	symbols, err := r.symbols(ctx)
	if err != nil {
		r.logger.Error("Failed to list symbols to refresh", zap.Error(err))
		return
	}

	for _, symbol := range symbols {
		if err := r.refreshOne(ctx, symbol); err != nil {
			r.logger.Warn("Quote refresh failed", zap.String("symbol", symbol), zap.Error(err))
		}
	}
}

func (r *Refresher) refreshOne(ctx context.Context, symbol string) error {
	fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	_, err := r.provider.GetQuote(fetchCtx, symbol)
	return err
}
