package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"simutrade-go/internal/config"
	"simutrade-go/internal/engine"
	"simutrade-go/internal/logger"
	"simutrade-go/internal/market"
	"simutrade-go/internal/server"
	"simutrade-go/internal/store"
	"simutrade-go/internal/trading"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Select the store implementation at startup; it is passed in
	// explicitly everywhere, never reached as ambient state.
	var st store.Store
	switch cfg.Database.Driver {
	case "sqlite":
		st, err = store.NewSQLite(cfg.Database.DSN, store.DefaultSeed())
		if err != nil {
			log.Fatal("Failed to open database", zap.Error(err))
		}
		log.Info("Using sqlite store", zap.String("dsn", cfg.Database.DSN))
	case "memory":
		st = store.NewMemory(store.DefaultSeed())
		log.Warn("Using in-memory store; state is lost on shutdown")
	default:
		log.Fatal("Unknown database driver", zap.String("driver", cfg.Database.Driver))
	}

	// Market-data clients: CoinGecko for crypto, Yahoo for equities,
	// routed by symbol and cached with a short TTL.
	gecko := market.NewCoinGeckoClient(cfg.Market.CoinGeckoURL, cfg.Market.RateLimit, cfg.Market.RateLimitBurst, log)
	yahoo := market.NewYahooClient(cfg.Market.YahooURL, cfg.Market.RateLimit, cfg.Market.RateLimitBurst, log)
	quotes := market.NewCache(
		market.NewRouter(cfg.Market.CryptoIDs, gecko, yahoo),
		time.Duration(cfg.Market.CacheTTL)*time.Second,
	)

	eng := engine.New(cfg.Trading.FeeRate, cfg.Trading.SlippageRate)
	svc := trading.NewService(log, st, quotes, eng, time.Duration(cfg.Market.QuoteTimeout)*time.Second)

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Keep quotes for held symbols warm in the background.
	refresher := market.NewRefresher(quotes, svc.HeldSymbols,
		time.Duration(cfg.Market.RefreshInterval)*time.Second,
		time.Duration(cfg.Market.QuoteTimeout)*time.Second,
		log)
	go refresher.Run(ctx)

	api := server.New(log, svc)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: api.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed", zap.Error(err))
		}
	}()

	log.Info("Starting web server", zap.String("address", httpServer.Addr))
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("Web server failed", zap.Error(err))
	}

	log.Info("Server has been shut down.")
}
