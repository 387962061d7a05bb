package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
	Trading  Trading  `mapstructure:"trading"`
	Market   Market   `mapstructure:"market"`
	Logger   Logger   `mapstructure:"logger"`
}

// Server holds the configuration for the HTTP API server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Database selects the backing store. Driver is "memory" or "sqlite".
type Database struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// Trading holds the simulated execution parameters.
type Trading struct {
	FeeRate      float64 `mapstructure:"fee_rate"`
	SlippageRate float64 `mapstructure:"slippage_rate"`
}

// Market holds the configuration for the market-data clients.
type Market struct {
	CoinGeckoURL    string            `mapstructure:"coingecko_url"`
	YahooURL        string            `mapstructure:"yahoo_url"`
	CryptoIDs       map[string]string `mapstructure:"crypto_ids"`
	QuoteTimeout    int               `mapstructure:"quote_timeout"`    // seconds
	CacheTTL        int               `mapstructure:"cache_ttl"`        // seconds
	RefreshInterval int               `mapstructure:"refresh_interval"` // seconds
	RateLimit       float64           `mapstructure:"rate_limit"`
	RateLimitBurst  int               `mapstructure:"rate_limit_burst"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("server.port", 4000)
	viper.SetDefault("database.driver", "memory")
	viper.SetDefault("database.dsn", "simutrade.db")
	viper.SetDefault("trading.fee_rate", 0.001)
	viper.SetDefault("trading.slippage_rate", 0.002)
	viper.SetDefault("market.coingecko_url", "https://api.coingecko.com/api/v3")
	viper.SetDefault("market.yahoo_url", "https://query1.finance.yahoo.com")
	viper.SetDefault("market.crypto_ids", map[string]string{
		"BTC": "bitcoin",
		"ETH": "ethereum",
		"SOL": "solana",
	})
	viper.SetDefault("market.quote_timeout", 10)
	viper.SetDefault("market.cache_ttl", 30)
	viper.SetDefault("market.refresh_interval", 60)
	viper.SetDefault("market.rate_limit", 5)       // requests per second
	viper.SetDefault("market.rate_limit_burst", 2) // burst size

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
