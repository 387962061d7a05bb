package market

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// CoinGeckoClient fetches crypto quotes from the CoinGecko market_chart API.
type CoinGeckoClient struct {
	restClient
}

// NewCoinGeckoClient creates a new CoinGecko client.
func NewCoinGeckoClient(baseURL string, limit float64, burst int, logger *zap.Logger) *CoinGeckoClient {
	return &CoinGeckoClient{restClient{
		client:  resty.New().SetBaseURL(baseURL),
		logger:  logger.Named("coingecko"),
		limiter: rate.NewLimiter(rate.Limit(limit), burst),
	}}
}

// marketChartResponse mirrors the market_chart payload. Prices is a list of
// [timestampMillis, price] pairs in chronological order.
type marketChartResponse struct {
	Prices [][]float64 `json:"prices"`
}

// GetQuote fetches 30 days of daily prices for a CoinGecko coin id
// (e.g. "bitcoin") and derives the latest price from the last entry.
func (c *CoinGeckoClient) GetQuote(ctx context.Context, coinID string) (*Quote, error) {
	var chart marketChartResponse

	req := c.client.R().
		SetContext(ctx).
		SetResult(&chart).
		SetQueryParams(map[string]string{
			"vs_currency": "usd",
			"days":        "30",
		})

	if _, err := c.doRequest("GET", fmt.Sprintf("/coins/%s/market_chart", coinID), req); err != nil {
		return nil, fmt.Errorf("%w: coingecko %s: %v", ErrQuoteUnavailable, coinID, err)
	}

	history := make([]PricePoint, 0, len(chart.Prices))
	for _, pair := range chart.Prices {
		if len(pair) < 2 {
			continue
		}
		history = append(history, PricePoint{
			Date:  time.UnixMilli(int64(pair[0])).Format(historyDateLayout),
			Price: pair[1],
		})
	}

	if len(history) == 0 {
		return nil, fmt.Errorf("%w: coingecko returned no prices for %s", ErrQuoteUnavailable, coinID)
	}

	return &Quote{
		LatestPrice: history[len(history)-1].Price,
		History:     history,
	}, nil
}
