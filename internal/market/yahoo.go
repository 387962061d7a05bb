package market

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// YahooClient fetches equity quotes from the Yahoo Finance v8 chart API.
type YahooClient struct {
	restClient
}

// NewYahooClient creates a new Yahoo Finance client.
func NewYahooClient(baseURL string, limit float64, burst int, logger *zap.Logger) *YahooClient {
	return &YahooClient{restClient{
		client:  resty.New().SetBaseURL(baseURL),
		logger:  logger.Named("yahoo"),
		limiter: rate.NewLimiter(rate.Limit(limit), burst),
	}}
}

// chartResponse mirrors the slice of the v8 chart payload we consume.
// Close entries can be null for days without a trade, hence *float64.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
	} `json:"chart"`
}

// GetQuote fetches one month of daily closes for an equity symbol and
// derives the latest price from the most recent non-null close.
func (c *YahooClient) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	var chart chartResponse

	req := c.client.R().
		SetContext(ctx).
		SetResult(&chart).
		SetQueryParams(map[string]string{
			"range":    "1mo",
			"interval": "1d",
		})

	if _, err := c.doRequest("GET", fmt.Sprintf("/v8/finance/chart/%s", symbol), req); err != nil {
		return nil, fmt.Errorf("%w: yahoo %s: %v", ErrQuoteUnavailable, symbol, err)
	}

	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: yahoo returned no chart data for %s", ErrQuoteUnavailable, symbol)
	}

	result := chart.Chart.Result[0]
	closes := result.Indicators.Quote[0].Close

	history := make([]PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		history = append(history, PricePoint{
			Date:  time.Unix(ts, 0).Format(historyDateLayout),
			Price: *closes[i],
		})
	}

	if len(history) == 0 {
		return nil, fmt.Errorf("%w: yahoo returned no closes for %s", ErrQuoteUnavailable, symbol)
	}

	return &Quote{
		LatestPrice: history[len(history)-1].Price,
		History:     history,
	}, nil
}
