package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// setupCoinGecko creates a test server and a client pointed at it.
func setupCoinGecko(handler http.Handler) (*CoinGeckoClient, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := &CoinGeckoClient{restClient{
		client:  resty.New().SetBaseURL(server.URL),
		logger:  zap.NewNop(),
		limiter: rate.NewLimiter(rate.Inf, 1), // Allow all requests in tests
	}}
	return client, server
}

func TestCoinGeckoGetQuote(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange: two [timestampMillis, price] pairs, chronological.
		mockResponse := `{"prices": [[1717200000000, 27500.5], [1717286400000, 28000.0]]}`
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/coins/bitcoin/market_chart", r.URL.Path)
			assert.Equal(t, "usd", r.URL.Query().Get("vs_currency"))
			assert.Equal(t, "30", r.URL.Query().Get("days"))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(mockResponse))
		})

		client, server := setupCoinGecko(handler)
		defer server.Close()

		// Act
		quote, err := client.GetQuote(context.Background(), "bitcoin")

		// Assert: latest price comes from the last history entry.
		assert.NoError(t, err)
		assert.Equal(t, 28000.0, quote.LatestPrice)
		assert.Len(t, quote.History, 2)
		assert.Equal(t, 27500.5, quote.History[0].Price)
	})

	t.Run("EmptyPrices", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"prices": []}`))
		})

		client, server := setupCoinGecko(handler)
		defer server.Close()

		quote, err := client.GetQuote(context.Background(), "bitcoin")

		// No usable price is an error, never a silent zero.
		assert.Nil(t, quote)
		assert.ErrorIs(t, err, ErrQuoteUnavailable)
	})

	t.Run("APIError", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error": "coin not found"}`))
		})

		client, server := setupCoinGecko(handler)
		defer server.Close()

		quote, err := client.GetQuote(context.Background(), "nope")

		assert.Nil(t, quote)
		assert.ErrorIs(t, err, ErrQuoteUnavailable)
	})
}
