package market

import (
	"context"
	"strings"
)

// Router classifies a ticker symbol and routes the quote request to the
// matching upstream: symbols with a configured CoinGecko id go to the crypto
// client (translated to that id), everything else is treated as an equity.
type Router struct {
	cryptoIDs map[string]string
	crypto    Provider
	equity    Provider
}

var _ Provider = (*Router)(nil)

// NewRouter creates a symbol router over the two upstream clients.
func NewRouter(cryptoIDs map[string]string, crypto, equity Provider) *Router {
	ids := make(map[string]string, len(cryptoIDs))
	for symbol, id := range cryptoIDs {
		ids[strings.ToUpper(symbol)] = id
	}
	return &Router{cryptoIDs: ids, crypto: crypto, equity: equity}
}

// GetQuote fetches a quote for the given symbol from the appropriate source.
func (r *Router) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	symbol = strings.ToUpper(symbol)
	if id, ok := r.cryptoIDs[symbol]; ok {
		return r.crypto.GetQuote(ctx, id)
	}
	return r.equity.GetQuote(ctx, symbol)
}
