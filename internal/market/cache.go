package market

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Cache is a read-through quote cache with a fixed TTL. A quote within its
// TTL is served from memory; anything older is re-fetched. Fetch errors are
// returned as-is. An expired entry is never served in place of a live quote.
type Cache struct {
	provider Provider
	ttl      time.Duration

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	quote     *Quote
	fetchedAt time.Time
}

var _ Provider = (*Cache)(nil)

// NewCache wraps a provider with a TTL cache.
func NewCache(provider Provider, ttl time.Duration) *Cache {
	return &Cache{
		provider: provider,
		ttl:      ttl,
		entries:  make(map[string]cacheEntry),
	}
}

// GetQuote returns a cached quote when fresh, fetching otherwise.
func (c *Cache) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	symbol = strings.ToUpper(symbol)

	c.mu.RLock()
	entry, ok := c.entries[symbol]
	c.mu.RUnlock()
	if ok && time.Since(entry.fetchedAt) < c.ttl {
		return entry.quote, nil
	}

	quote, err := c.provider.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[symbol] = cacheEntry{quote: quote, fetchedAt: time.Now()}
	c.mu.Unlock()

	return quote, nil
}
