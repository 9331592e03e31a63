package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"stocksim/internal/quote"

	"github.com/redis/go-redis/v9"
)

const keyQuote = "quote:"

// QuoteCache caches provider quotes in Redis for a short TTL, so a portfolio
// page with many positions does not hammer the quote API.
type QuoteCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewQuoteCache returns a new QuoteCache.
func NewQuoteCache(rdb *redis.Client, ttl time.Duration) *QuoteCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &QuoteCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached quote for symbol, or ok=false on miss.
func (c *QuoteCache) Get(ctx context.Context, symbol string) (quote.Quote, bool, error) {
	b, err := c.rdb.Get(ctx, keyQuote+normalizeSymbol(symbol)).Bytes()
	if err == redis.Nil {
		return quote.Quote{}, false, nil
	}
	if err != nil {
		return quote.Quote{}, false, err
	}
	var q quote.Quote
	if err := json.Unmarshal(b, &q); err != nil {
		return quote.Quote{}, false, err
	}
	return q, true, nil
}

// Set stores the quote under its symbol.
func (c *QuoteCache) Set(ctx context.Context, q quote.Quote) error {
	b, err := json.Marshal(q)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keyQuote+normalizeSymbol(q.Symbol), b, c.ttl).Err()
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
