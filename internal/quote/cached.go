package quote

import (
	"context"
	"strings"

	"golang.org/x/sync/singleflight"
)

// Cache is what a CachedProvider needs from a quote cache.
// Implemented by cache.QuoteCache.
type Cache interface {
	Get(ctx context.Context, symbol string) (Quote, bool, error)
	Set(ctx context.Context, q Quote) error
}

// CachedProvider wraps a Provider with a cache and collapses concurrent
// lookups for the same symbol into one upstream call.
type CachedProvider struct {
	next  Provider
	cache Cache
	sf    singleflight.Group
}

// NewCachedProvider wraps next. If c is nil, caching is disabled and only the
// singleflight collapsing remains.
func NewCachedProvider(next Provider, c Cache) *CachedProvider {
	return &CachedProvider{next: next, cache: c}
}

func (p *CachedProvider) Lookup(ctx context.Context, symbol string) (Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return Quote{}, ErrUnknownSymbol
	}

	v, err, _ := p.sf.Do(symbol, func() (interface{}, error) {
		if p.cache != nil {
			if q, ok, err := p.cache.Get(ctx, symbol); err == nil && ok {
				return q, nil
			}
		}
		q, err := p.next.Lookup(ctx, symbol)
		if err != nil {
			return Quote{}, err
		}
		if p.cache != nil {
			_ = p.cache.Set(ctx, q)
		}
		return q, nil
	})
	if err != nil {
		return Quote{}, err
	}
	return v.(Quote), nil
}
