package quote

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrUnknownSymbol means the provider does not know the ticker.
var ErrUnknownSymbol = errors.New("unknown symbol")

// Quote is the normalized shape returned by every provider.
type Quote struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
}

// Provider resolves a ticker symbol to its current quote.
// Implementations return ErrUnknownSymbol when the ticker does not resolve.
type Provider interface {
	Lookup(ctx context.Context, symbol string) (Quote, error)
}
