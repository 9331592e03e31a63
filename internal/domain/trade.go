package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade sides.
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// Trade is one row of the append-only trade ledger.
// Shares is signed: positive for a buy, negative for a sell.
// Holdings are never stored; they are always derived by summing Shares
// per (user, symbol).
type Trade struct {
	ID        int64
	UserID    int64
	Symbol    string
	Shares    decimal.Decimal
	Price     decimal.Decimal
	Side      string
	CreatedAt time.Time
}

// Holding is the derived position for one symbol: the sum of signed
// share counts over the user's ledger.
type Holding struct {
	Symbol string
	Shares decimal.Decimal
}
