package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeForm is the URL-encoded body for POST /buy and POST /sell.
// Shares stays a string here; parsing and validation happen in the service.
type TradeForm struct {
	Symbol string `form:"symbol"`
	Shares string `form:"shares"`
}

// QuoteForm is the URL-encoded body for POST /quote.
type QuoteForm struct {
	Symbol string `form:"symbol"`
}

// PositionView is one portfolio row as rendered on the index page.
type PositionView struct {
	Symbol   string
	Name     string
	Shares   decimal.Decimal
	Price    decimal.Decimal
	Value    decimal.Decimal
	Unpriced bool // quote provider no longer resolves this symbol
}

// PortfolioView is the full index page model.
type PortfolioView struct {
	Positions []PositionView
	Cash      decimal.Decimal
	Total     decimal.Decimal
}

// TradeView is one history page row.
type TradeView struct {
	Symbol string
	Shares decimal.Decimal
	Price  decimal.Decimal
	Side   string
	Time   time.Time
}
