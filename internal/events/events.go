package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TradeExecuted is emitted after a buy or sell commits.
type TradeExecuted struct {
	EventID    string          `json:"event_id"`
	TradeID    int64           `json:"trade_id"`
	UserID     int64           `json:"user_id"`
	Symbol     string          `json:"symbol"`
	Shares     decimal.Decimal `json:"shares"`
	Price      decimal.Decimal `json:"price"`
	Side       string          `json:"side"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Publisher publishes trade events to a stream.
type Publisher interface {
	Publish(ctx context.Context, event TradeExecuted) error
	Close() error
}

// Nop is a Publisher that drops everything. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, TradeExecuted) error { return nil }
func (Nop) Close() error                                 { return nil }
