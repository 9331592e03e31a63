package service

import (
	"context"
	"errors"
	"log"
	"strings"

	dom "stocksim/internal/domain"
	"stocksim/internal/dto"
	"stocksim/internal/events"
	"stocksim/internal/quote"
	"stocksim/internal/repo"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidSymbol      = errors.New("invalid stock symbol")
	ErrSymbolRequired     = errors.New("must select a symbol")
	ErrSharesRequired     = errors.New("must provide number of shares")
	ErrInvalidShares      = errors.New("must provide valid number of shares")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientShares = errors.New("number of shares is invalid or not owned")
)

// TradeService implements the buy/sell ledger rules and the derived
// portfolio and history views.
type TradeService struct {
	trades repo.TradeRepo
	users  repo.UserRepo
	quotes quote.Provider
	pub    events.Publisher
}

// NewTradeService creates a TradeService. If pub is nil, trade events are not
// published.
func NewTradeService(trades repo.TradeRepo, users repo.UserRepo, quotes quote.Provider, pub events.Publisher) *TradeService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &TradeService{trades: trades, users: users, quotes: quotes, pub: pub}
}

// Quote resolves a symbol to its current quote.
func (s *TradeService) Quote(ctx context.Context, symbol string) (quote.Quote, error) {
	q, err := s.quotes.Lookup(ctx, symbol)
	if err != nil {
		if errors.Is(err, quote.ErrUnknownSymbol) {
			return quote.Quote{}, ErrInvalidSymbol
		}
		return quote.Quote{}, err
	}
	return q, nil
}

// Buy validates the order and executes it: symbol must resolve, shares must
// be a positive number, and cost must not exceed the user's cash. The debit
// and the ledger insert happen in one store transaction.
func (s *TradeService) Buy(ctx context.Context, userID int64, symbol, shares string) (dom.Trade, error) {
	q, err := s.Quote(ctx, symbol)
	if err != nil {
		return dom.Trade{}, err
	}
	n, err := parseShares(shares)
	if err != nil {
		return dom.Trade{}, err
	}
	t, err := s.trades.ExecuteBuy(ctx, userID, q.Symbol, n, q.Price)
	if err != nil {
		if errors.Is(err, repo.ErrInsufficientFunds) {
			return dom.Trade{}, ErrInsufficientFunds
		}
		return dom.Trade{}, err
	}
	s.publish(ctx, t)
	return t, nil
}

// Sell validates the order and executes it: both fields must be present,
// shares must be a positive number not exceeding the user's derived holding.
// The credit and the negative-shares ledger insert happen in one store
// transaction, where the holding is re-checked under lock.
func (s *TradeService) Sell(ctx context.Context, userID int64, symbol, shares string) (dom.Trade, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return dom.Trade{}, ErrSymbolRequired
	}
	if strings.TrimSpace(shares) == "" {
		return dom.Trade{}, ErrSharesRequired
	}
	n, err := parseShares(shares)
	if err != nil {
		return dom.Trade{}, err
	}
	held, err := s.trades.SharesHeld(ctx, userID, symbol)
	if err != nil {
		return dom.Trade{}, err
	}
	if held.LessThan(n) {
		return dom.Trade{}, ErrInsufficientShares
	}
	q, err := s.Quote(ctx, symbol)
	if err != nil {
		return dom.Trade{}, err
	}
	t, err := s.trades.ExecuteSell(ctx, userID, symbol, n, q.Price)
	if err != nil {
		if errors.Is(err, repo.ErrInsufficientShares) {
			return dom.Trade{}, ErrInsufficientShares
		}
		return dom.Trade{}, err
	}
	s.publish(ctx, t)
	return t, nil
}

// Portfolio derives the user's positions from the ledger and prices them. A
// symbol the provider can no longer resolve is kept as an unpriced row and
// left out of the grand total rather than failing the whole page.
func (s *TradeService) Portfolio(ctx context.Context, userID int64) (dto.PortfolioView, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dto.PortfolioView{}, ErrNotFound
		}
		return dto.PortfolioView{}, err
	}
	holdings, err := s.trades.HoldingsByUser(ctx, userID)
	if err != nil {
		return dto.PortfolioView{}, err
	}

	view := dto.PortfolioView{Cash: u.Cash, Total: u.Cash}
	for _, h := range holdings {
		pos := dto.PositionView{Symbol: h.Symbol, Shares: h.Shares}
		q, err := s.quotes.Lookup(ctx, h.Symbol)
		switch {
		case err == nil:
			pos.Name = q.Name
			pos.Price = q.Price
			pos.Value = q.Price.Mul(h.Shares)
			view.Total = view.Total.Add(pos.Value)
		case errors.Is(err, quote.ErrUnknownSymbol):
			pos.Unpriced = true
		default:
			return dto.PortfolioView{}, err
		}
		view.Positions = append(view.Positions, pos)
	}
	return view, nil
}

// History returns all of the user's trades, most recent first.
func (s *TradeService) History(ctx context.Context, userID int64) ([]dto.TradeView, error) {
	list, err := s.trades.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TradeView, len(list))
	for i, t := range list {
		out[i] = dto.TradeView{
			Symbol: t.Symbol,
			Shares: t.Shares,
			Price:  t.Price,
			Side:   t.Side,
			Time:   t.CreatedAt,
		}
	}
	return out, nil
}

// HeldSymbols returns the symbols the user currently holds, for the sell form.
func (s *TradeService) HeldSymbols(ctx context.Context, userID int64) ([]string, error) {
	holdings, err := s.trades.HoldingsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	symbols := make([]string, len(holdings))
	for i, h := range holdings {
		symbols[i] = h.Symbol
	}
	return symbols, nil
}

// publish emits a TradeExecuted event. Failures never fail the trade.
func (s *TradeService) publish(ctx context.Context, t dom.Trade) {
	err := s.pub.Publish(ctx, events.TradeExecuted{
		EventID:    uuid.New().String(),
		TradeID:    t.ID,
		UserID:     t.UserID,
		Symbol:     t.Symbol,
		Shares:     t.Shares,
		Price:      t.Price,
		Side:       t.Side,
		OccurredAt: t.CreatedAt,
	})
	if err != nil {
		log.Printf("trade event publish failed (trade %d): %v", t.ID, err)
	}
}

func parseShares(s string) (decimal.Decimal, error) {
	n, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, ErrInvalidShares
	}
	if !n.IsPositive() {
		return decimal.Decimal{}, ErrInvalidShares
	}
	return n, nil
}
