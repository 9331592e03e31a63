package repo

import (
	"context"
	"errors"
	"fmt"

	dom "stocksim/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Balance-consistency errors surfaced from inside the trade transaction.
var (
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientShares = errors.New("insufficient shares")
)

// TradeRepo provides the append-only trade ledger and the atomic
// balance-plus-ledger mutations for buy and sell.
type TradeRepo interface {
	// ExecuteBuy debits shares*price from the user's cash and appends a buy
	// row, in one transaction. Returns ErrInsufficientFunds when the user
	// cannot afford the cost at the moment of commit.
	ExecuteBuy(ctx context.Context, userID int64, symbol string, shares, price decimal.Decimal) (dom.Trade, error)
	// ExecuteSell credits shares*price to the user's cash and appends a sell
	// row with negative shares, in one transaction. Returns
	// ErrInsufficientShares when the user holds fewer shares than requested
	// at the moment of commit.
	ExecuteSell(ctx context.Context, userID int64, symbol string, shares, price decimal.Decimal) (dom.Trade, error)
	ListByUser(ctx context.Context, userID int64) ([]dom.Trade, error)
	HoldingsByUser(ctx context.Context, userID int64) ([]dom.Holding, error)
	SharesHeld(ctx context.Context, userID int64, symbol string) (decimal.Decimal, error)
}

// PGTradeRepo implements TradeRepo with Postgres.
type PGTradeRepo struct {
	db *pgxpool.Pool
}

func NewPGTradeRepo(db *pgxpool.Pool) *PGTradeRepo {
	return &PGTradeRepo{db: db}
}

// ExecuteBuy locks the user row, re-checks affordability under the lock, then
// applies the debit and the ledger insert together. Concurrent trades for the
// same user serialize on the row lock, so the read-compute-write on cash
// cannot lose updates.
func (r *PGTradeRepo) ExecuteBuy(ctx context.Context, userID int64, symbol string, shares, price decimal.Decimal) (dom.Trade, error) {
	cost := shares.Mul(price)

	var out dom.Trade
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		cash, err := lockCash(ctx, tx, userID)
		if err != nil {
			return err
		}
		if cash.LessThan(cost) {
			return ErrInsufficientFunds
		}
		if _, err := tx.Exec(ctx,
			`UPDATE users SET cash = cash - $2 WHERE id = $1`, userID, cost); err != nil {
			return err
		}
		out, err = insertTrade(ctx, tx, userID, symbol, shares, price, dom.SideBuy)
		return err
	})
	if err != nil {
		return dom.Trade{}, err
	}
	return out, nil
}

// ExecuteSell locks the user row, re-derives the holding for symbol under the
// lock, then applies the credit and the negative-shares ledger insert
// together. The derived holding can never go negative.
func (r *PGTradeRepo) ExecuteSell(ctx context.Context, userID int64, symbol string, shares, price decimal.Decimal) (dom.Trade, error) {
	proceeds := shares.Mul(price)

	var out dom.Trade
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := lockCash(ctx, tx, userID); err != nil {
			return err
		}
		var held decimal.Decimal
		err := tx.QueryRow(ctx,
			`SELECT COALESCE(SUM(shares), 0) FROM trades WHERE user_id = $1 AND symbol = $2`,
			userID, symbol,
		).Scan(&held)
		if err != nil {
			return err
		}
		if held.LessThan(shares) {
			return ErrInsufficientShares
		}
		if _, err := tx.Exec(ctx,
			`UPDATE users SET cash = cash + $2 WHERE id = $1`, userID, proceeds); err != nil {
			return err
		}
		out, err = insertTrade(ctx, tx, userID, symbol, shares.Neg(), price, dom.SideSell)
		return err
	})
	if err != nil {
		return dom.Trade{}, err
	}
	return out, nil
}

// ListByUser returns the user's full trade history, most recent first.
func (r *PGTradeRepo) ListByUser(ctx context.Context, userID int64) ([]dom.Trade, error) {
	query := `
		SELECT id, user_id, symbol, shares, price, side, created_at
		FROM trades WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.Trade
	for rows.Next() {
		var t dom.Trade
		if err := rows.Scan(&t.ID, &t.UserID, &t.Symbol, &t.Shares, &t.Price,
			&t.Side, &t.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// HoldingsByUser derives current positive positions by summing signed share
// counts per symbol.
func (r *PGTradeRepo) HoldingsByUser(ctx context.Context, userID int64) ([]dom.Holding, error) {
	query := `
		SELECT symbol, SUM(shares) AS shares
		FROM trades WHERE user_id = $1
		GROUP BY symbol HAVING SUM(shares) > 0
		ORDER BY symbol`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.Holding
	for rows.Next() {
		var h dom.Holding
		if err := rows.Scan(&h.Symbol, &h.Shares); err != nil {
			return nil, err
		}
		list = append(list, h)
	}
	return list, rows.Err()
}

// SharesHeld returns the derived holding for one symbol, zero if none.
func (r *PGTradeRepo) SharesHeld(ctx context.Context, userID int64, symbol string) (decimal.Decimal, error) {
	var held decimal.Decimal
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(shares), 0) FROM trades WHERE user_id = $1 AND symbol = $2`,
		userID, symbol,
	).Scan(&held)
	return held, err
}

func (r *PGTradeRepo) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func lockCash(ctx context.Context, tx pgx.Tx, userID int64) (decimal.Decimal, error) {
	var cash decimal.Decimal
	err := tx.QueryRow(ctx,
		`SELECT cash FROM users WHERE id = $1 FOR UPDATE`, userID,
	).Scan(&cash)
	return cash, err
}

func insertTrade(ctx context.Context, tx pgx.Tx, userID int64, symbol string, shares, price decimal.Decimal, side string) (dom.Trade, error) {
	query := `
		INSERT INTO trades (user_id, symbol, shares, price, side)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, symbol, shares, price, side, created_at`
	var t dom.Trade
	err := tx.QueryRow(ctx, query, userID, symbol, shares, price, side).Scan(
		&t.ID, &t.UserID, &t.Symbol, &t.Shares, &t.Price, &t.Side, &t.CreatedAt,
	)
	return t, err
}
