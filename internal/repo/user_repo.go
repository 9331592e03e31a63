package repo

import (
	"context"

	dom "stocksim/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// UserRepo provides user persistence.
type UserRepo interface {
	GetByUsername(ctx context.Context, username string) (dom.User, error)
	GetByID(ctx context.Context, id int64) (dom.User, error)
	Create(ctx context.Context, username, passwordHash string, startingCash decimal.Decimal) (dom.User, error)
}

// PGUserRepo implements UserRepo with Postgres.
type PGUserRepo struct {
	db *pgxpool.Pool
}

// NewPGUserRepo returns a new PGUserRepo.
func NewPGUserRepo(db *pgxpool.Pool) *PGUserRepo {
	return &PGUserRepo{db: db}
}

// GetByUsername returns the user by username.
func (r *PGUserRepo) GetByUsername(ctx context.Context, username string) (dom.User, error) {
	var u dom.User
	err := r.db.QueryRow(ctx,
		`SELECT id, username, password_hash, cash, created_at FROM users WHERE username = $1`,
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Cash, &u.CreatedAt)
	return u, err
}

// GetByID returns the user by ID.
func (r *PGUserRepo) GetByID(ctx context.Context, id int64) (dom.User, error) {
	var u dom.User
	err := r.db.QueryRow(ctx,
		`SELECT id, username, password_hash, cash, created_at FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Cash, &u.CreatedAt)
	return u, err
}

// Create inserts a new user with the starting cash balance and returns it.
func (r *PGUserRepo) Create(ctx context.Context, username, passwordHash string, startingCash decimal.Decimal) (dom.User, error) {
	query := `
		INSERT INTO users (username, password_hash, cash)
		VALUES ($1, $2, $3)
		RETURNING id, username, password_hash, cash, created_at`
	var u dom.User
	err := r.db.QueryRow(ctx, query, username, passwordHash, startingCash).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.Cash, &u.CreatedAt,
	)
	return u, err
}
