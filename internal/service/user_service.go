package service

import (
	"context"
	"errors"
	"strings"

	dom "stocksim/internal/domain"
	"stocksim/internal/repo"
	"stocksim/internal/utils"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

var (
	ErrInvalidCredentials = errors.New("invalid username and/or password")
	ErrUsernameRequired   = errors.New("must provide username")
	ErrPasswordRequired   = errors.New("must provide password")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters long")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrUsernameTaken      = errors.New("username already in use")
)

// UserService handles registration and credential checks.
type UserService struct {
	repo         repo.UserRepo
	startingCash decimal.Decimal
}

// NewUserService returns a new UserService. New accounts are credited with
// startingCash.
func NewUserService(repo repo.UserRepo, startingCash decimal.Decimal) *UserService {
	return &UserService{repo: repo, startingCash: startingCash}
}

// ValidateCredentials checks username and password; returns user if valid.
// Every mismatch, including an unknown username, returns the same
// ErrInvalidCredentials so the response does not reveal which field was wrong.
func (s *UserService) ValidateCredentials(ctx context.Context, username, password string) (dom.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return dom.User{}, ErrInvalidCredentials
	}
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.User{}, ErrInvalidCredentials
		}
		return dom.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return dom.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Register creates a new user with a hashed password and the starting cash
// balance.
func (s *UserService) Register(ctx context.Context, username, password, confirmation string) (dom.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return dom.User{}, ErrUsernameRequired
	}
	if password == "" {
		return dom.User{}, ErrPasswordRequired
	}
	if len(password) < minPasswordLen {
		return dom.User{}, ErrPasswordTooShort
	}
	if confirmation != password {
		return dom.User{}, ErrPasswordMismatch
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return dom.User{}, err
	}
	u, err := s.repo.Create(ctx, username, string(hash), s.startingCash)
	if err != nil {
		if utils.IsPGUniqueViolation(err) {
			return dom.User{}, ErrUsernameTaken
		}
		return dom.User{}, err
	}
	return u, nil
}

// GetByID returns the user, mapping a missing row to ErrNotFound.
func (s *UserService) GetByID(ctx context.Context, id int64) (dom.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.User{}, ErrNotFound
		}
		return dom.User{}, err
	}
	return u, nil
}
