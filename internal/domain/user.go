package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is the domain entity for a user account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Cash         decimal.Decimal
	CreatedAt    time.Time
}
