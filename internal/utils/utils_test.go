package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsPGUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505"}
	if !IsPGUniqueViolation(unique) {
		t.Error("code 23505 not detected")
	}
	if !IsPGUniqueViolation(fmt.Errorf("insert: %w", unique)) {
		t.Error("wrapped 23505 not detected")
	}
	if IsPGUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Error("foreign key violation misreported as unique")
	}
	if IsPGUniqueViolation(errors.New("plain")) {
		t.Error("plain error misreported as unique")
	}
}
