package ledger

import (
	"errors"
	"time"
)

// Transaction kinds. Every record is one or the other.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// Transaction is a single financial record owned by one user. Amount is in
// minor units (e.g., cents). No floats.
type Transaction struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Amount    int64     `json:"amount"`
	Type      string    `json:"type"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

var (
	ErrNotFound      = errors.New("ledger: not found")
	ErrInvalidAmount = errors.New("ledger: amount must be > 0")
	ErrInvalidType   = errors.New("ledger: type must be income or expense")
)

// ValidType reports whether kind is a known transaction type.
func ValidType(kind string) bool {
	return kind == TypeIncome || kind == TypeExpense
}
