package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeEntry      TransactionType = "tournament_entry"
	TransactionTypePrize      TransactionType = "prize"
	TransactionTypeRefund     TransactionType = "refund"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
)

// WalletTransaction is an append-only ledger entry. Rows are never updated;
// the cached balance on the user row must change in the same transaction that
// appends the entry.
type WalletTransaction struct {
	ID          string            `json:"id" db:"id"`
	UserID      string            `json:"user_id" db:"user_id"`
	Type        TransactionType   `json:"type" db:"type"`
	Amount      decimal.Decimal   `json:"amount" db:"amount"`
	Status      TransactionStatus `json:"status" db:"status"`
	ReferenceID *string           `json:"reference_id,omitempty" db:"reference_id"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
}
