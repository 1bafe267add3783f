package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType tags a ledger entry. The stored amount is always the
// non-negative magnitude; the sign applied to balances comes from the type.
type TransactionType string

const (
	TxIncome   TransactionType = "INCOME"
	TxExpense  TransactionType = "EXPENSE"
	TxTransfer TransactionType = "TRANSFER"
)

// ValidTransactionType reports whether s is a recognized entry type.
func ValidTransactionType(s string) bool {
	switch TransactionType(s) {
	case TxIncome, TxExpense, TxTransfer:
		return true
	}
	return false
}

// Transaction is one row of the ledger log. TransferToAccountID is set only
// for TRANSFER rows and may be nil if the counterpart account was deleted.
type Transaction struct {
	ID                  string          `db:"id" json:"id"`
	AccountID           string          `db:"account_id" json:"account_id"`
	TransferToAccountID *string         `db:"transfer_to_account_id" json:"transfer_to_account_id,omitempty"`
	Amount              decimal.Decimal `db:"amount" json:"amount"`
	Description         *string         `db:"description" json:"description,omitempty"`
	Date                time.Time       `db:"date" json:"date"`
	Type                TransactionType `db:"type" json:"type"`
	CreatedAt           time.Time       `db:"created_at" json:"created_at"`
}
