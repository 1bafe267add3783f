package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType is the closed set of account kinds the tracker knows about.
type AccountType string

const (
	AccountSavings    AccountType = "SAVINGS"
	AccountBudget     AccountType = "BUDGET"
	AccountAllowance  AccountType = "ALLOWANCE"
	AccountRetirement AccountType = "RETIREMENT"
	AccountStock      AccountType = "STOCK"
)

// ValidAccountType reports whether s is a recognized account type.
func ValidAccountType(s string) bool {
	switch AccountType(s) {
	case AccountSavings, AccountBudget, AccountAllowance, AccountRetirement, AccountStock:
		return true
	}
	return false
}

// Account holds the cached balance for one user's account. The balance is
// always the signed sum of the ledger effects applied to it.
type Account struct {
	ID        string          `db:"id" json:"id"`
	UserID    string          `db:"user_id" json:"user_id"`
	Name      string          `db:"name" json:"name"`
	Type      AccountType     `db:"type" json:"type"`
	Balance   decimal.Decimal `db:"balance" json:"balance"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
