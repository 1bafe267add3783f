package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/brennuck/sprout/internal/domain"
)

// Delta is one signed balance adjustment produced by an effect.
type Delta struct {
	AccountID string
	Amount    decimal.Decimal
}

// Effect is the closed set of ledger entry kinds. Each variant knows the
// deltas it applies; deleting an entry applies the exact negation. The sealed
// method keeps the set closed so the delta table stays exhaustive.
type Effect interface {
	Deltas() []Delta
	sealed()
}

// Income credits one account by the entry magnitude.
type Income struct {
	AccountID string
	Amount    decimal.Decimal
}

// Expense debits one account by the entry magnitude.
type Expense struct {
	AccountID string
	Amount    decimal.Decimal
}

// Transfer moves the magnitude from one account to another. ToAccountID may
// be empty when the counterpart account no longer exists; the credit leg is
// then skipped.
type Transfer struct {
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
}

func (e Income) Deltas() []Delta {
	return []Delta{{AccountID: e.AccountID, Amount: e.Amount}}
}

func (e Expense) Deltas() []Delta {
	return []Delta{{AccountID: e.AccountID, Amount: e.Amount.Neg()}}
}

func (e Transfer) Deltas() []Delta {
	out := []Delta{{AccountID: e.FromAccountID, Amount: e.Amount.Neg()}}
	if e.ToAccountID != "" {
		out = append(out, Delta{AccountID: e.ToAccountID, Amount: e.Amount})
	}
	return out
}

func (Income) sealed()   {}
func (Expense) sealed()  {}
func (Transfer) sealed() {}

// Invert negates every delta, giving the exact reversal used on delete.
func Invert(deltas []Delta) []Delta {
	out := make([]Delta, len(deltas))
	for i, d := range deltas {
		out[i] = Delta{AccountID: d.AccountID, Amount: d.Amount.Neg()}
	}
	return out
}

// EffectOf rebuilds the effect for a stored transaction row. The sign is
// derived from the stored type only, never from the current balance.
func EffectOf(t domain.Transaction) (Effect, error) {
	switch t.Type {
	case domain.TxIncome:
		return Income{AccountID: t.AccountID, Amount: t.Amount}, nil
	case domain.TxExpense:
		return Expense{AccountID: t.AccountID, Amount: t.Amount}, nil
	case domain.TxTransfer:
		to := ""
		if t.TransferToAccountID != nil {
			to = *t.TransferToAccountID
		}
		return Transfer{FromAccountID: t.AccountID, ToAccountID: to, Amount: t.Amount}, nil
	default:
		return nil, fmt.Errorf("unknown transaction type %q", t.Type)
	}
}
