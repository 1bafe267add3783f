package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brennuck/sprout/internal/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestIncomeDeltas(t *testing.T) {
	deltas := Income{AccountID: "a1", Amount: d("50")}.Deltas()
	require.Len(t, deltas, 1)
	assert.Equal(t, "a1", deltas[0].AccountID)
	assert.True(t, deltas[0].Amount.Equal(d("50")))
}

func TestExpenseDeltas(t *testing.T) {
	deltas := Expense{AccountID: "a1", Amount: d("30")}.Deltas()
	require.Len(t, deltas, 1)
	assert.True(t, deltas[0].Amount.Equal(d("-30")))
}

func TestTransferDeltas(t *testing.T) {
	deltas := Transfer{FromAccountID: "a1", ToAccountID: "a2", Amount: d("40")}.Deltas()
	require.Len(t, deltas, 2)
	assert.Equal(t, "a1", deltas[0].AccountID)
	assert.True(t, deltas[0].Amount.Equal(d("-40")))
	assert.Equal(t, "a2", deltas[1].AccountID)
	assert.True(t, deltas[1].Amount.Equal(d("40")))

	// A transfer's legs cancel.
	assert.True(t, deltas[0].Amount.Add(deltas[1].Amount).IsZero())
}

func TestTransferDeltasWithoutDestination(t *testing.T) {
	deltas := Transfer{FromAccountID: "a1", Amount: d("40")}.Deltas()
	require.Len(t, deltas, 1)
	assert.Equal(t, "a1", deltas[0].AccountID)
	assert.True(t, deltas[0].Amount.Equal(d("-40")))
}

func TestInvertIsExactNegation(t *testing.T) {
	deltas := Transfer{FromAccountID: "a1", ToAccountID: "a2", Amount: d("12.34")}.Deltas()
	inverted := Invert(deltas)
	require.Len(t, inverted, len(deltas))
	for i := range deltas {
		assert.Equal(t, deltas[i].AccountID, inverted[i].AccountID)
		assert.True(t, deltas[i].Amount.Add(inverted[i].Amount).IsZero())
	}
}

func TestApplyThenInvertRestoresBalances(t *testing.T) {
	balances := map[string]decimal.Decimal{
		"a1": d("100.00"),
		"a2": d("20.00"),
	}
	apply := func(deltas []Delta) {
		for _, dl := range deltas {
			balances[dl.AccountID] = balances[dl.AccountID].Add(dl.Amount)
		}
	}

	effects := []Effect{
		Income{AccountID: "a1", Amount: d("500")},
		Expense{AccountID: "a1", Amount: d("29.99")},
		Transfer{FromAccountID: "a1", ToAccountID: "a2", Amount: d("40")},
	}
	for _, e := range effects {
		apply(e.Deltas())
	}
	for i := len(effects) - 1; i >= 0; i-- {
		apply(Invert(effects[i].Deltas()))
	}

	assert.True(t, balances["a1"].Equal(d("100.00")))
	assert.True(t, balances["a2"].Equal(d("20.00")))
}

func TestEffectOf(t *testing.T) {
	to := "a2"

	income, err := EffectOf(domain.Transaction{Type: domain.TxIncome, AccountID: "a1", Amount: d("5")})
	require.NoError(t, err)
	assert.IsType(t, Income{}, income)

	expense, err := EffectOf(domain.Transaction{Type: domain.TxExpense, AccountID: "a1", Amount: d("5")})
	require.NoError(t, err)
	assert.IsType(t, Expense{}, expense)

	transfer, err := EffectOf(domain.Transaction{Type: domain.TxTransfer, AccountID: "a1", TransferToAccountID: &to, Amount: d("5")})
	require.NoError(t, err)
	require.IsType(t, Transfer{}, transfer)
	assert.Equal(t, "a2", transfer.(Transfer).ToAccountID)

	orphan, err := EffectOf(domain.Transaction{Type: domain.TxTransfer, AccountID: "a1", Amount: d("5")})
	require.NoError(t, err)
	assert.Len(t, orphan.Deltas(), 1)

	_, err = EffectOf(domain.Transaction{Type: "REFUND", AccountID: "a1", Amount: d("5")})
	assert.Error(t, err)
}
