package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIntentExpense(t *testing.T) {
	name, args, ok := ParseIntent("spent 30 on groceries")
	require.True(t, ok)
	assert.Equal(t, "add_transaction", name)
	assert.Equal(t, "EXPENSE", args.Type)
	assert.Equal(t, 30.0, args.Amount)
	assert.Equal(t, "groceries", args.Description)
	assert.Empty(t, args.AccountID)
}

func TestParseIntentExpenseWithAccount(t *testing.T) {
	name, args, ok := ParseIntent("I paid $12.50 for lunch from my budget account")
	require.True(t, ok)
	assert.Equal(t, "add_transaction", name)
	assert.Equal(t, 12.5, args.Amount)
	assert.Equal(t, "lunch", args.Description)
	assert.Equal(t, "budget", args.AccountID)
}

func TestParseIntentIncome(t *testing.T) {
	name, args, ok := ParseIntent("received 500 for salary")
	require.True(t, ok)
	assert.Equal(t, "add_transaction", name)
	assert.Equal(t, "INCOME", args.Type)
	assert.Equal(t, 500.0, args.Amount)
	assert.Equal(t, "salary", args.Description)
}

func TestParseIntentIncomeDefaultsDescription(t *testing.T) {
	_, args, ok := ParseIntent("got 20")
	require.True(t, ok)
	assert.Equal(t, "Income", args.Description)
}

func TestParseIntentTransfer(t *testing.T) {
	name, args, ok := ParseIntent("transfer 40 from Budget to Savings")
	require.True(t, ok)
	assert.Equal(t, "transfer_money", name)
	assert.Equal(t, 40.0, args.Amount)
	assert.Equal(t, "Budget", args.FromAccountID)
	assert.Equal(t, "Savings", args.ToAccountID)

	name, args, ok = ParseIntent("move $15.25 from Cash to Vacation Fund")
	require.True(t, ok)
	assert.Equal(t, "transfer_money", name)
	assert.Equal(t, "Vacation Fund", args.ToAccountID)
}

func TestParseIntentRejects(t *testing.T) {
	for _, in := range []string{
		"",
		"what's my balance?",
		"spent zero on nothing",
		"spent 0 on coffee",
		"transfer 0 from A to B",
	} {
		_, _, ok := ParseIntent(in)
		assert.False(t, ok, in)
	}
}
