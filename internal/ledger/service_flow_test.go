package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brennuck/sprout/internal/domain"
)

const (
	ownerID  = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	viewerID = "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"
)

func TestTryWithdrawConditionalDecrement(t *testing.T) {
	store := newMemStore()
	id := store.addAccount(ownerID, "Budget", "5.00")
	ctx := context.Background()

	var repo AccountsRepo
	err := repo.TryWithdraw(ctx, store, id, d("10"))
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.True(t, store.balanceOf(id).Equal(d("5.00")))

	require.NoError(t, repo.TryWithdraw(ctx, store, id, d("5")))
	assert.True(t, store.balanceOf(id).IsZero())
}

func TestCreateThenDeleteTransactionRestoresBalance(t *testing.T) {
	store := newMemStore()
	id := store.addAccount(ownerID, "Budget", "100.00")
	svc := &Service{Pool: store}
	ctx := context.Background()

	created, err := svc.CreateTransaction(ctx, ownerID, CreateTransactionInput{
		AccountID: id, Amount: d("30"), Description: "groceries", Type: domain.TxExpense,
	})
	require.NoError(t, err)
	assert.True(t, store.balanceOf(id).Equal(d("70")))

	require.NoError(t, svc.DeleteTransaction(ctx, ownerID, created.ID))
	assert.True(t, store.balanceOf(id).Equal(d("100")))
	assert.Empty(t, store.transactions)
	assert.Equal(t, 2, store.auditWrites)
}

func TestTransferMovesAndDeleteRestores(t *testing.T) {
	store := newMemStore()
	from := store.addAccount(ownerID, "Budget", "100.00")
	to := store.addAccount(ownerID, "Savings", "20.00")
	svc := &Service{Pool: store}
	ctx := context.Background()

	created, err := svc.Transfer(ctx, ownerID, from, to, d("40"), "")
	require.NoError(t, err)
	assert.Equal(t, domain.TxTransfer, created.Type)
	require.NotNil(t, created.Description)
	assert.Equal(t, "Transfer", *created.Description)
	assert.True(t, store.balanceOf(from).Equal(d("60")))
	assert.True(t, store.balanceOf(to).Equal(d("60")))

	require.NoError(t, svc.DeleteTransfer(ctx, ownerID, created.ID))
	assert.True(t, store.balanceOf(from).Equal(d("100")))
	assert.True(t, store.balanceOf(to).Equal(d("20")))
}

func TestTransferInsufficientFundsLeavesNothingBehind(t *testing.T) {
	store := newMemStore()
	from := store.addAccount(ownerID, "Budget", "30.00")
	to := store.addAccount(ownerID, "Savings", "0.00")
	svc := &Service{Pool: store}

	_, err := svc.Transfer(context.Background(), ownerID, from, to, d("200"), "")
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.True(t, store.balanceOf(from).Equal(d("30")))
	assert.True(t, store.balanceOf(to).IsZero())
	assert.Empty(t, store.transactions)
}

func TestCreateAccountFundingDebitsSource(t *testing.T) {
	store := newMemStore()
	source := store.addAccount(ownerID, "Budget", "100.00")
	svc := &Service{Pool: store}

	created, err := svc.CreateAccount(context.Background(), ownerID, CreateAccountInput{
		Name:              "Vacation",
		Type:              domain.AccountSavings,
		StartingBalance:   d("10"),
		FundFromAccountID: source,
		FundAmount:        d("25"),
	})
	require.NoError(t, err)
	assert.True(t, created.Balance.Equal(d("35")))
	assert.True(t, store.balanceOf(source).Equal(d("75")))

	require.Len(t, store.transactions, 1)
	for _, tr := range store.transactions {
		assert.Equal(t, "TRANSFER", tr.Type)
		assert.Equal(t, source, tr.AccountID)
		require.NotNil(t, tr.TransferTo)
		assert.Equal(t, created.ID, *tr.TransferTo)
		require.NotNil(t, tr.Description)
		assert.Equal(t, "Initial funding for Vacation", *tr.Description)
	}
}

func TestCreateAccountFundingRollsBackOnInsufficientFunds(t *testing.T) {
	store := newMemStore()
	source := store.addAccount(ownerID, "Budget", "10.00")
	svc := &Service{Pool: store}

	_, err := svc.CreateAccount(context.Background(), ownerID, CreateAccountInput{
		Name:              "Vacation",
		Type:              domain.AccountSavings,
		FundFromAccountID: source,
		FundAmount:        d("500"),
	})
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	// the new account did not survive the rollback
	assert.Len(t, store.accounts, 1)
	assert.True(t, store.balanceOf(source).Equal(d("10")))
	assert.Empty(t, store.transactions)
}

func TestDeleteAccountRefusedWhileTransferLinked(t *testing.T) {
	store := newMemStore()
	from := store.addAccount(ownerID, "Budget", "100.00")
	to := store.addAccount(ownerID, "Savings", "0.00")
	svc := &Service{Pool: store}
	ctx := context.Background()

	created, err := svc.Transfer(ctx, ownerID, from, to, d("40"), "")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteAccount(ctx, ownerID, from), ErrConflict)
	assert.ErrorIs(t, svc.DeleteAccount(ctx, ownerID, to), ErrConflict)
	assert.Len(t, store.accounts, 2)

	require.NoError(t, svc.DeleteTransfer(ctx, ownerID, created.ID))
	require.NoError(t, svc.DeleteAccount(ctx, ownerID, from))
	assert.Len(t, store.accounts, 1)
}

func TestEditShareAllowsMutation(t *testing.T) {
	store := newMemStore()
	account := store.addAccount(ownerID, "Budget", "50.00")
	svc := &Service{Pool: store}
	ctx := context.Background()

	_, err := svc.CreateTransaction(ctx, viewerID, CreateTransactionInput{
		AccountID: account, Amount: d("5"), Description: "coffee", Type: domain.TxExpense,
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, store.balanceOf(account).Equal(d("50")))

	store.editShares[ownerID+"|"+viewerID] = true
	_, err = svc.CreateTransaction(ctx, viewerID, CreateTransactionInput{
		AccountID: account, Amount: d("5"), Description: "coffee", Type: domain.TxExpense,
	})
	require.NoError(t, err)
	assert.True(t, store.balanceOf(account).Equal(d("45")))
}
