package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/brennuck/sprout/internal/audit"
	"github.com/brennuck/sprout/internal/domain"
)

// Service implements the ledger operations. Every operation that touches more
// than one row runs inside a single pgx transaction: either every write
// commits or none do. The actor is always passed explicitly and ownership is
// re-checked inside the operation, no matter which surface called it.
type Service struct {
	Pool     Pool
	Accounts AccountsRepo
	Log      TransactionsRepo
}

func NewService(pool *pgxpool.Pool) *Service {
	return &Service{Pool: pool}
}

func (s *Service) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// parseID rejects malformed ids up front. A bad id gets the same answer as a
// missing row.
func parseID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if _, err := uuid.Parse(id); err != nil {
		return "", ErrNotFound
	}
	return id, nil
}

// canMutate reports whether actor may write to accounts owned by ownerID:
// either the owner themselves or a viewer holding an EDIT share.
func (s *Service) canMutate(ctx context.Context, db DB, ownerID, actor string) (bool, error) {
	if ownerID == actor {
		return true, nil
	}
	var ok bool
	err := db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM dashboard_shares
			WHERE owner_id = $1::uuid AND viewer_id = $2::uuid AND permission = 'EDIT'
		)`,
		ownerID, actor,
	).Scan(&ok)
	return ok, err
}

func (s *Service) record(ctx context.Context, actor, action, entityType, entityID string) {
	id := entityID
	_ = audit.Write(ctx, s.Pool, audit.Entry{
		UserID:     &actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   &id,
	})
}

// CreateTransactionInput carries a new INCOME or EXPENSE entry. Date is the
// user-supplied transaction date and defaults to now.
type CreateTransactionInput struct {
	AccountID   string
	Amount      decimal.Decimal
	Description string
	Type        domain.TransactionType
	Date        *time.Time
}

// CreateTransaction appends one log row and applies its delta to the account,
// atomically.
func (s *Service) CreateTransaction(ctx context.Context, actor string, in CreateTransactionInput) (domain.Transaction, error) {
	if !in.Amount.IsPositive() {
		return domain.Transaction{}, fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
	}
	if in.Type != domain.TxIncome && in.Type != domain.TxExpense {
		return domain.Transaction{}, fmt.Errorf("%w: type must be INCOME or EXPENSE", ErrValidation)
	}
	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" {
		return domain.Transaction{}, fmt.Errorf("%w: description is required", ErrValidation)
	}
	accountID, err := parseID(in.AccountID)
	if err != nil {
		return domain.Transaction{}, err
	}

	date := time.Now().UTC()
	if in.Date != nil {
		date = *in.Date
	}

	var created domain.Transaction
	err = s.inTx(ctx, func(tx pgx.Tx) error {
		owner, err := s.Accounts.Owner(ctx, tx, accountID)
		if err != nil {
			return err
		}
		ok, err := s.canMutate(ctx, tx, owner, actor)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}

		created, err = s.Log.Insert(ctx, tx, accountID, nil, in.Amount, &in.Description, date, in.Type)
		if err != nil {
			return err
		}

		effect, err := EffectOf(created)
		if err != nil {
			return err
		}
		for _, d := range effect.Deltas() {
			if err := s.Accounts.AddToBalance(ctx, tx, d.AccountID, d.Amount); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	s.record(ctx, actor, "transaction.create", "transaction", created.ID)
	return created, nil
}

// DeleteTransaction reverses the stored entry's exact deltas, then removes
// the row. Ownership resolves through the account, not the transaction.
func (s *Service) DeleteTransaction(ctx context.Context, actor, transactionID string) error {
	id, err := parseID(transactionID)
	if err != nil {
		return err
	}

	err = s.inTx(ctx, func(tx pgx.Tx) error {
		t, err := s.Log.Get(ctx, tx, id)
		if err != nil {
			return err
		}
		owner, err := s.Accounts.Owner(ctx, tx, t.AccountID)
		if err != nil {
			return err
		}
		if owner != actor {
			return ErrNotFound
		}

		effect, err := EffectOf(t)
		if err != nil {
			return err
		}
		for _, d := range Invert(effect.Deltas()) {
			if err := s.Accounts.AddToBalance(ctx, tx, d.AccountID, d.Amount); err != nil {
				return err
			}
		}
		return s.Log.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	s.record(ctx, actor, "transaction.delete", "transaction", id)
	return nil
}

// Transfer moves amount between two of the actor's accounts and records one
// TRANSFER row. The insufficient-funds predicate is evaluated atomically in
// the debit UPDATE, so concurrent transfers cannot overdraw the source.
func (s *Service) Transfer(ctx context.Context, actor, fromAccountID, toAccountID string, amount decimal.Decimal, description string) (domain.Transaction, error) {
	if !amount.IsPositive() {
		return domain.Transaction{}, fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
	}
	fromID, err := parseID(fromAccountID)
	if err != nil {
		return domain.Transaction{}, err
	}
	toID, err := parseID(toAccountID)
	if err != nil {
		return domain.Transaction{}, err
	}
	if fromID == toID {
		return domain.Transaction{}, fmt.Errorf("%w: cannot transfer to the same account", ErrValidation)
	}

	description = strings.TrimSpace(description)
	if description == "" {
		description = "Transfer"
	}

	var created domain.Transaction
	err = s.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := s.Accounts.GetOwned(ctx, tx, fromID, actor); err != nil {
			return err
		}
		if _, err := s.Accounts.GetOwned(ctx, tx, toID, actor); err != nil {
			return err
		}

		if err := s.Accounts.TryWithdraw(ctx, tx, fromID, amount); err != nil {
			return err
		}
		if err := s.Accounts.AddToBalance(ctx, tx, toID, amount); err != nil {
			return err
		}

		created, err = s.Log.Insert(ctx, tx, fromID, &toID, amount, &description, time.Now().UTC(), domain.TxTransfer)
		return err
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	s.record(ctx, actor, "transfer.create", "transaction", created.ID)
	return created, nil
}

// DeleteTransfer restores both balances and removes the TRANSFER row. The
// credit leg is skipped when the destination account no longer exists.
func (s *Service) DeleteTransfer(ctx context.Context, actor, transactionID string) error {
	id, err := parseID(transactionID)
	if err != nil {
		return err
	}

	err = s.inTx(ctx, func(tx pgx.Tx) error {
		t, err := s.Log.Get(ctx, tx, id)
		if err != nil {
			return err
		}
		if t.Type != domain.TxTransfer {
			return ErrNotFound
		}
		owner, err := s.Accounts.Owner(ctx, tx, t.AccountID)
		if err != nil {
			return err
		}
		if owner != actor {
			return ErrUnauthorized
		}

		effect, err := EffectOf(t)
		if err != nil {
			return err
		}
		for _, d := range Invert(effect.Deltas()) {
			if err := s.Accounts.AddToBalance(ctx, tx, d.AccountID, d.Amount); err != nil {
				return err
			}
		}
		return s.Log.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	s.record(ctx, actor, "transfer.delete", "transaction", id)
	return nil
}

// CreateAccountInput carries a new account, optionally funded from an
// existing one.
type CreateAccountInput struct {
	Name              string
	Type              domain.AccountType
	StartingBalance   decimal.Decimal
	FundFromAccountID string
	FundAmount        decimal.Decimal
}

// CreateAccount inserts the account and, when funding is requested, debits
// the source and writes an audit TRANSFER row, all in one atomic unit. On
// insufficient funds nothing is applied.
func (s *Service) CreateAccount(ctx context.Context, actor string, in CreateAccountInput) (domain.Account, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return domain.Account{}, fmt.Errorf("%w: account name is required", ErrValidation)
	}
	if !domain.ValidAccountType(string(in.Type)) {
		return domain.Account{}, fmt.Errorf("%w: unknown account type %q", ErrValidation, in.Type)
	}

	funded := in.FundFromAccountID != ""
	var fundID string
	if funded {
		if !in.FundAmount.IsPositive() {
			return domain.Account{}, fmt.Errorf("%w: fund amount must be greater than zero", ErrValidation)
		}
		var err error
		fundID, err = parseID(in.FundFromAccountID)
		if err != nil {
			return domain.Account{}, err
		}
	}

	balance := in.StartingBalance
	if funded {
		balance = balance.Add(in.FundAmount)
	}

	var created domain.Account
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		created, err = s.Accounts.Insert(ctx, tx, actor, in.Name, in.Type, balance)
		if err != nil {
			return err
		}

		if funded {
			if _, err := s.Accounts.GetOwned(ctx, tx, fundID, actor); err != nil {
				return err
			}
			if err := s.Accounts.TryWithdraw(ctx, tx, fundID, in.FundAmount); err != nil {
				return err
			}
			desc := "Initial funding for " + in.Name
			if _, err := s.Log.Insert(ctx, tx, fundID, &created.ID, in.FundAmount, &desc, time.Now().UTC(), domain.TxTransfer); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Account{}, err
	}

	s.record(ctx, actor, "account.create", "account", created.ID)
	return created, nil
}

// DeleteAccount removes the account and its own transactions. It is refused
// while any TRANSFER row still connects the account to another live account,
// so the surviving side's history stays replayable.
func (s *Service) DeleteAccount(ctx context.Context, actor, accountID string) error {
	id, err := parseID(accountID)
	if err != nil {
		return err
	}

	err = s.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := s.Accounts.GetOwned(ctx, tx, id, actor); err != nil {
			return err
		}

		links, err := s.Log.CountLiveTransferLinks(ctx, tx, id)
		if err != nil {
			return err
		}
		if links > 0 {
			return fmt.Errorf("%w: account has transfers linked to other accounts; delete those first", ErrConflict)
		}

		if err := s.Log.DeleteByAccount(ctx, tx, id); err != nil {
			return err
		}
		return s.Accounts.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	s.record(ctx, actor, "account.delete", "account", id)
	return nil
}

// ListAccounts returns ownerID's accounts, oldest first.
func (s *Service) ListAccounts(ctx context.Context, ownerID string) ([]domain.Account, error) {
	return s.Accounts.ListByUser(ctx, s.Pool, ownerID)
}

// ListTransactions returns ownerID's log rows, newest first.
func (s *Service) ListTransactions(ctx context.Context, ownerID string, limit int) ([]domain.Transaction, error) {
	return s.Log.ListByUser(ctx, s.Pool, ownerID, limit)
}
