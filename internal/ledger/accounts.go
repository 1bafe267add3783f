package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/brennuck/sprout/internal/domain"
)

// DB is satisfied by both *pgxpool.Pool and pgx.Tx, so repo methods run the
// same queries inside and outside an atomic unit.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Pool is the subset of *pgxpool.Pool the services depend on: plain queries
// plus the ability to start an atomic unit.
type Pool interface {
	DB
	Begin(ctx context.Context) (pgx.Tx, error)
}

// AccountsRepo is the account store: account rows plus their cached balance.
type AccountsRepo struct{}

const accountColumns = `id::text, user_id::text, name, type, balance::text, created_at`

func scanAccount(row pgx.Row) (domain.Account, error) {
	var (
		a       domain.Account
		typ     string
		balance string
	)
	if err := row.Scan(&a.ID, &a.UserID, &a.Name, &typ, &balance, &a.CreatedAt); err != nil {
		return domain.Account{}, err
	}
	a.Type = domain.AccountType(typ)
	bal, err := decimal.NewFromString(balance)
	if err != nil {
		return domain.Account{}, err
	}
	a.Balance = bal
	return a, nil
}

func (AccountsRepo) Insert(ctx context.Context, db DB, userID, name string, typ domain.AccountType, balance decimal.Decimal) (domain.Account, error) {
	row := db.QueryRow(ctx, `
		INSERT INTO accounts (user_id, name, type, balance)
		VALUES ($1::uuid, $2, $3, $4::numeric)
		RETURNING `+accountColumns,
		userID, name, string(typ), balance.String(),
	)
	return scanAccount(row)
}

// GetOwned loads an account only when it belongs to userID. Missing and
// unowned rows are indistinguishable to the caller.
func (AccountsRepo) GetOwned(ctx context.Context, db DB, accountID, userID string) (domain.Account, error) {
	row := db.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1::uuid AND user_id = $2::uuid`,
		accountID, userID,
	)
	a, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Account{}, ErrNotFound
	}
	return a, err
}

func (AccountsRepo) Get(ctx context.Context, db DB, accountID string) (domain.Account, error) {
	row := db.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1::uuid`,
		accountID,
	)
	a, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Account{}, ErrNotFound
	}
	return a, err
}

func (AccountsRepo) ListByUser(ctx context.Context, db DB, userID string) ([]domain.Account, error) {
	rows, err := db.Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE user_id = $1::uuid
		ORDER BY created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AddToBalance applies one signed delta. The read-modify-write happens inside
// the UPDATE itself, so concurrent deltas serialize on the row.
func (AccountsRepo) AddToBalance(ctx context.Context, db DB, accountID string, delta decimal.Decimal) error {
	ct, err := db.Exec(ctx, `
		UPDATE accounts SET balance = balance + $1::numeric WHERE id = $2::uuid`,
		delta.String(), accountID,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// TryWithdraw debits amount only when the current balance covers it. The
// predicate is evaluated atomically at write time, which closes the
// check-then-debit race between concurrent transfers from the same account.
func (AccountsRepo) TryWithdraw(ctx context.Context, db DB, accountID string, amount decimal.Decimal) error {
	ct, err := db.Exec(ctx, `
		UPDATE accounts
		SET balance = balance - $1::numeric
		WHERE id = $2::uuid AND balance >= $1::numeric`,
		amount.String(), accountID,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrInsufficientFunds
	}
	return nil
}

func (AccountsRepo) Delete(ctx context.Context, db DB, accountID string) error {
	ct, err := db.Exec(ctx, `DELETE FROM accounts WHERE id = $1::uuid`, accountID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Owner resolves the owning user of an account.
func (AccountsRepo) Owner(ctx context.Context, db DB, accountID string) (string, error) {
	var userID string
	err := db.QueryRow(ctx, `SELECT user_id::text FROM accounts WHERE id = $1::uuid`, accountID).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return userID, err
}
