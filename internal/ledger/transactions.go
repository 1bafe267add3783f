package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/brennuck/sprout/internal/domain"
)

// TransactionsRepo is the append/remove-only transaction log.
type TransactionsRepo struct{}

const txColumns = `id::text, account_id::text, transfer_to_account_id::text, amount::text, description, date, type, created_at`

func scanTransaction(row pgx.Row) (domain.Transaction, error) {
	var (
		t      domain.Transaction
		typ    string
		amount string
	)
	if err := row.Scan(&t.ID, &t.AccountID, &t.TransferToAccountID, &amount, &t.Description, &t.Date, &typ, &t.CreatedAt); err != nil {
		return domain.Transaction{}, err
	}
	t.Type = domain.TransactionType(typ)
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return domain.Transaction{}, err
	}
	t.Amount = amt
	return t, nil
}

// Insert appends one log row. Amount must already be a non-negative magnitude.
func (TransactionsRepo) Insert(ctx context.Context, db DB, accountID string, transferTo *string, amount decimal.Decimal, description *string, date time.Time, typ domain.TransactionType) (domain.Transaction, error) {
	row := db.QueryRow(ctx, `
		INSERT INTO transactions (account_id, transfer_to_account_id, amount, description, date, type)
		VALUES ($1::uuid, $2::uuid, $3::numeric, $4, $5, $6)
		RETURNING `+txColumns,
		accountID, transferTo, amount.String(), description, date, string(typ),
	)
	return scanTransaction(row)
}

func (TransactionsRepo) Get(ctx context.Context, db DB, id string) (domain.Transaction, error) {
	row := db.QueryRow(ctx, `
		SELECT `+txColumns+`
		FROM transactions
		WHERE id = $1::uuid`,
		id,
	)
	t, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Transaction{}, ErrNotFound
	}
	return t, err
}

// ListByUser returns every log row whose primary account belongs to userID,
// newest first.
func (TransactionsRepo) ListByUser(ctx context.Context, db DB, userID string, limit int) ([]domain.Transaction, error) {
	if limit <= 0 || limit > 500 {
		limit = 200
	}

	rows, err := db.Query(ctx, `
		SELECT t.id::text, t.account_id::text, t.transfer_to_account_id::text, t.amount::text, t.description, t.date, t.type, t.created_at
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE a.user_id = $1::uuid
		ORDER BY t.created_at DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Transaction, 0, limit)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (TransactionsRepo) Delete(ctx context.Context, db DB, id string) error {
	ct, err := db.Exec(ctx, `DELETE FROM transactions WHERE id = $1::uuid`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountLiveTransferLinks counts TRANSFER rows that still connect accountID to
// another live account. Account deletion is refused while any exist.
func (TransactionsRepo) CountLiveTransferLinks(ctx context.Context, db DB, accountID string) (int64, error) {
	var n int64
	err := db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM transactions
		WHERE type = 'TRANSFER'
		  AND ((account_id = $1::uuid AND transfer_to_account_id IS NOT NULL)
		    OR transfer_to_account_id = $1::uuid)`,
		accountID,
	).Scan(&n)
	return n, err
}

// DeleteByAccount removes every log row whose primary account is accountID.
func (TransactionsRepo) DeleteByAccount(ctx context.Context, db DB, accountID string) error {
	_, err := db.Exec(ctx, `DELETE FROM transactions WHERE account_id = $1::uuid`, accountID)
	return err
}
