// Package backup implements the dashboard snapshot download and upload. The
// export is the caller's own data only; shared-with-me dashboards are never
// included.
package backup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/brennuck/sprout/internal/domain"
	"github.com/brennuck/sprout/internal/ledger"
	"github.com/brennuck/sprout/internal/money"
)

type Service struct {
	Pool     ledger.Pool
	Accounts ledger.AccountsRepo
	Log      ledger.TransactionsRepo
}

func NewService(pool *pgxpool.Pool) *Service {
	return &Service{Pool: pool}
}

// ExportedAccount and ExportedTransaction are the persisted snapshot shapes.
// Amounts serialize as plain numbers; dates in RFC 3339.
type ExportedAccount struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	Balance float64 `json:"balance"`
}

type ExportedTransaction struct {
	ID                  string  `json:"id"`
	Amount              float64 `json:"amount"`
	Description         *string `json:"description"`
	Date                string  `json:"date"`
	Type                string  `json:"type"`
	AccountID           string  `json:"accountId"`
	TransferToAccountID *string `json:"transferToAccountId"`
}

type Export struct {
	ExportedAt   string                `json:"exportedAt"`
	Accounts     []ExportedAccount     `json:"accounts"`
	Transactions []ExportedTransaction `json:"transactions"`
}

// ExportData snapshots every account and transaction the actor owns.
func (s *Service) ExportData(ctx context.Context, actor string) (Export, error) {
	out := Export{
		ExportedAt:   time.Now().UTC().Format(time.RFC3339),
		Accounts:     []ExportedAccount{},
		Transactions: []ExportedTransaction{},
	}

	accounts, err := s.Accounts.ListByUser(ctx, s.Pool, actor)
	if err != nil {
		return Export{}, err
	}
	for _, a := range accounts {
		out.Accounts = append(out.Accounts, ExportedAccount{
			ID:      a.ID,
			Name:    a.Name,
			Type:    string(a.Type),
			Balance: a.Balance.InexactFloat64(),
		})
	}

	rows, err := s.Pool.Query(ctx, `
		SELECT t.id::text, t.account_id::text, t.transfer_to_account_id::text, t.amount::text, t.description, t.date, t.type
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE a.user_id = $1::uuid
		ORDER BY t.created_at DESC`,
		actor,
	)
	if err != nil {
		return Export{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e      ExportedTransaction
			amount string
			date   time.Time
		)
		if err := rows.Scan(&e.ID, &e.AccountID, &e.TransferToAccountID, &amount, &e.Description, &date, &e.Type); err != nil {
			return Export{}, err
		}
		amt, err := decimal.NewFromString(amount)
		if err != nil {
			return Export{}, err
		}
		e.Amount = amt.InexactFloat64()
		e.Date = date.UTC().Format(time.RFC3339)
		out.Transactions = append(out.Transactions, e)
	}
	return out, rows.Err()
}

// ImportedAccount and ImportedTransaction are the upload shapes: the export
// format minus ids. Transaction account references are the exported account
// names; anything unresolved imports with a NULL reference.
type ImportedAccount struct {
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	Balance float64 `json:"balance"`
}

type ImportedTransaction struct {
	Amount              float64 `json:"amount"`
	Description         *string `json:"description"`
	Date                string  `json:"date"`
	Type                string  `json:"type"`
	AccountID           string  `json:"accountId"`
	TransferToAccountID *string `json:"transferToAccountId"`
}

type Import struct {
	Accounts     []ImportedAccount     `json:"accounts"`
	Transactions []ImportedTransaction `json:"transactions"`
}

// ResolveReference maps an imported account reference through the
// name-to-new-id mapping. Unknown references resolve to nil.
func ResolveReference(mapping map[string]string, ref string) *string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil
	}
	if id, ok := mapping[ref]; ok {
		return &id
	}
	return nil
}

// ValidateImport checks the payload before any row is written.
func ValidateImport(in Import) error {
	if len(in.Accounts) == 0 {
		return fmt.Errorf("%w: at least one account is required", ledger.ErrValidation)
	}
	for _, a := range in.Accounts {
		if strings.TrimSpace(a.Name) == "" {
			return fmt.Errorf("%w: account name is required", ledger.ErrValidation)
		}
		if !domain.ValidAccountType(a.Type) {
			return fmt.Errorf("%w: unknown account type %q", ledger.ErrValidation, a.Type)
		}
	}
	for _, t := range in.Transactions {
		if !domain.ValidTransactionType(t.Type) {
			return fmt.Errorf("%w: unknown transaction type %q", ledger.ErrValidation, t.Type)
		}
	}
	return nil
}

// ImportData creates every account and transaction atomically. Fresh ids are
// assigned; amounts are stored as their absolute value so the log's
// non-negative-magnitude invariant holds for foreign exports that carry
// signed amounts.
func (s *Service) ImportData(ctx context.Context, actor string, in Import) error {
	if err := ValidateImport(in); err != nil {
		return err
	}

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.importAll(ctx, tx, actor, in); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Service) importAll(ctx context.Context, tx pgx.Tx, actor string, in Import) error {
	mapping := make(map[string]string, len(in.Accounts))
	for _, a := range in.Accounts {
		created, err := s.Accounts.Insert(ctx, tx, actor, a.Name, domain.AccountType(a.Type), money.FromFloat(a.Balance))
		if err != nil {
			return err
		}
		mapping[a.Name] = created.ID
	}

	for _, t := range in.Transactions {
		accountRef := ResolveReference(mapping, t.AccountID)
		if accountRef == nil {
			// A log row needs a primary account; rows whose account did not
			// survive the export are skipped.
			continue
		}

		var transferTo *string
		if t.TransferToAccountID != nil {
			transferTo = ResolveReference(mapping, *t.TransferToAccountID)
		}

		date := time.Now().UTC()
		if parsed, err := parseImportDate(t.Date); err == nil {
			date = parsed
		}

		amount := money.FromFloat(t.Amount).Abs()
		if _, err := s.Log.Insert(ctx, tx, *accountRef, transferTo, amount, t.Description, date, domain.TransactionType(t.Type)); err != nil {
			return err
		}
	}
	return nil
}

func parseImportDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
