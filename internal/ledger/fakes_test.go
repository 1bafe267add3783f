package ledger

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// memStore is an in-memory stand-in for the Postgres pool. It understands the
// repos' statements just enough to honor the same row semantics, and its
// transactions snapshot state so rollbacks are observable.
type memStore struct {
	accounts     map[string]memAccount
	transactions map[string]memTransaction
	editShares   map[string]bool // "owner|viewer" pairs holding EDIT
	auditWrites  int
	nextID       int
}

type memAccount struct {
	UserID    string
	Name      string
	Type      string
	Balance   decimal.Decimal
	CreatedAt time.Time
}

type memTransaction struct {
	AccountID   string
	TransferTo  *string
	Amount      decimal.Decimal
	Description *string
	Date        time.Time
	Type        string
	CreatedAt   time.Time
}

func newMemStore() *memStore {
	return &memStore{
		accounts:     map[string]memAccount{},
		transactions: map[string]memTransaction{},
		editShares:   map[string]bool{},
	}
}

func (m *memStore) newID() string {
	m.nextID++
	return fmt.Sprintf("00000000-0000-0000-0000-%012d", m.nextID)
}

func (m *memStore) addAccount(userID, name, balance string) string {
	id := m.newID()
	m.accounts[id] = memAccount{
		UserID:    userID,
		Name:      name,
		Type:      "SAVINGS",
		Balance:   decimal.RequireFromString(balance),
		CreatedAt: time.Now(),
	}
	return id
}

func (m *memStore) balanceOf(id string) decimal.Decimal {
	return m.accounts[id].Balance
}

func accountRow(id string, a memAccount) fakeRow {
	return fakeRow{vals: []any{id, a.UserID, a.Name, a.Type, a.Balance.String(), a.CreatedAt}}
}

func transactionRow(id string, t memTransaction) fakeRow {
	return fakeRow{vals: []any{id, t.AccountID, t.TransferTo, t.Amount.String(), t.Description, t.Date, t.Type, t.CreatedAt}}
}

func (m *memStore) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	switch {
	case strings.Contains(sql, "balance >= $1"):
		amount := decimal.RequireFromString(args[0].(string))
		id := args[1].(string)
		a, ok := m.accounts[id]
		if !ok || a.Balance.LessThan(amount) {
			return pgconn.NewCommandTag("UPDATE 0"), nil
		}
		a.Balance = a.Balance.Sub(amount)
		m.accounts[id] = a
		return pgconn.NewCommandTag("UPDATE 1"), nil

	case strings.Contains(sql, "balance = balance + $1"):
		delta := decimal.RequireFromString(args[0].(string))
		id := args[1].(string)
		a, ok := m.accounts[id]
		if !ok {
			return pgconn.NewCommandTag("UPDATE 0"), nil
		}
		a.Balance = a.Balance.Add(delta)
		m.accounts[id] = a
		return pgconn.NewCommandTag("UPDATE 1"), nil

	case strings.Contains(sql, "DELETE FROM transactions WHERE account_id"):
		n := 0
		for id, t := range m.transactions {
			if t.AccountID == args[0].(string) {
				delete(m.transactions, id)
				n++
			}
		}
		return pgconn.NewCommandTag(fmt.Sprintf("DELETE %d", n)), nil

	case strings.Contains(sql, "DELETE FROM transactions WHERE id"):
		id := args[0].(string)
		if _, ok := m.transactions[id]; !ok {
			return pgconn.NewCommandTag("DELETE 0"), nil
		}
		delete(m.transactions, id)
		return pgconn.NewCommandTag("DELETE 1"), nil

	case strings.Contains(sql, "DELETE FROM accounts"):
		id := args[0].(string)
		if _, ok := m.accounts[id]; !ok {
			return pgconn.NewCommandTag("DELETE 0"), nil
		}
		delete(m.accounts, id)
		return pgconn.NewCommandTag("DELETE 1"), nil

	case strings.Contains(sql, "INSERT INTO audit_logs"):
		m.auditWrites++
		return pgconn.NewCommandTag("INSERT 0 1"), nil

	default:
		return pgconn.CommandTag{}, fmt.Errorf("memStore: unexpected exec %q", sql)
	}
}

func (m *memStore) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	switch {
	case strings.Contains(sql, "INSERT INTO accounts"):
		id := m.newID()
		a := memAccount{
			UserID:    args[0].(string),
			Name:      args[1].(string),
			Type:      args[2].(string),
			Balance:   decimal.RequireFromString(args[3].(string)),
			CreatedAt: time.Now(),
		}
		m.accounts[id] = a
		return accountRow(id, a)

	case strings.Contains(sql, "INSERT INTO transactions"):
		id := m.newID()
		t := memTransaction{
			AccountID:   args[0].(string),
			TransferTo:  asStringPtr(args[1]),
			Amount:      decimal.RequireFromString(args[2].(string)),
			Description: asStringPtr(args[3]),
			Date:        args[4].(time.Time),
			Type:        args[5].(string),
			CreatedAt:   time.Now(),
		}
		m.transactions[id] = t
		return transactionRow(id, t)

	case strings.Contains(sql, "SELECT user_id::text FROM accounts"):
		a, ok := m.accounts[args[0].(string)]
		if !ok {
			return fakeRow{err: pgx.ErrNoRows}
		}
		return fakeRow{vals: []any{a.UserID}}

	case strings.Contains(sql, "dashboard_shares"):
		return fakeRow{vals: []any{m.editShares[args[0].(string)+"|"+args[1].(string)]}}

	case strings.Contains(sql, "COUNT(*)"):
		id := args[0].(string)
		var n int64
		for _, t := range m.transactions {
			if t.Type != "TRANSFER" {
				continue
			}
			if (t.AccountID == id && t.TransferTo != nil) || (t.TransferTo != nil && *t.TransferTo == id) {
				n++
			}
		}
		return fakeRow{vals: []any{n}}

	case strings.Contains(sql, "user_id = $2"):
		a, ok := m.accounts[args[0].(string)]
		if !ok || a.UserID != args[1].(string) {
			return fakeRow{err: pgx.ErrNoRows}
		}
		return accountRow(args[0].(string), a)

	case strings.Contains(sql, "FROM transactions"):
		t, ok := m.transactions[args[0].(string)]
		if !ok {
			return fakeRow{err: pgx.ErrNoRows}
		}
		return transactionRow(args[0].(string), t)

	case strings.Contains(sql, "FROM accounts"):
		a, ok := m.accounts[args[0].(string)]
		if !ok {
			return fakeRow{err: pgx.ErrNoRows}
		}
		return accountRow(args[0].(string), a)

	default:
		return fakeRow{err: fmt.Errorf("memStore: unexpected query %q", sql)}
	}
}

func (m *memStore) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	return nil, fmt.Errorf("memStore: unexpected multi-row query %q", sql)
}

func (m *memStore) Begin(_ context.Context) (pgx.Tx, error) {
	return &memTx{
		store:        m,
		accounts:     maps.Clone(m.accounts),
		transactions: maps.Clone(m.transactions),
	}, nil
}

func asStringPtr(v any) *string {
	if v == nil {
		return nil
	}
	if p, ok := v.(*string); ok {
		return p
	}
	s := v.(string)
	return &s
}

// memTx applies statements directly to the store; Rollback restores the
// snapshot taken at Begin.
type memTx struct {
	store        *memStore
	accounts     map[string]memAccount
	transactions map[string]memTransaction
	done         bool
}

func (t *memTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return t.store.Exec(ctx, sql, args...)
}

func (t *memTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return t.store.Query(ctx, sql, args...)
}

func (t *memTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return t.store.QueryRow(ctx, sql, args...)
}

func (t *memTx) Commit(context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	return nil
}

func (t *memTx) Rollback(context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.store.accounts = t.accounts
	t.store.transactions = t.transactions
	t.done = true
	return nil
}

func (t *memTx) Begin(context.Context) (pgx.Tx, error) {
	return nil, fmt.Errorf("memStore: nested transactions unsupported")
}

func (t *memTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, fmt.Errorf("memStore: CopyFrom unsupported")
}

func (t *memTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }

func (t *memTx) LargeObjects() pgx.LargeObjects { return pgx.LargeObjects{} }

func (t *memTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, fmt.Errorf("memStore: Prepare unsupported")
}

func (t *memTx) Conn() *pgx.Conn { return nil }

type fakeRow struct {
	vals []any
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.vals) {
		return fmt.Errorf("memStore: scan arity %d != %d", len(dest), len(r.vals))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r.vals[i].(string)
		case **string:
			if r.vals[i] == nil {
				*p = nil
			} else {
				*p = r.vals[i].(*string)
			}
		case *time.Time:
			*p = r.vals[i].(time.Time)
		case *bool:
			*p = r.vals[i].(bool)
		case *int64:
			*p = r.vals[i].(int64)
		default:
			return fmt.Errorf("memStore: unsupported scan dest %T", d)
		}
	}
	return nil
}
