package sharing

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakePool scripts QueryRow results in call order and records every Exec so
// tests can assert status flips and audit writes without Postgres.
type fakePool struct {
	rows      []fakeRow
	execSQL   []string
	execArgs  [][]any
	begun     int
	committed int
	rolled    int
}

func (p *fakePool) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	if len(p.rows) == 0 {
		return fakeRow{err: fmt.Errorf("unexpected query %q", sql)}
	}
	r := p.rows[0]
	p.rows = p.rows[1:]
	return r
}

func (p *fakePool) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	p.execSQL = append(p.execSQL, sql)
	p.execArgs = append(p.execArgs, args)
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (p *fakePool) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	return nil, fmt.Errorf("unexpected multi-row query %q", sql)
}

func (p *fakePool) Begin(context.Context) (pgx.Tx, error) {
	p.begun++
	return &fakeTx{pool: p}, nil
}

type fakeTx struct {
	pool *fakePool
	done bool
}

func (t *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return t.pool.Exec(ctx, sql, args...)
}

func (t *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return t.pool.Query(ctx, sql, args...)
}

func (t *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return t.pool.QueryRow(ctx, sql, args...)
}

func (t *fakeTx) Commit(context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.pool.committed++
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.pool.rolled++
	return nil
}

func (t *fakeTx) Begin(context.Context) (pgx.Tx, error) {
	return nil, fmt.Errorf("nested transactions unsupported")
}

func (t *fakeTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, fmt.Errorf("CopyFrom unsupported")
}

func (t *fakeTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }

func (t *fakeTx) LargeObjects() pgx.LargeObjects { return pgx.LargeObjects{} }

func (t *fakeTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, fmt.Errorf("Prepare unsupported")
}

func (t *fakeTx) Conn() *pgx.Conn { return nil }

type fakeRow struct {
	vals []any
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.vals) {
		return fmt.Errorf("scan arity %d != %d", len(dest), len(r.vals))
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
		default:
			return fmt.Errorf("unsupported scan dest %T", d)
		}
	}
	return nil
}

func userRow(id, email string) fakeRow {
	return fakeRow{vals: []any{id, email, (*string)(nil), time.Now()}}
}

func invitationRow(id, sender, email string, expires time.Time) fakeRow {
	return fakeRow{vals: []any{id, sender, (*string)(nil), email, "VIEW", "PENDING", expires, time.Now()}}
}

func shareRow(id, owner, viewer string) fakeRow {
	return fakeRow{vals: []any{id, owner, viewer, "VIEW", time.Now()}}
}
