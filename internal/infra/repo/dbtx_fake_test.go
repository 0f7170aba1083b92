//go:build unit

package repo_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeDBTX is a hand-rolled double for txmanager.DBTX: there is no
// sqlc-generated query layer here to mock against (these repositories
// write raw SQL directly), so the fake sits one level lower than a
// generated query-layer mock would.
type fakeDBTX struct {
	execTag pgconn.CommandTag
	execErr error
	row     pgx.Row
	rows    pgx.Rows
	rowsErr error

	lastSQL  string
	lastArgs []any
}

func (f *fakeDBTX) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.lastSQL, f.lastArgs = sql, args
	return f.execTag, f.execErr
}

func (f *fakeDBTX) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.lastSQL, f.lastArgs = sql, args
	return f.rows, f.rowsErr
}

func (f *fakeDBTX) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.lastSQL, f.lastArgs = sql, args
	return f.row
}

// fakeRow is a minimal pgx.Row double: it copies canned values into the
// destination pointers Scan is called with, in order.
type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch v := d.(type) {
		case *string:
			*v = r.values[i].(string)
		case *int64:
			*v = r.values[i].(int64)
		case *time.Time:
			*v = r.values[i].(time.Time)
		default:
			panic("fakeRow: unsupported destination type in test")
		}
	}
	return nil
}
