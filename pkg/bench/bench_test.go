package bench

import (
	"context"
	"errors"
	"io"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
)

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)

	return log
}

// recordedQuery captures one QueryRow invocation.
type recordedQuery struct {
	sql  string
	args []any
}

// fakeRow satisfies pgx.Row for count queries.
type fakeRow struct {
	count int64
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}

	if p, ok := dest[0].(*int64); ok {
		*p = r.count
	}

	return nil
}

// fakeDB answers count queries through rowFn and hands batches to a
// configured fakeBatchResults.
type fakeDB struct {
	queries []recordedQuery
	rowFn   func(sql string, args []any) fakeRow
	batch   *pgx.Batch
	results *fakeBatchResults
}

func (db *fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (db *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	db.queries = append(db.queries, recordedQuery{sql: sql, args: args})

	if db.rowFn == nil {
		return fakeRow{}
	}

	return db.rowFn(sql, args)
}

func (db *fakeDB) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	db.batch = b

	return db.results
}

// fakeBatchResults confirms statements until failAt (or all of them when
// failAt is negative).
type fakeBatchResults struct {
	failAt   int
	failErr  error
	closeErr error

	confirmed int
	closed    bool
}

func (r *fakeBatchResults) Exec() (pgconn.CommandTag, error) {
	if r.failAt >= 0 && r.confirmed == r.failAt {
		return pgconn.CommandTag{}, r.failErr
	}

	r.confirmed++

	return pgconn.CommandTag{}, nil
}

func (r *fakeBatchResults) Query() (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (r *fakeBatchResults) QueryRow() pgx.Row {
	return fakeRow{err: errors.New("not implemented")}
}

func (r *fakeBatchResults) Close() error {
	r.closed = true

	return r.closeErr
}
