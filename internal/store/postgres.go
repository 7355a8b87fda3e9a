// Package store persists normalized datasets: Postgres as the durable sink,
// timestamped CSV files as the fallback, and an in-memory log of run
// summaries for the status API.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/citysense/weather-etl/internal/normalize"
)

// Execer is the slice of pgx needed for batch inserts. *pgxpool.Pool
// satisfies it.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Postgres bulk-inserts datasets into pre-existing tables.
type Postgres struct {
	db Execer
}

// NewPostgres creates a Postgres loader over an open connection pool.
func NewPostgres(db Execer) *Postgres {
	return &Postgres{db: db}
}

// Connect opens the shared connection pool. Callers close it once, after
// every load has run.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	return pool, nil
}

// Insert writes the whole dataset as one multi-row INSERT by named columns:
// a single statement, a single commit. An empty dataset is a no-op.
func (p *Postgres) Insert(ctx context.Context, ds normalize.Dataset, table string) error {
	if len(ds.Rows) == 0 {
		return nil
	}

	sql, args := buildInsert(ds, table)
	if _, err := p.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("bulk insert into %s: %w", table, err)
	}
	return nil
}

func buildInsert(ds normalize.Dataset, table string) (string, []any) {
	cols := make([]string, len(ds.Columns))
	for i, c := range ds.Columns {
		cols[i] = pgx.Identifier{c}.Sanitize()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ",
		pgx.Identifier{table}.Sanitize(), strings.Join(cols, ", "))

	args := make([]any, 0, len(ds.Rows)*len(ds.Columns))
	for i, row := range ds.Rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for j, col := range ds.Columns {
			if j > 0 {
				b.WriteString(", ")
			}
			args = append(args, row[col])
			fmt.Fprintf(&b, "$%d", len(args))
		}
		b.WriteByte(')')
	}
	return b.String(), args
}
