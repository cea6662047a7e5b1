// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"sqlagent/cli/internal/dsn"
)

// PgDB implements DB over a pgx connection pool.
type PgDB struct {
	Pool *pgxpool.Pool
}

func openPostgres(ctx context.Context, conn string) (*PgDB, error) {
	cfg, err := pgxpool.ParseConfig(conn)
	if err != nil {
		return nil, err
	}
	cfg.ConnConfig.ConnectTimeout = ConnectTimeout
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &PgDB{Pool: pool}, nil
}

type pgQueryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type pgQuerier struct {
	q pgQueryer
}

func (p pgQuerier) Query(ctx context.Context, query string, args ...any) (*Result, error) {
	rows, err := p.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fds := rows.FieldDescriptions()
	res := &Result{Columns: make([]string, len(fds)), Rows: [][]any{}}
	for i, fd := range fds {
		res.Columns[i] = fd.Name
	}
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, err
		}
		for i, v := range vals {
			vals[i] = normalizeValue(v)
		}
		res.Rows = append(res.Rows, vals)
	}
	return res, rows.Err()
}

func (p pgQuerier) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	ct, err := p.q.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (d *PgDB) Run(ctx context.Context, query string) (*Result, error) {
	return d.Query(ctx, query)
}

func (d *PgDB) Query(ctx context.Context, query string, args ...any) (*Result, error) {
	return pgQuerier{d.Pool}.Query(ctx, query, args...)
}

func (d *PgDB) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return pgQuerier{d.Pool}.Exec(ctx, query, args...)
}

func (d *PgDB) Tables(ctx context.Context) ([]string, error) {
	res, err := d.Query(ctx, d.Dialect().TablesQuery())
	if err != nil {
		return nil, err
	}
	return firstColumn(res), nil
}

func (d *PgDB) Columns(ctx context.Context, table string) ([]Column, error) {
	q, args := d.Dialect().ColumnsQuery(table)
	res, err := d.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return scanColumns(res), nil
}

func (d *PgDB) InTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			log.Warn().Err(err).Msg("rollback failed")
		}
	}()
	if err := fn(pgQuerier{tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (d *PgDB) Ping(ctx context.Context) error { return d.Pool.Ping(ctx) }
func (d *PgDB) Dialect() Dialect { return DialectFor(dsn.DBTypePostgreSQL) }

func (d *PgDB) Close() error {
	d.Pool.Close()
	return nil
}
