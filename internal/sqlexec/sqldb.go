// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"context"
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/microsoft/go-mssqldb"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLDB implements DB over database/sql for SQL Server, MySQL and SQLite.
type SQLDB struct {
	db      *sql.DB
	dialect Dialect
}

func openSQL(driver, conn string, d Dialect) (*SQLDB, error) {
	db, err := sql.Open(driver, conn)
	if err != nil {
		return nil, err
	}
	return &SQLDB{db: db, dialect: d}, nil
}

// NewSQLDB wraps an existing handle.
func NewSQLDB(db *sql.DB, d Dialect) *SQLDB {
	return &SQLDB{db: db, dialect: d}
}

type sqlQueryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// sqlQuerier adapts *sql.DB and *sql.Tx to Querier.
type sqlQuerier struct {
	q sqlQueryer
}

func (s sqlQuerier) Query(ctx context.Context, query string, args ...any) (*Result, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	res := &Result{Columns: cols, Rows: [][]any{}}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range vals {
			vals[i] = normalizeValue(v)
		}
		res.Rows = append(res.Rows, vals)
	}
	return res, rows.Err()
}

func (s sqlQuerier) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	r, err := s.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := r.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// Run executes a query with no arguments.
func (d *SQLDB) Run(ctx context.Context, query string) (*Result, error) {
	return d.Query(ctx, query)
}

func (d *SQLDB) Query(ctx context.Context, query string, args ...any) (*Result, error) {
	return sqlQuerier{d.db}.Query(ctx, query, args...)
}

func (d *SQLDB) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return sqlQuerier{d.db}.Exec(ctx, query, args...)
}

func (d *SQLDB) Tables(ctx context.Context) ([]string, error) {
	res, err := d.Query(ctx, d.dialect.TablesQuery())
	if err != nil {
		return nil, err
	}
	return firstColumn(res), nil
}

func (d *SQLDB) Columns(ctx context.Context, table string) ([]Column, error) {
	q, args := d.dialect.ColumnsQuery(table)
	res, err := d.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return scanColumns(res), nil
}

func (d *SQLDB) InTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(sqlQuerier{tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Warn().Err(rbErr).Msg("rollback failed")
		}
		return err
	}
	return tx.Commit()
}

func (d *SQLDB) Ping(ctx context.Context) error { return d.db.PingContext(ctx) }
func (d *SQLDB) Dialect() Dialect { return d.dialect }
func (d *SQLDB) Close() error { return d.db.Close() }
