// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"context"
	"fmt"
	"time"

	"sqlagent/cli/internal/dsn"
)

// ConnectTimeout bounds the initial connectivity check.
const ConnectTimeout = 5 * time.Second

// Runner is the query capability the retry executor drives.
type Runner interface {
	Run(ctx context.Context, query string) (*Result, error)
}

// Querier runs parameterized statements.
type Querier interface {
	Query(ctx context.Context, query string, args ...any) (*Result, error)
	Exec(ctx context.Context, query string, args ...any) (int64, error)
}

// Column describes one table column.
type Column struct {
	Name     string
	Type     string
	Nullable bool
}

// DB is a connected catalog database.
type DB interface {
	Runner
	Querier
	Tables(ctx context.Context) ([]string, error)
	Columns(ctx context.Context, table string) ([]Column, error)
	// InTx runs fn inside a transaction, committing when fn returns nil.
	InTx(ctx context.Context, fn func(q Querier) error) error
	Ping(ctx context.Context) error
	Dialect() Dialect
	Close() error
}

// Open connects to the database described by info and verifies the
// connection with a ping bounded by ConnectTimeout.
func Open(ctx context.Context, info *dsn.Info) (DB, error) {
	conn, err := dsn.ConnString(info)
	if err != nil {
		return nil, err
	}

	var db DB
	switch info.Type {
	case dsn.DBTypePostgreSQL:
		db, err = openPostgres(ctx, conn)
	case dsn.DBTypeSQLServer:
		db, err = openSQL("sqlserver", conn, DialectFor(info.Type))
	case dsn.DBTypeMySQL:
		db, err = openSQL("mysql", conn, DialectFor(info.Type))
	case dsn.DBTypeSQLite:
		db, err = openSQL("sqlite", conn, DialectFor(info.Type))
	default:
		return nil, fmt.Errorf("unsupported database type %q", info.Type)
	}
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, ConnectTimeout)
	defer cancel()
	if err := db.Ping(pingCtx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func scanColumns(res *Result) []Column {
	cols := make([]Column, 0, len(res.Rows))
	for _, row := range res.Rows {
		if len(row) < 3 {
			continue
		}
		cols = append(cols, Column{
			Name:     fmt.Sprint(normalizeValue(row[0])),
			Type:     fmt.Sprint(normalizeValue(row[1])),
			Nullable: fmt.Sprint(normalizeValue(row[2])) != "NO",
		})
	}
	return cols
}

func firstColumn(res *Result) []string {
	out := make([]string, 0, len(res.Rows))
	for _, row := range res.Rows {
		if len(row) > 0 {
			out = append(out, fmt.Sprint(normalizeValue(row[0])))
		}
	}
	return out
}
