// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"fmt"
	"strings"

	"sqlagent/cli/internal/dsn"
)

// Dialect captures the SQL differences between supported backends.
type Dialect struct {
	Name dsn.DBType
	// TextType is the column type used for columns added by spreadsheet sync.
	TextType string
}

// DialectFor returns the dialect of a database type.
func DialectFor(t dsn.DBType) Dialect {
	switch t {
	case dsn.DBTypePostgreSQL:
		return Dialect{Name: t, TextType: "TEXT"}
	case dsn.DBTypeMySQL:
		return Dialect{Name: t, TextType: "LONGTEXT"}
	case dsn.DBTypeSQLite:
		return Dialect{Name: t, TextType: "TEXT"}
	default:
		return Dialect{Name: dsn.DBTypeSQLServer, TextType: "NVARCHAR(MAX)"}
	}
}

// QuoteIdent quotes a table or column name. Names such as [PREÇO 38%] or
// [EST# UNE] need quoting on every backend.
func (d Dialect) QuoteIdent(name string) string {
	switch d.Name {
	case dsn.DBTypeSQLServer:
		return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
	case dsn.DBTypeMySQL:
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	default:
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	}
}

// Placeholder returns the bind parameter marker for the n-th (1-based) argument.
func (d Dialect) Placeholder(n int) string {
	switch d.Name {
	case dsn.DBTypeSQLServer:
		return fmt.Sprintf("@p%d", n)
	case dsn.DBTypePostgreSQL:
		return fmt.Sprintf("$%d", n)
	default:
		return "?"
	}
}

// SampleQuery selects the first n rows of a table.
func (d Dialect) SampleQuery(table string, n int) string {
	if d.Name == dsn.DBTypeSQLServer {
		return fmt.Sprintf("SELECT TOP %d * FROM %s", n, d.QuoteIdent(table))
	}
	return fmt.Sprintf("SELECT * FROM %s LIMIT %d", d.QuoteIdent(table), n)
}

// TablesQuery lists base tables visible to the connection.
func (d Dialect) TablesQuery() string {
	switch d.Name {
	case dsn.DBTypeSQLite:
		return `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`
	case dsn.DBTypePostgreSQL:
		return `SELECT table_name FROM information_schema.tables
			WHERE table_type = 'BASE TABLE' AND table_schema = current_schema()
			ORDER BY table_name`
	case dsn.DBTypeMySQL:
		return `SELECT table_name FROM information_schema.tables
			WHERE table_type = 'BASE TABLE' AND table_schema = DATABASE()
			ORDER BY table_name`
	default:
		return `SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES
			WHERE TABLE_TYPE = 'BASE TABLE'
			ORDER BY TABLE_NAME`
	}
}

// ColumnsQuery returns the metadata query for one table and its arguments.
// Every variant yields (name, type, nullable) rows in ordinal order.
func (d Dialect) ColumnsQuery(table string) (string, []any) {
	switch d.Name {
	case dsn.DBTypeSQLite:
		return `SELECT name, type, CASE WHEN "notnull" = 1 THEN 'NO' ELSE 'YES' END
			FROM pragma_table_info(?) ORDER BY cid`, []any{table}
	case dsn.DBTypePostgreSQL:
		return `SELECT column_name, data_type, is_nullable FROM information_schema.columns
			WHERE table_schema = current_schema() AND table_name = $1
			ORDER BY ordinal_position`, []any{table}
	case dsn.DBTypeMySQL:
		return `SELECT column_name, data_type, is_nullable FROM information_schema.columns
			WHERE table_schema = DATABASE() AND table_name = ?
			ORDER BY ordinal_position`, []any{table}
	default:
		return `SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE FROM INFORMATION_SCHEMA.COLUMNS
			WHERE TABLE_NAME = @p1
			ORDER BY ORDINAL_POSITION`, []any{table}
	}
}
