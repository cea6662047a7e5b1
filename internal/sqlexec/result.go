// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package sqlexec runs read-only catalog queries against the configured
// database and renders the results for the agent. It wraps several drivers
// behind one DB interface (pgx for PostgreSQL, database/sql for SQL Server,
// MySQL and SQLite), caches table metadata, and retries failed queries a
// bounded number of times.
//
// Key features include:
//   - Bounded retries with identifier quoting repair for SQL Server
//   - Column metadata caching via SchemaInspector
//   - Text and JSON result rendering with driver type normalization
package sqlexec

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxRenderedRows caps how many rows String includes.
const MaxRenderedRows = 200

// Result represents a normalized SQL result.
type Result struct {
	Columns      []string `json:"columns"`
	Rows         [][]any  `json:"rows"`
	RowsAffected int64    `json:"rows_affected,omitempty"`
}

// String renders the result as a tab-separated header followed by one line
// per row. Rows beyond MaxRenderedRows are summarized in a trailing line.
// A result with no columns renders as "".
func (r *Result) String() string {
	if r == nil || len(r.Columns) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(strings.Join(r.Columns, "\t"))
	for i, row := range r.Rows {
		if i == MaxRenderedRows {
			fmt.Fprintf(&b, "\n... %d more rows", len(r.Rows)-MaxRenderedRows)
			break
		}
		b.WriteString("\n")
		for j, v := range row {
			if j > 0 {
				b.WriteString("\t")
			}
			b.WriteString(renderValue(normalizeValue(v)))
		}
	}
	return b.String()
}

func renderValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case string:
		return strings.NewReplacer("\t", " ", "\n", " ").Replace(t)
	default:
		return fmt.Sprint(t)
	}
}

// MarshalJSON normalizes driver values (byte slices, UUIDs, times) so the
// payload is plain JSON.
func (r Result) MarshalJSON() ([]byte, error) {
	type Alias Result
	a := Alias(r)
	if a.Columns == nil {
		a.Columns = []string{}
	}
	rows := make([][]any, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = make([]any, len(row))
		for j, v := range row {
			rows[i][j] = normalizeValue(v)
		}
	}
	a.Rows = rows
	return json.Marshal(a)
}

// normalizeValue converts driver-specific types to JSON and text friendly
// values.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case [16]byte:
		return uuid.UUID(t).String()
	case []byte:
		// SQL Server returns UNIQUEIDENTIFIER as 16 raw bytes; text columns
		// from database/sql drivers may also arrive as []byte.
		if len(t) == 16 && !isPrintable(t) {
			if id, err := uuid.FromBytes(t); err == nil {
				return id.String()
			}
		}
		if isPrintable(t) {
			return string(t)
		}
		return fmt.Sprintf("\\x%x", t)
	case time.Time:
		return t.Format(time.RFC3339)
	case driver.Valuer:
		dv, err := t.Value()
		if err != nil {
			return fmt.Sprint(t)
		}
		return normalizeValue(dv)
	case fmt.Stringer:
		return t.String()
	default:
		return t
	}
}

func isPrintable(b []byte) bool {
	for _, c := range string(b) {
		if c == utf8.RuneError || (c < 0x20 && c != '\t' && c != '\n' && c != '\r') {
			return false
		}
	}
	return true
}
