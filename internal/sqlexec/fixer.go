// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"strings"
)

// invalidColumnMarker is the SQL Server error text that triggers a quoting
// repair before the next attempt.
const invalidColumnMarker = "invalid column name"

// isInvalidColumnError reports whether err looks like an unknown-identifier
// error caused by ANSI double quoting.
func isInvalidColumnError(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), invalidColumnMarker)
}

// NormalizeQuoting rewrites double-quoted identifiers into SQL Server
// bracket identifiers: "PREÇO 38%" becomes [PREÇO 38%]. Quotes inside
// single-quoted string literals are left alone. An unpaired trailing quote
// is turned into an opening bracket, which keeps the statement invalid in
// the same place for the next attempt to report.
func NormalizeQuoting(query string) string {
	var b strings.Builder
	b.Grow(len(query))

	inLiteral := false
	open := false
	for _, r := range query {
		switch {
		case r == '\'' && !open:
			inLiteral = !inLiteral
			b.WriteRune(r)
		case r == '"' && !inLiteral:
			if open {
				b.WriteRune(']')
			} else {
				b.WriteRune('[')
			}
			open = !open
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
