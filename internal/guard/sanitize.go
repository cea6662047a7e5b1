// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package guard

import "strings"

// sanitizeTokens are removed from user text in this order. Removal is a plain
// substring deletion, so a deletion can join two fragments into a new token
// (e.g. "-;-" becomes "--"). That is accepted: the classifier still runs on
// any SQL the agent produces.
var sanitizeTokens = []string{";", "--", "/*", "*/", "xp_", "sp_"}

// Sanitize strips statement terminators, comment openers and stored-procedure
// prefixes from raw user text. It never fails; empty input yields "".
func Sanitize(text string) string {
	out := text
	for _, tok := range sanitizeTokens {
		out = strings.ReplaceAll(out, tok, "")
	}
	return out
}
