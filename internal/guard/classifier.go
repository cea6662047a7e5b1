// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package guard holds the lexical safety checks applied between free-form user
// text and SQL execution: a deny-list statement classifier and an input
// sanitizer.
//
// The classifier is deliberately not a SQL parser. It upper-cases the
// statement and looks for forbidden keywords anywhere in the text, including
// inside string literals and identifiers, so a column named DROPDOWN is
// rejected just like a DROP statement.
package guard

import (
	"fmt"
	"strings"
)

// Category groups forbidden keywords by the kind of operation they perform.
type Category string

const (
	CategoryModification Category = "modification"
	CategoryStructure    Category = "structure"
	CategoryExecution    Category = "execution"
	CategoryAccess       Category = "access"
	CategorySystem       Category = "system"
)

// SafeReason is returned alongside a positive classification.
const SafeReason = "valid statement"

// rule binds a category to its keywords. The table is a slice so the scan
// order, and therefore the reported keyword, is stable.
type rule struct {
	category Category
	keywords []string
}

var forbidden = []rule{
	{CategoryModification, []string{"DELETE", "DROP", "UPDATE", "INSERT"}},
	{CategoryStructure, []string{"ALTER", "CREATE", "RENAME"}},
	{CategoryExecution, []string{"EXEC", "EXECUTE", "SP_", "XP_"}},
	{CategoryAccess, []string{"GRANT", "REVOKE", "DENY"}},
	{CategorySystem, []string{"SHUTDOWN", "KILL", "BACKUP"}},
}

// Rejection describes the first forbidden keyword found in a statement.
type Rejection struct {
	Keyword  string
	Category Category
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("forbidden operation: %s (%s)", r.Keyword, r.Category)
}

// Check returns the first forbidden keyword found in statement, or nil when
// the statement contains none.
func Check(statement string) *Rejection {
	upper := strings.ToUpper(statement)
	for _, r := range forbidden {
		for _, kw := range r.keywords {
			if strings.Contains(upper, kw) {
				return &Rejection{Keyword: kw, Category: r.category}
			}
		}
	}
	return nil
}

// IsSafe reports whether statement may be executed. The reason names the
// offending keyword and its category when it may not.
func IsSafe(statement string) (bool, string) {
	if rej := Check(statement); rej != nil {
		return false, rej.Error()
	}
	return true, SafeReason
}

// CategoryKeywords pairs a category with its forbidden keywords.
type CategoryKeywords struct {
	Category Category
	Keywords []string
}

// Categories returns the category table in scan order. Callers get a copy.
func Categories() []CategoryKeywords {
	out := make([]CategoryKeywords, 0, len(forbidden))
	for _, r := range forbidden {
		out = append(out, CategoryKeywords{Category: r.category, Keywords: append([]string(nil), r.keywords...)})
	}
	return out
}
