// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package guard

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSafe(t *testing.T) {
	tests := []struct {
		name       string
		statement  string
		wantSafe   bool
		wantReason string
	}{
		{
			name:       "plain select",
			statement:  "SELECT TOP 5 [CÓDIGO], [NOME] FROM Admat_OPCOM",
			wantSafe:   true,
			wantReason: "valid statement",
		},
		{
			name:       "empty statement",
			statement:  "",
			wantSafe:   true,
			wantReason: "valid statement",
		},
		{
			name:       "drop lower case",
			statement:  "drop table t",
			wantReason: "forbidden operation: DROP (modification)",
		},
		{
			name:       "keyword inside identifier",
			statement:  "SELECT DROPDOWN FROM t",
			wantReason: "forbidden operation: DROP (modification)",
		},
		{
			name:       "alter",
			statement:  "ALTER TABLE t ADD x INT",
			wantReason: "forbidden operation: ALTER (structure)",
		},
		{
			name:       "exec matches before execute",
			statement:  "EXECUTE sp_who",
			wantReason: "forbidden operation: EXEC (execution)",
		},
		{
			name:       "stored procedure prefix",
			statement:  "SELECT * FROM xp_cmdshell",
			wantReason: "forbidden operation: XP_ (execution)",
		},
		{
			name:       "grant",
			statement:  "grant select on t to bob",
			wantReason: "forbidden operation: GRANT (access)",
		},
		{
			name:       "shutdown",
			statement:  "SHUTDOWN WITH NOWAIT",
			wantReason: "forbidden operation: SHUTDOWN (system)",
		},
		{
			name:       "first category in table order wins",
			statement:  "BACKUP DATABASE x; DELETE FROM t",
			wantReason: "forbidden operation: DELETE (modification)",
		},
		{
			name:       "keyword inside string literal",
			statement:  "SELECT * FROM t WHERE [NOME] = 'kill bill'",
			wantReason: "forbidden operation: KILL (system)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := IsSafe(tt.statement)
			assert.Equal(t, tt.wantSafe, ok)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}

func TestIsSafe_EveryKeywordInEveryPosition(t *testing.T) {
	for _, ck := range Categories() {
		category := ck.Category
		for _, kw := range ck.Keywords {
			for _, stmt := range []string{
				kw + " x",
				"select 1 " + strings.ToLower(kw),
				"select a" + kw + "b from t",
			} {
				ok, reason := IsSafe(stmt)
				require.False(t, ok, stmt)
				// EXEC shadows EXECUTE, so only the category is guaranteed.
				assert.Contains(t, reason, fmt.Sprintf("(%s)", category), stmt)
				assert.True(t, strings.HasPrefix(reason, "forbidden operation: "), stmt)
			}
		}
	}
}

func TestCheck(t *testing.T) {
	assert.Nil(t, Check("SELECT [PREÇO 38%] FROM Admat_OPCOM"))

	rej := Check("select 1; truncate; revoke all")
	require.NotNil(t, rej)
	assert.Equal(t, "REVOKE", rej.Keyword)
	assert.Equal(t, CategoryAccess, rej.Category)
	assert.EqualError(t, rej, "forbidden operation: REVOKE (access)")
}

func TestCategories_ScanOrder(t *testing.T) {
	var order []Category
	for _, ck := range Categories() {
		order = append(order, ck.Category)
	}
	assert.Equal(t, []Category{
		CategoryModification, CategoryStructure, CategoryExecution, CategoryAccess, CategorySystem,
	}, order)
	assert.Equal(t, []string{"EXEC", "EXECUTE", "SP_", "XP_"}, Categories()[2].Keywords)
}

func TestCategories_ReturnsCopy(t *testing.T) {
	c := Categories()
	require.Len(t, c, 5)
	c[0].Keywords[0] = "SELECT"

	ok, _ := IsSafe("SELECT 1")
	assert.True(t, ok)
	assert.Equal(t, "DELETE", Categories()[0].Keywords[0])
}
