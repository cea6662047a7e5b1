package sqlexec

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRunner returns errs[i] on the i-th call, then succeeds.
type scriptedRunner struct {
	errs    []error
	queries []string
	result  *Result
}

func (s *scriptedRunner) Run(_ context.Context, query string) (*Result, error) {
	s.queries = append(s.queries, query)
	if n := len(s.queries); n <= len(s.errs) && s.errs[n-1] != nil {
		return nil, s.errs[n-1]
	}
	return s.result, nil
}

func TestRunWithRetryAlwaysFails(t *testing.T) {
	boom := errors.New("login timeout expired")
	r := &scriptedRunner{errs: []error{boom, boom, boom, boom}}

	got := RunWithRetry(context.Background(), r, "SELECT 1", 3)

	assert.Equal(t, "error after 3 attempts: login timeout expired", got)
	assert.Len(t, r.queries, 3)
	assert.True(t, IsRetryExhausted(got))
}

func TestRunWithRetryDefaultAttempts(t *testing.T) {
	boom := errors.New("x")
	r := &scriptedRunner{errs: []error{boom, boom, boom, boom, boom}}

	got := RunWithRetry(context.Background(), r, "SELECT 1", 0)

	assert.Equal(t, "error after 3 attempts: x", got)
	assert.Len(t, r.queries, DefaultMaxAttempts)
}

func TestRunWithRetrySucceedsFirstTime(t *testing.T) {
	r := &scriptedRunner{result: &Result{Columns: []string{"n"}, Rows: [][]any{{int64(7)}}}}

	got := RunWithRetry(context.Background(), r, "SELECT COUNT(*) AS n FROM Admat_OPCOM", 3)

	assert.Equal(t, "n\n7", got)
	assert.Len(t, r.queries, 1)
	assert.False(t, IsRetryExhausted(got))
}

func TestRunWithRetryRewritesQuotingOnInvalidColumn(t *testing.T) {
	colErr := errors.New("mssql: Invalid column name 'PREÇO 38%'.")
	r := &scriptedRunner{
		errs:   []error{colErr, colErr},
		result: &Result{Columns: []string{"NOME"}, Rows: [][]any{{"CANETA"}}},
	}
	q := `SELECT TOP 1 "NOME" FROM Admat_OPCOM ORDER BY "PREÇO 38%" DESC`

	got := RunWithRetry(context.Background(), r, q, 3)

	assert.Equal(t, "NOME\nCANETA", got)
	require.Len(t, r.queries, 3)
	assert.Equal(t, q, r.queries[0])
	assert.Equal(t, `SELECT TOP 1 [NOME] FROM Admat_OPCOM ORDER BY [PREÇO 38%] DESC`, r.queries[1])
	assert.Equal(t, r.queries[1], r.queries[2])
}

func TestRunWithRetryOtherErrorsKeepQuery(t *testing.T) {
	r := &scriptedRunner{
		errs:   []error{errors.New("deadlock victim")},
		result: &Result{Columns: []string{"x"}},
	}
	q := `SELECT "x" FROM t`

	RunWithRetry(context.Background(), r, q, 3)

	require.Len(t, r.queries, 2)
	assert.Equal(t, q, r.queries[1])
}

func TestNormalizeQuoting(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`SELECT "A" FROM t`, `SELECT [A] FROM t`},
		{`SELECT "EST# UNE", "NOME" FROM t`, `SELECT [EST# UNE], [NOME] FROM t`},
		{`SELECT [A] FROM t WHERE x = 'say "hi"'`, `SELECT [A] FROM t WHERE x = 'say "hi"'`},
		{`SELECT 1`, `SELECT 1`},
		{`SELECT "broken`, `SELECT [broken`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeQuoting(tt.in))
	}
}

func TestIsRetryExhausted(t *testing.T) {
	assert.True(t, IsRetryExhausted("error after 5 attempts: boom"))
	assert.False(t, IsRetryExhausted("NOME\nerror after 3 attempts: x"))
	assert.False(t, IsRetryExhausted(""))
}
