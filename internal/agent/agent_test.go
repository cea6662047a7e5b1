package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqlagent/cli/internal/dsn"
	"sqlagent/cli/internal/sqlexec"
)

// scriptedModel replays completions in order and records the prompts.
type scriptedModel struct {
	completions []string
	prompts     []string
	err         error
}

func (m *scriptedModel) Complete(_ context.Context, prompt string, _ []string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	i := len(m.prompts) - 1
	if i >= len(m.completions) {
		return m.completions[len(m.completions)-1], nil
	}
	return m.completions[i], nil
}

func openCatalog(t *testing.T) sqlexec.DB {
	t.Helper()
	ctx := context.Background()
	db, err := sqlexec.Open(ctx, &dsn.Info{Type: dsn.DBTypeSQLite, Database: filepath.Join(t.TempDir(), "catalog.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	for _, stmt := range []string{
		`CREATE TABLE "Admat_OPCOM" ("CÓDIGO" INTEGER, "NOME" TEXT, "PREÇO 38%" REAL)`,
		`INSERT INTO "Admat_OPCOM" VALUES (661912, 'TECIDO AZUL', 19.9), (661913, 'LINHA', 3.5)`,
		`CREATE TABLE "Secret" ("x" TEXT)`,
	} {
		_, err := db.Exec(ctx, stmt)
		require.NoError(t, err)
	}
	return db
}

func catalogAgent(t *testing.T, m Model, db sqlexec.DB) *SQLAgent {
	t.Helper()
	return New(m, NewSQLTools(db, nil, ToolConfig{IncludeTables: []string{"Admat_OPCOM", "Opcom"}, SampleRows: 3}))
}

func TestSQLAgentAnswersWithTools(t *testing.T) {
	db := openCatalog(t)
	m := &scriptedModel{completions: []string{
		" First I need to see the available tables\nAction: sql_db_list_tables\nAction Input: none",
		" I need the structure\nAction: sql_db_schema\nAction Input: Admat_OPCOM",
		" Now the query\nAction: sql_db_query\nAction Input: SELECT \"NOME\", \"PREÇO 38%\" FROM \"Admat_OPCOM\" WHERE \"CÓDIGO\" = 661912",
		" I now know the final answer\nFinal Answer: TECIDO AZUL costs 19.9",
	}}

	resp, err := catalogAgent(t, m, db).Invoke(context.Background(), "What is the price of product 661912?")

	require.NoError(t, err)
	assert.Equal(t, "TECIDO AZUL costs 19.9", resp.Output)
	require.Len(t, resp.Steps, 3)
	assert.Equal(t, "Admat_OPCOM", resp.Steps[0].Observation)
	assert.Contains(t, resp.Steps[1].Observation, "3 rows from Admat_OPCOM table:")
	assert.Equal(t, "NOME\tPREÇO 38%\nTECIDO AZUL\t19.9", resp.Steps[2].Observation)
	assert.Equal(t, "First I need to see the available tables", resp.Steps[0].Thought)

	require.Len(t, m.prompts, 4)
	assert.Contains(t, m.prompts[0], "Question: What is the price of product 661912?")
	assert.Contains(t, m.prompts[0], "[PREÇO 38%]: product price")
	assert.Contains(t, m.prompts[1], "Observation: Admat_OPCOM\nThought:")
}

func TestSQLAgentRejectsUnsafeStatements(t *testing.T) {
	ctx := context.Background()
	db := openCatalog(t)
	m := &scriptedModel{completions: []string{
		" Remove it\nAction: sql_db_query\nAction Input: DELETE FROM \"Admat_OPCOM\"",
		" I cannot\nFinal Answer: not allowed",
	}}

	resp, err := catalogAgent(t, m, db).Invoke(ctx, "delete everything")

	require.NoError(t, err)
	assert.Equal(t, "Error: forbidden operation: DELETE (modification)", resp.Steps[0].Observation)
	res, err := db.Run(ctx, `SELECT COUNT(*) FROM "Admat_OPCOM"`)
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Rows[0][0])
}

func TestSQLAgentReportsExhaustedRetriesAsObservation(t *testing.T) {
	db := openCatalog(t)
	m := &scriptedModel{completions: []string{
		" query\nAction: sql_db_query\nAction Input: SELECT MISSING FROM \"Admat_OPCOM\"",
		" I now know the final answer\nFinal Answer: unknown column",
	}}
	a := New(m, NewSQLTools(db, nil, ToolConfig{IncludeTables: []string{"Admat_OPCOM"}, MaxAttempts: 2}))

	resp, err := a.Invoke(context.Background(), "q")

	require.NoError(t, err)
	assert.Equal(t, "unknown column", resp.Output)
	assert.True(t, sqlexec.IsRetryExhausted(resp.Steps[0].Observation), resp.Steps[0].Observation)
	assert.Contains(t, resp.Steps[0].Observation, "error after 2 attempts: ")
}

func TestSQLAgentHidesExcludedTables(t *testing.T) {
	db := openCatalog(t)
	m := &scriptedModel{completions: []string{
		" look\nAction: sql_db_schema\nAction Input: Secret",
		"Final Answer: none",
	}}

	resp, err := catalogAgent(t, m, db).Invoke(context.Background(), "q")

	require.NoError(t, err)
	assert.Contains(t, resp.Steps[0].Observation, "not found in database")
}

func TestSQLAgentFeedsBackParseErrors(t *testing.T) {
	db := openCatalog(t)
	m := &scriptedModel{completions: []string{
		"I am just rambling",
		"Final Answer: ok",
	}}

	resp, err := catalogAgent(t, m, db).Invoke(context.Background(), "q")

	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Output)
	require.Len(t, resp.Steps, 1)
	assert.Equal(t, "_Exception", resp.Steps[0].Action)
	assert.Contains(t, m.prompts[1], "Observation: invalid format: missing 'Action:'")
}

func TestSQLAgentUnknownTool(t *testing.T) {
	db := openCatalog(t)
	m := &scriptedModel{completions: []string{
		" hmm\nAction: web_search\nAction Input: prices",
		"Final Answer: done",
	}}

	resp, err := catalogAgent(t, m, db).Invoke(context.Background(), "q")

	require.NoError(t, err)
	assert.Contains(t, resp.Steps[0].Observation, "web_search is not a valid tool")
}

func TestSQLAgentIterationLimit(t *testing.T) {
	db := openCatalog(t)
	m := &scriptedModel{completions: []string{" again\nAction: sql_db_list_tables\nAction Input: none"}}

	resp, err := catalogAgent(t, m, db).Invoke(context.Background(), "q")

	assert.ErrorIs(t, err, ErrIterationLimit)
	assert.Len(t, m.prompts, DefaultMaxIterations)
	assert.Len(t, resp.Steps, DefaultMaxIterations)
}

func TestSQLAgentModelError(t *testing.T) {
	db := openCatalog(t)
	boom := errors.New("status code: 429")
	_, err := catalogAgent(t, &scriptedModel{err: boom}, db).Invoke(context.Background(), "q")
	assert.ErrorIs(t, err, boom)
}

func TestParseCompletion(t *testing.T) {
	d, err := parseCompletion(" think\nAction: sql_db_query\nAction Input: \"SELECT 1\"")
	require.NoError(t, err)
	assert.Equal(t, "sql_db_query", d.action)
	assert.Equal(t, "SELECT 1", d.actionInput)
	assert.Equal(t, "think", d.thought)

	d, err = parseCompletion("I know\nFinal Answer: 42 units")
	require.NoError(t, err)
	assert.True(t, d.final)
	assert.Equal(t, "42 units", d.output)

	_, err = parseCompletion("Action: x")
	assert.ErrorIs(t, err, errMissingActionInput)

	_, err = parseCompletion("Action: x\nAction Input: y\nFinal Answer: z")
	assert.ErrorIs(t, err, errBothAnswerAndAction)
}

func TestResponseTranscript(t *testing.T) {
	r := &Response{
		Output: "19.9",
		Steps:  []Step{{Thought: "check", Action: ToolQuery, ActionInput: "SELECT 1", Observation: "1"}},
	}
	assert.Equal(t,
		"Thought: check\nAction: sql_db_query\nAction Input: SELECT 1\nObservation: 1\nFinal Answer: 19.9",
		r.Transcript())
}

func TestQueryCheckerTool(t *testing.T) {
	db := openCatalog(t)
	m := &scriptedModel{completions: []string{"```sql\nSELECT [NOME] FROM Admat_OPCOM\n```"}}
	tools := NewSQLTools(db, m, ToolConfig{})
	require.Len(t, tools, 4)

	out, err := tools[3].Call(context.Background(), `SELECT "NOME" FROM Admat_OPCOM`)
	require.NoError(t, err)
	assert.Equal(t, "SELECT [NOME] FROM Admat_OPCOM", out)
	assert.Contains(t, m.prompts[0], "Double check the sqlite query above")
}

func TestOpenAIModelComplete(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultModel, req.Model)
		assert.Equal(t, stopSequences, req.Stop)
		assert.Equal(t, "hello", req.Messages[0].Content)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Role: "assistant", Content: "Final Answer: hi"}}},
		})
	}))
	t.Cleanup(ts.Close)

	m := NewOpenAIModel("test-key", "", ts.URL)
	out, err := m.Complete(context.Background(), "hello", stopSequences)
	require.NoError(t, err)
	assert.Equal(t, "Final Answer: hi", out)
}

func TestOpenAIModelNoChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	}))
	t.Cleanup(ts.Close)

	_, err := NewOpenAIModel("k", "gpt-4o-mini", ts.URL).Complete(context.Background(), "x", nil)
	assert.ErrorContains(t, err, "no choices returned")
}
