package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"sqlagent/cli/internal/guard"
	"sqlagent/cli/internal/sqlexec"
)

// Tool is an action the agent can take.
type Tool interface {
	Name() string
	Description() string
	Call(ctx context.Context, input string) (string, error)
}

// Tool names, as the model must write them after "Action:".
const (
	ToolListTables   = "sql_db_list_tables"
	ToolSchema       = "sql_db_schema"
	ToolQuery        = "sql_db_query"
	ToolQueryChecker = "sql_db_query_checker"
)

// ToolConfig restricts and tunes the database tools.
type ToolConfig struct {
	// IncludeTables limits which tables the agent can see. Empty means all.
	IncludeTables []string
	// SampleRows is how many example rows the schema tool appends.
	SampleRows int
	// MaxAttempts is the retry budget of the query tool.
	MaxAttempts int
}

// catalog is the table view shared by the database tools.
type catalog struct {
	db        sqlexec.DB
	inspector *sqlexec.SchemaInspector
	cfg       ToolConfig
}

func (c *catalog) allowed(table string) bool {
	if len(c.cfg.IncludeTables) == 0 {
		return true
	}
	for _, t := range c.cfg.IncludeTables {
		if strings.EqualFold(t, table) {
			return true
		}
	}
	return false
}

func (c *catalog) tables(ctx context.Context) ([]string, error) {
	all, err := c.db.Tables(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(all))
	for _, t := range all {
		if c.allowed(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

// NewSQLTools builds the database tools over db. model is used by the query
// checker; pass nil to leave that tool out.
func NewSQLTools(db sqlexec.DB, model Model, cfg ToolConfig) []Tool {
	c := &catalog{db: db, inspector: sqlexec.NewSchemaInspector(db), cfg: cfg}
	tools := []Tool{
		&queryTool{c: c},
		&schemaTool{c: c},
		&listTablesTool{c: c},
	}
	if model != nil {
		tools = append(tools, &queryCheckerTool{model: model, dialect: string(db.Dialect().Name)})
	}
	return tools
}

type listTablesTool struct{ c *catalog }

func (t *listTablesTool) Name() string { return ToolListTables }
func (t *listTablesTool) Description() string {
	return "Input is an empty string, output is a comma-separated list of tables in the database."
}

func (t *listTablesTool) Call(ctx context.Context, _ string) (string, error) {
	tables, err := t.c.tables(ctx)
	if err != nil {
		return "", err
	}
	return strings.Join(tables, ", "), nil
}

type schemaTool struct{ c *catalog }

func (t *schemaTool) Name() string { return ToolSchema }
func (t *schemaTool) Description() string {
	return "Input to this tool is a comma-separated list of tables, output is the schema and sample rows for those tables. " +
		"Be sure that the tables actually exist by calling " + ToolListTables + " first! Example Input: table1, table2, table3"
}

func (t *schemaTool) Call(ctx context.Context, input string) (string, error) {
	var names []string
	for _, n := range strings.Split(input, ",") {
		n = strings.Trim(strings.TrimSpace(n), "[]`\"'")
		if n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no table names given")
	}

	var missing []string
	for _, n := range names {
		if !t.c.allowed(n) {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("table_names %v not found in database", missing)
	}

	parts := make([]string, 0, len(names))
	for _, n := range names {
		desc, err := t.c.inspector.Describe(ctx, n, t.c.cfg.SampleRows)
		if err != nil {
			return "", err
		}
		parts = append(parts, desc)
	}
	return strings.Join(parts, "\n\n"), nil
}

type queryTool struct{ c *catalog }

func (t *queryTool) Name() string { return ToolQuery }
func (t *queryTool) Description() string {
	return "Input to this tool is a detailed and correct SQL query, output is a result from the database. " +
		"If the query is not correct, an error message will be returned. " +
		"If an error is returned, rewrite the query, check the query, and try again. " +
		"If you encounter an issue with Unknown column 'xxxx' in 'field list', use " + ToolSchema +
		" to query the correct table fields."
}

// Call classifies the statement before it reaches the database. Rejected
// statements never execute; the rejection is reported back to the model.
func (t *queryTool) Call(ctx context.Context, input string) (string, error) {
	query := stripFences(input)
	if rej := guard.Check(query); rej != nil {
		log.Warn().Str("keyword", rej.Keyword).Str("category", string(rej.Category)).Msg("statement rejected")
		return "", rej
	}
	obs := sqlexec.RunWithRetry(ctx, t.c.db, query, t.c.cfg.MaxAttempts)
	if sqlexec.IsRetryExhausted(obs) {
		log.Warn().Str("turn_id", TurnID(ctx)).Msg("query attempts exhausted")
	}
	return obs, nil
}

// stripFences removes markdown code fences the model sometimes wraps
// queries in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```sql")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

type queryCheckerTool struct {
	model   Model
	dialect string
}

const queryCheckerPrompt = `%s
Double check the %s query above for common mistakes, including:
- Using NOT IN with NULL values
- Using UNION when UNION ALL should have been used
- Using BETWEEN for exclusive ranges
- Data type mismatch in predicates
- Properly quoting identifiers
- Using the correct number of arguments for functions
- Casting to the correct data type
- Using the proper columns for joins

If there are any of the above mistakes, rewrite the query. If there are no mistakes, just reproduce the original query.

Output the final SQL query only.

SQL Query: `

func (t *queryCheckerTool) Name() string { return ToolQueryChecker }
func (t *queryCheckerTool) Description() string {
	return "Use this tool to double check if your query is correct before executing it. " +
		"Always use this tool before executing a query with " + ToolQuery + "!"
}

func (t *queryCheckerTool) Call(ctx context.Context, input string) (string, error) {
	out, err := t.model.Complete(ctx, fmt.Sprintf(queryCheckerPrompt, stripFences(input), t.dialect), nil)
	if err != nil {
		return "", err
	}
	return stripFences(out), nil
}
