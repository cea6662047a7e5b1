package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"sqlagent/cli/internal/sqlexec"
)

// DefaultMaxIterations bounds the tool-use loop.
const DefaultMaxIterations = 5

// SQLAgent is a zero-shot ReAct agent: each iteration asks the model for the
// next Thought / Action / Action Input, runs the tool and appends the
// observation to the scratchpad, until the model produces a Final Answer.
type SQLAgent struct {
	model         Model
	tools         []Tool
	prefix        string
	maxIterations int
}

// Option configures a SQLAgent.
type Option func(*SQLAgent)

// WithMaxIterations sets the iteration budget.
func WithMaxIterations(n int) Option {
	return func(a *SQLAgent) {
		if n > 0 {
			a.maxIterations = n
		}
	}
}

// WithPrefix replaces the instructional preamble.
func WithPrefix(prefix string) Option {
	return func(a *SQLAgent) { a.prefix = prefix }
}

// New creates an agent over the given tools.
func New(model Model, tools []Tool, opts ...Option) *SQLAgent {
	a := &SQLAgent{
		model:         model,
		tools:         tools,
		prefix:        CatalogPrefix,
		maxIterations: DefaultMaxIterations,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// NewCatalogAgent wires the catalog preamble and the SQL tools over db.
func NewCatalogAgent(model Model, db sqlexec.DB, cfg ToolConfig, opts ...Option) *SQLAgent {
	return New(model, NewSQLTools(db, model, cfg), opts...)
}

func (a *SQLAgent) tool(name string) Tool {
	name = strings.Trim(strings.TrimSpace(name), "`'\"")
	for _, t := range a.tools {
		if strings.EqualFold(t.Name(), name) {
			return t
		}
	}
	return nil
}

func (a *SQLAgent) toolNames() string {
	names := make([]string, len(a.tools))
	for i, t := range a.tools {
		names[i] = t.Name()
	}
	return strings.Join(names, ", ")
}

// Invoke runs the loop for one question. Malformed completions are reported
// back to the model as observations and count against the budget. When the
// budget runs out the partial steps are returned with ErrIterationLimit.
func (a *SQLAgent) Invoke(ctx context.Context, input string) (*Response, error) {
	resp := &Response{}
	var scratch strings.Builder

	for i := 0; i < a.maxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return resp, err
		}

		completion, err := a.model.Complete(ctx, buildPrompt(a.prefix, a.tools, input, scratch.String()), stopSequences)
		if err != nil {
			return resp, err
		}

		d, perr := parseCompletion(completion)
		if perr != nil {
			log.Debug().Err(perr).Int("iteration", i+1).Msg("unparseable completion")
			step := Step{Action: "_Exception", ActionInput: strings.TrimSpace(completion), Observation: perr.Error()}
			resp.Steps = append(resp.Steps, step)
			appendScratch(&scratch, completion, step.Observation)
			continue
		}
		if d.final {
			resp.Output = d.output
			return resp, nil
		}

		obs := a.runTool(ctx, d.action, d.actionInput)
		log.Debug().
			Str("turn_id", TurnID(ctx)).
			Int("iteration", i+1).
			Str("action", d.action).
			Str("input", d.actionInput).
			Msg("tool call")

		resp.Steps = append(resp.Steps, Step{
			Thought:     d.thought,
			Action:      d.action,
			ActionInput: d.actionInput,
			Observation: obs,
		})
		appendScratch(&scratch, completion, obs)
	}
	return resp, ErrIterationLimit
}

func (a *SQLAgent) runTool(ctx context.Context, name, input string) string {
	t := a.tool(name)
	if t == nil {
		return fmt.Sprintf("%s is not a valid tool, try one of [%s].", name, a.toolNames())
	}
	out, err := t.Call(ctx, input)
	if err != nil {
		return "Error: " + err.Error()
	}
	return out
}

func appendScratch(b *strings.Builder, completion, observation string) {
	b.WriteString(completion)
	b.WriteString("\nObservation: ")
	b.WriteString(observation)
	b.WriteString("\nThought:")
}
