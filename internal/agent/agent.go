// Package agent answers catalog questions by letting a language model call
// database tools in a Thought / Action / Observation loop. It defines the
// Agent contract the rest of the CLI depends on, the Model abstraction over
// the hosted LLM, and the local SQL agent built from both.
package agent

import (
	"context"
	"errors"
	"strings"
)

// ErrIterationLimit is returned when the loop ends without a final answer.
var ErrIterationLimit = errors.New("agent stopped: iteration limit reached without a final answer")

// Agent turns a natural-language question into an answer.
type Agent interface {
	Invoke(ctx context.Context, input string) (*Response, error)
}

// Response is the structured result of one invocation.
type Response struct {
	Output string `json:"output"`
	Steps  []Step `json:"steps,omitempty"`
}

// Step is one intermediate tool use.
type Step struct {
	Thought     string `json:"thought,omitempty"`
	Action      string `json:"action"`
	ActionInput string `json:"action_input"`
	Observation string `json:"observation"`
}

// Transcript renders the steps and final answer with their labels, the way
// the model produced them.
func (r *Response) Transcript() string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	for _, s := range r.Steps {
		if s.Thought != "" {
			b.WriteString("Thought: " + s.Thought + "\n")
		}
		b.WriteString("Action: " + s.Action + "\n")
		b.WriteString("Action Input: " + s.ActionInput + "\n")
		b.WriteString("Observation: " + s.Observation + "\n")
	}
	b.WriteString("Final Answer: " + r.Output)
	return b.String()
}

// Func adapts a function to the Agent interface.
type Func func(ctx context.Context, input string) (*Response, error)

// Invoke calls f.
func (f Func) Invoke(ctx context.Context, input string) (*Response, error) {
	return f(ctx, input)
}

type turnIDKey struct{}

// WithTurnID attaches the identifier of the current question to ctx so that
// tools and remote transports can correlate their logs with it.
func WithTurnID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, turnIDKey{}, id)
}

// TurnID returns the identifier set by WithTurnID, or "".
func TurnID(ctx context.Context) string {
	id, _ := ctx.Value(turnIDKey{}).(string)
	return id
}
