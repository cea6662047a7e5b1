package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/chzyer/readline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqlagent/cli/internal/agent"
	"sqlagent/cli/internal/turn"
)

func TestIsExit(t *testing.T) {
	for _, w := range []string{"sair", "EXIT", " Quit ", "Sair"} {
		assert.True(t, IsExit(w), w)
	}
	for _, w := range []string{"", "exit now", "q", "sair!"} {
		assert.False(t, IsExit(w), w)
	}
}

func TestAskSanitizesAndFormats(t *testing.T) {
	var got string
	s := &Session{Agent: agent.Func(func(ctx context.Context, input string) (*agent.Response, error) {
		got = input
		assert.NotEmpty(t, agent.TurnID(ctx))
		return &agent.Response{Output: "Thought: look\n\n\nFinal Answer: 3"}, nil
	})}

	out, err := s.Ask(context.Background(), "SELECT * FROM t; DROP TABLE t")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t DROP TABLE t", got)
	assert.Contains(t, out, "📝 Analysis: look")
	assert.Contains(t, out, "✨ Final Answer: 3")
	assert.NotContains(t, out, "\n\n")
}

func TestAskVerboseShowsTranscript(t *testing.T) {
	s := &Session{Verbose: true, Agent: agent.Func(func(context.Context, string) (*agent.Response, error) {
		return &agent.Response{
			Output: "two",
			Steps:  []agent.Step{{Action: "sql_db_query", ActionInput: "SELECT 2", Observation: "2"}},
		}, nil
	})}

	out, err := s.Ask(context.Background(), "how many")
	require.NoError(t, err)
	assert.Contains(t, out, "🔍 Action: sql_db_query")
	assert.Contains(t, out, "💻 Command: SELECT 2")
	assert.Contains(t, out, "📊 Result: 2")
	assert.Contains(t, out, "✨ Final Answer: two")
}

func TestAskTimeout(t *testing.T) {
	s := &Session{Timeout: 20 * time.Millisecond, Agent: agent.Func(func(ctx context.Context, _ string) (*agent.Response, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})}

	out, err := s.Ask(context.Background(), "slow")
	require.NoError(t, err)
	assert.Equal(t, turn.TimeoutMessage, out)
}

func TestAskReturnsAgentError(t *testing.T) {
	s := &Session{Agent: agent.Func(func(context.Context, string) (*agent.Response, error) {
		return nil, agent.ErrIterationLimit
	})}

	_, err := s.Ask(context.Background(), "q")
	assert.ErrorIs(t, err, agent.ErrIterationLimit)
}

func TestAskConcurrentTurns(t *testing.T) {
	s := &Session{Timeout: 5 * time.Second, Agent: agent.Func(func(ctx context.Context, input string) (*agent.Response, error) {
		time.Sleep(10 * time.Millisecond)
		return &agent.Response{Output: "Final Answer: " + input + " " + agent.TurnID(ctx)}, nil
	})}

	const n = 16
	outs := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outs[i], errs[i] = s.Ask(context.Background(), fmt.Sprintf("question %d", i))
		}()
	}
	wg.Wait()

	seen := make(map[string]struct{}, n)
	for i := range n {
		require.NoError(t, errs[i])
		assert.Contains(t, outs[i], fmt.Sprintf("question %d ", i))
		seen[outs[i]] = struct{}{}
	}
	assert.Len(t, seen, n)
}

type lines struct {
	items []string
	end   error
}

func (l *lines) Readline() (string, error) {
	if len(l.items) == 0 {
		return "", l.end
	}
	line := l.items[0]
	l.items = l.items[1:]
	return line, nil
}

type recorder struct {
	answers  []string
	failures []error
	turns    int
}

func (r *recorder) Thinking() func() { r.turns++; return func() {} }
func (r *recorder) Answer(text string) { r.answers = append(r.answers, text) }
func (r *recorder) Failure(err error)  { r.failures = append(r.failures, err) }

func TestLoop(t *testing.T) {
	calls := 0
	s := &Session{Agent: agent.Func(func(_ context.Context, input string) (*agent.Response, error) {
		calls++
		if input == "boom" {
			return nil, errors.New("database unavailable")
		}
		return &agent.Response{Output: "answer to " + input}, nil
	})}

	r := &lines{items: []string{"", "   ", "first", "boom", "second", "SAIR", "never"}, end: io.EOF}
	p := &recorder{}
	require.NoError(t, s.Loop(context.Background(), r, p))

	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, p.turns)
	assert.Equal(t, []string{"answer to first", "answer to second"}, p.answers)
	require.Len(t, p.failures, 1)
	assert.EqualError(t, p.failures[0], "database unavailable")
	assert.Equal(t, []string{"never"}, r.items)
}

func TestLoopEndsOnInterruptAndEOF(t *testing.T) {
	s := &Session{Agent: agent.Func(func(context.Context, string) (*agent.Response, error) {
		return &agent.Response{Output: "x"}, nil
	})}

	for _, end := range []error{readline.ErrInterrupt, io.EOF} {
		assert.NoError(t, s.Loop(context.Background(), &lines{end: end}, &recorder{}))
	}

	readErr := errors.New("terminal gone")
	assert.ErrorIs(t, s.Loop(context.Background(), &lines{end: readErr}, &recorder{}), readErr)
}
