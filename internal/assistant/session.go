// Package assistant runs question turns against an agent: it sanitizes the
// question, bounds the agent call with the turn timeout, and formats the
// result for display. Loop drives the interactive session on top of it.
package assistant

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"sqlagent/cli/internal/agent"
	"sqlagent/cli/internal/guard"
	"sqlagent/cli/internal/turn"
)

var exitWords = map[string]struct{}{"sair": {}, "exit": {}, "quit": {}}

// IsExit reports whether line asks to end the session.
func IsExit(line string) bool {
	_, ok := exitWords[strings.ToLower(strings.TrimSpace(line))]
	return ok
}

// Session answers questions with one long-lived agent. A Session holds no
// per-turn state, so concurrent calls to Ask are safe when the Agent is.
type Session struct {
	Agent   agent.Agent
	Timeout time.Duration
	// Verbose renders the full reasoning transcript instead of the answer only.
	Verbose bool
}

// Ask answers one question. A turn that runs out of time yields
// turn.TimeoutMessage and no error; agent failures are returned as is.
func (s *Session) Ask(ctx context.Context, question string) (string, error) {
	id := uuid.NewString()
	logger := log.With().Str("turn_id", id).Logger()
	ctx = agent.WithTurnID(ctx, id)

	input := guard.Sanitize(question)
	logger.Debug().Str("input", input).Msg("turn started")
	start := time.Now()

	res, err := turn.RunWithTimeout(ctx, s.invoke, input, s.Timeout)
	elapsed := time.Since(start)
	if err != nil {
		logger.Error().Err(err).Dur("elapsed", elapsed).Msg("turn failed")
		return "", err
	}
	if msg, ok := res.(string); ok && msg == turn.TimeoutMessage {
		logger.Warn().Dur("elapsed", elapsed).Msg("turn timed out")
	} else {
		logger.Debug().Dur("elapsed", elapsed).Msg("turn finished")
	}
	return turn.Format(res), nil
}

func (s *Session) invoke(ctx context.Context, input string) (any, error) {
	resp, err := s.Agent.Invoke(ctx, input)
	if err != nil {
		return nil, err
	}
	if s.Verbose {
		return map[string]any{"output": resp.Transcript()}, nil
	}
	return resp, nil
}
