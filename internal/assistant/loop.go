package assistant

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog/log"
)

// LineReader yields one line of user input per call. *readline.Instance
// satisfies it.
type LineReader interface {
	Readline() (string, error)
}

// Presenter shows the outcome of each turn.
type Presenter interface {
	// Thinking is called when a turn starts; the returned func when it ends.
	Thinking() (done func())
	Answer(text string)
	Failure(err error)
}

// Loop reads questions until an exit word, end of input, an interrupt, or
// cancellation of ctx. Blank lines are skipped. A failed turn is reported
// through p and the loop goes on. The only error returned is a read error
// other than interrupt or EOF.
func (s *Session) Loop(ctx context.Context, r LineReader, p Presenter) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := r.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if IsExit(line) {
			return nil
		}

		done := p.Thinking()
		answer, err := s.Ask(ctx, line)
		done()
		switch {
		case err == nil:
			p.Answer(answer)
		case ctx.Err() != nil:
			log.Debug().Err(err).Msg("session interrupted during turn")
			return nil
		default:
			p.Failure(err)
		}
	}
}
