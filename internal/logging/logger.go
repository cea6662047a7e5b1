// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger. Structured logs go to stderr so
// stdout stays reserved for answers. Every line passes through Mask before it
// reaches the terminal.
func Setup(level string, verbose bool, json bool) {
	Configure(os.Stderr, level, verbose, json)
}

// Configure is Setup with an explicit destination.
func Configure(w io.Writer, level string, verbose bool, json bool) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.WarnLevel
	}
	if verbose {
		lvl = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(lvl)

	out := io.Writer(&maskingWriter{w: w})
	if !json {
		out = zerolog.ConsoleWriter{Out: out, NoColor: true}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

type maskingWriter struct {
	w io.Writer
}

func (m *maskingWriter) Write(p []byte) (int, error) {
	if _, err := m.w.Write([]byte(Mask(string(p)))); err != nil {
		return 0, err
	}
	return len(p), nil
}
