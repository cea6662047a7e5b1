// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"sync"
	"time"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog/log"

	"sqlagent/cli/internal/logging"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

// startAreaSpinner shows a spinner followed by text in a pterm area until
// the returned function is called. The cursor is hidden meanwhile and the
// area is removed when done. Calling the stop function twice is safe.
func startAreaSpinner(text string) func() {
	cursor.Hide()
	area, err := pterm.DefaultArea.WithRemoveWhenDone(true).Start()
	if err != nil {
		cursor.Show()
		return func() {}
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		t := time.NewTicker(120 * time.Millisecond)
		defer t.Stop()
		i := 0
		for {
			select {
			case <-t.C:
				i++
				area.Update(fmt.Sprintf("%s %s", spinnerFrames[i%len(spinnerFrames)], text))
			case <-stop:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			wg.Wait()
			area.Stop()
			cursor.Show()
		})
	}
}

// reportConnError shows a connectivity failure with troubleshooting hints.
func reportConnError(err error) error {
	log.Error().Err(err).Msg("connectivity check failed")
	pterm.Println(logging.FormatConnError(err))
	return errReported
}

// syncFailure renders a failed rerun of the sync command.
func syncFailure(table string, err error) string {
	return logging.PresentError("sync "+table, err)
}

// terminalPresenter prints turn outcomes for the interactive loop.
type terminalPresenter struct{}

func (p terminalPresenter) Thinking() func() {
	return startAreaSpinner("thinking")
}

func (p terminalPresenter) Answer(text string) {
	pterm.Println(text)
	pterm.Println()
}

func (p terminalPresenter) Failure(err error) {
	pterm.Println(logging.FormatTurnError(err))
	pterm.Println()
}
