package sheetsync

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// debounce absorbs the burst of events a spreadsheet save produces.
const debounce = 500 * time.Millisecond

// Watch calls fn each time the file at path is written or replaced, until
// ctx is done. The parent directory is watched because office suites save
// by writing a temporary file and renaming it over the original.
//
// Calls to fn never overlap: a change that lands while fn is running queues
// at most one more call. Watch waits for a running call before returning.
func Watch(ctx context.Context, path string, fn func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	log.Info().Str("file", abs).Msg("watching spreadsheet")

	wctx, cancel := context.WithCancel(ctx)
	pending := make(chan struct{}, 1)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-wctx.Done():
				return
			case <-pending:
				if wctx.Err() != nil {
					return
				}
				fn()
			}
		}
	}()
	defer wg.Wait()
	defer cancel()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-fire:
			fire = nil
			select {
			case pending <- struct{}{}:
			default:
				log.Debug().Str("file", abs).Msg("sync already queued")
			}
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if name, _ := filepath.Abs(ev.Name); name != abs {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watcher error")
		}
	}
}

// Schedule calls fn on the cron schedule spec (standard five fields or
// descriptors such as "@every 1h") until ctx is done. Runs never overlap.
func Schedule(ctx context.Context, spec string, fn func()) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(spec, fn); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	c.Start()
	log.Info().Str("schedule", spec).Msg("sync scheduled")

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
