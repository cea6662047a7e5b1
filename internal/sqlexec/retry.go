// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"context"
	"fmt"
	"regexp"

	"github.com/rs/zerolog/log"
)

// DefaultMaxAttempts is the attempt budget used when none is given.
const DefaultMaxAttempts = 3

var exhaustedRe = regexp.MustCompile(`^error after \d+ attempts: `)

// RunWithRetry runs query up to maxAttempts times and returns the rendered
// result of the first successful attempt. Failures never escape as errors:
// after the budget is spent the last error is returned as text of the form
// "error after <n> attempts: <error>", which the agent reads as an
// observation. An "invalid column name" failure rewrites double-quoted
// identifiers to bracket form before the next attempt; other failures are
// retried unchanged. maxAttempts <= 0 selects DefaultMaxAttempts.
func RunWithRetry(ctx context.Context, r Runner, query string, maxAttempts int) string {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		res, err := r.Run(ctx, query)
		if err == nil {
			if attempt > 1 {
				log.Debug().Int("attempt", attempt).Msg("query succeeded after retry")
			}
			return res.String()
		}
		lastErr = err
		log.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", maxAttempts).
			Msg("query attempt failed")

		if isInvalidColumnError(err) {
			query = NormalizeQuoting(query)
		}
	}
	return fmt.Sprintf("error after %d attempts: %v", maxAttempts, lastErr)
}

// IsRetryExhausted reports whether s is the text RunWithRetry returns once
// every attempt failed.
func IsRetryExhausted(s string) bool {
	return exhaustedRe.MatchString(s)
}
