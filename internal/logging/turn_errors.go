// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"context"
	"errors"
	"strings"

	"github.com/pterm/pterm"
)

// TurnErrorType represents the category of a failed question turn.
type TurnErrorType int

const (
	TurnErrorUnknown TurnErrorType = iota
	TurnErrorTimeout
	TurnErrorUnsafe
	TurnErrorModelAuth
	TurnErrorModelRate
	TurnErrorNetwork
	TurnErrorReasoning
)

// ParseTurnError categorizes the error that ended a question turn.
func ParseTurnError(err error) TurnErrorType {
	if err == nil {
		return TurnErrorUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return TurnErrorTimeout
	}
	lower := strings.ToLower(err.Error())

	switch {
	case strings.Contains(lower, "forbidden operation"):
		return TurnErrorUnsafe
	case strings.Contains(lower, "status code: 401") ||
		strings.Contains(lower, "incorrect api key") ||
		strings.Contains(lower, "unauthenticated"):
		return TurnErrorModelAuth
	case strings.Contains(lower, "status code: 429") || strings.Contains(lower, "rate limit"):
		return TurnErrorModelRate
	case strings.Contains(lower, "iteration limit") ||
		strings.Contains(lower, "could not parse") ||
		strings.Contains(lower, "unknown tool"):
		return TurnErrorReasoning
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline"):
		return TurnErrorTimeout
	case strings.Contains(lower, "connection refused") ||
		strings.Contains(lower, "connection reset") ||
		strings.Contains(lower, "no such host") ||
		strings.Contains(lower, "unavailable"):
		return TurnErrorNetwork
	}
	return TurnErrorUnknown
}

// FormatTurnError renders a failed turn for the interactive prompt. The loop
// keeps going after printing it.
func FormatTurnError(err error) string {
	if err == nil {
		return ""
	}
	var b strings.Builder

	b.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Could not answer that question"))
	b.WriteString("\n\n")

	switch ParseTurnError(err) {
	case TurnErrorTimeout:
		b.WriteString("The question took too long to answer.\n")
		b.WriteString("Try asking for fewer rows or a narrower filter.\n")
	case TurnErrorUnsafe:
		b.WriteString("The generated statement would modify the database and was blocked.\n")
		b.WriteString("Only read-only questions are answered.\n")
	case TurnErrorModelAuth:
		b.WriteString("The language model rejected the configured API key.\n")
		b.WriteString("Set OPENAI_API_KEY or run 'sqlagent connect' again.\n")
	case TurnErrorModelRate:
		b.WriteString("The language model is rate limiting requests.\n")
		b.WriteString("Wait a moment before asking again.\n")
	case TurnErrorNetwork:
		b.WriteString("A network connection was interrupted while answering.\n")
	case TurnErrorReasoning:
		b.WriteString("The assistant could not settle on an answer.\n")
		b.WriteString("Try rephrasing the question more specifically.\n")
	default:
		b.WriteString("An unexpected error occurred.\n")
	}

	b.WriteString("\n")
	b.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Technical details: " + Mask(err.Error())))
	return b.String()
}
