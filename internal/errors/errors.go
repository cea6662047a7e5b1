// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages, so the CLI can tell fatal startup failures apart
// from per-turn failures that only need to be shown to the user.
//
// The package supports wrapping underlying errors while maintaining error kind information.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// ConfigMissing indicates a required configuration value is absent.
	ConfigMissing Kind = "config_missing"
	// ConnectFailed indicates the initial database connectivity check failed.
	ConnectFailed Kind = "connect_failed"
	// AgentSetupFailed indicates the agent/tool context could not be built.
	AgentSetupFailed Kind = "agent_setup_failed"
	// UnsafeStatement indicates the classifier rejected a statement.
	UnsafeStatement Kind = "unsafe_statement"
	// SyncFailed indicates the spreadsheet sync aborted.
	SyncFailed Kind = "sync_failed"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// Is reports whether err, or anything it wraps, is an *E of the given kind.
func Is(err error, kind Kind) bool {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Fatal reports whether err belongs to the startup classes that must abort
// the process.
func Fatal(err error) bool {
	return Is(err, ConfigMissing) || Is(err, ConnectFailed) || Is(err, AgentSetupFailed)
}
