package cmd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"sqlagent/cli/internal/assistant"
)

func TestReportConnErrorMarksReported(t *testing.T) {
	err := reportConnError(errors.New("dial tcp 10.0.0.1:1433: connect: connection refused"))
	assert.ErrorIs(t, err, errReported)
}

func TestSyncFailurePrefixesTableAndMasks(t *testing.T) {
	out := syncFailure("admat", errors.New("exec failed: password=hunter2"))
	assert.Equal(t, "sync admat: exec failed: password=***", out)
	assert.Empty(t, syncFailure("admat", nil))
}

func TestTerminalPresenterIsAPresenter(t *testing.T) {
	var p assistant.Presenter = terminalPresenter{}
	assert.NotNil(t, p)
}
