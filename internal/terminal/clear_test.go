package terminal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinesFor(t *testing.T) {
	assert.Equal(t, 2, LinesFor(0, 80))
	assert.Equal(t, 2, LinesFor(80, 80))
	assert.Equal(t, 3, LinesFor(81, 80))
	assert.Equal(t, 3, LinesFor(100, 0))
}

func TestPrompterAsk(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("\n  db01  \nlast"), &out)

	v, err := p.Ask("Server", "localhost")
	require.NoError(t, err)
	assert.Equal(t, "localhost", v)

	v, err = p.Ask("Server", "")
	require.NoError(t, err)
	assert.Equal(t, "db01", v)

	v, err = p.Ask("User", "")
	require.NoError(t, err)
	assert.Equal(t, "last", v)

	_, err = p.Ask("Again", "")
	assert.Error(t, err)
	assert.Contains(t, out.String(), "Server [localhost]: ")
}
