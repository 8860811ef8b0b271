package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := New(&buf, Options{})
	log.Debug("hidden")
	log.Info("corpus refreshed", "revision", "abc123")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "revision=abc123")
}

func TestNewVerbose(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	New(&buf, Options{Verbose: true}).Debug("archive extracted")
	assert.Contains(t, buf.String(), "archive extracted")
}

func TestNewTerminal(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	New(&buf, Options{Terminal: true}).Info("fetching corpus", "url", "https://example.invalid")

	out := buf.String()
	assert.Contains(t, out, "fetching corpus")
	assert.NotContains(t, out, "time=")
}

func TestIsTerminal(t *testing.T) {
	t.Parallel()

	assert.False(t, IsTerminal(&bytes.Buffer{}))
}
