package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWriter_WarnLevelByDefault(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, false)

	log.Debugw("parsed file", "path", "a.py")
	log.Infow("analyzed", "functions", 2)
	assert.Empty(t, buf.String())

	log.Warnw("function declined", "function", "gen", "reason", "unsupported")
	require.NoError(t, log.Sync())

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "function declined", entry["msg"])
	assert.Equal(t, "gen", entry["function"])
}

func TestNewWriter_Verbose(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, true)

	log.Debugw("parsed file", "path", "a.py")
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.True(t, strings.Contains(out, "DEBUG"), out)
	assert.Contains(t, out, "parsed file")
	assert.Contains(t, out, "a.py")
}

func TestNew(t *testing.T) {
	assert.NotNil(t, New(false))
	assert.NotNil(t, New(true))
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := Nop()
	assert.Same(t, l, OrNop(l))
}
