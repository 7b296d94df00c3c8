package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, runID, err := New(&buf, Options{Level: "info", Format: "json"})
	require.NoError(t, err)
	_, err = uuid.Parse(runID)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("applied", "values", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "applied", rec["msg"])
	assert.Equal(t, runID, rec["run_id"])
	assert.EqualValues(t, 3, rec["values"])
}

func TestNew_TextLevels(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		debug   bool
		warning bool
	}{
		{"warn level", Options{Level: "warn"}, false, true},
		{"verbose overrides", Options{Level: "error", Verbose: true}, true, true},
		{"quiet overrides", Options{Level: "debug", Quiet: true}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, _, err := New(&buf, tt.opts)
			require.NoError(t, err)
			logger.Debug("debug-line")
			logger.Warn("warn-line")
			out := buf.String()
			assert.Equal(t, tt.debug, strings.Contains(out, "debug-line"))
			assert.Equal(t, tt.warning, strings.Contains(out, "warn-line"))
		})
	}
}

func TestNew_Invalid(t *testing.T) {
	_, _, err := New(&bytes.Buffer{}, Options{Level: "loud"})
	assert.Error(t, err)
	_, _, err = New(&bytes.Buffer{}, Options{Format: "xml"})
	assert.Error(t, err)
}
