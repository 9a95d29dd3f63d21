package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"warn", WARNING},
		{"Warning", WARNING},
		{"error", ERROR},
		{"", INFO},
		{"verbose", INFO},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseLogLevel(tt.input), tt.input)
	}
}

func TestTextFormatFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(WARNING, TextFormat, &buf)

	l.Info("hidden %d", 1)
	l.Warning("shown %d", 2)
	l.Error("shown %d", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARNING] ")
	assert.Contains(t, out, "shown 2")
	assert.Contains(t, out, "[ERROR] ")
	assert.Equal(t, 2, strings.Count(out, "\n"))
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(DEBUG, JSONFormat, &buf)

	l.Info("listening on %s", "0.0.0.0:8080")

	var entry map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["severity"])
	assert.Equal(t, "listening on 0.0.0.0:8080", entry["message"])
	assert.NotEmpty(t, entry["time"])
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, JSONFormat, ParseFormat("JSON"))
	assert.Equal(t, TextFormat, ParseFormat("text"))
	assert.Equal(t, TextFormat, ParseFormat(""))
}
