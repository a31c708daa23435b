package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "info", FormatJSON)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("task completed", "task_id", 7)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "task completed", rec["msg"])
	assert.Equal(t, float64(7), rec["task_id"])
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "debug", "")
	require.NoError(t, err)

	logger.Debug("task started", "task_id", 1)
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "task_id=1")
}

func TestNew_Errors(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "info", "xml")
	assert.Error(t, err)

	_, err = New(&bytes.Buffer{}, "nope", FormatText)
	assert.Error(t, err)
}

func TestSetup_InstallsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	_, err := Setup(&buf, "warn", FormatText)
	require.NoError(t, err)

	slog.Info("dropped")
	slog.Warn("kept")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}
