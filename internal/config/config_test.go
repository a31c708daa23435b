package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the config search path at an empty directory and runs the
// test from another empty directory.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Chdir(t.TempDir())
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDefault(t *testing.T) {
	home := isolate(t)
	cfg := Default()

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.False(t, cfg.Journal.Enabled)
	assert.Equal(t, filepath.Join(home, "engraver", "journal.db"), cfg.Journal.Path)
	assert.Equal(t, 50*time.Millisecond, cfg.Watch.Debounce())
	assert.Zero(t, cfg.Layout.QuarterTickOverride)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.Empty(t, cfg.Validate())
}

func TestLoad_NoFile(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_SearchPath(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, "engraver", "engraver.yaml"), "log:\n  level: debug\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_ExplicitFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	writeFile(t, path, `
log:
  format: json
journal:
  enabled: true
  path: /tmp/engraver.db
watch:
  debounce_ms: 200
layout:
  quarter_tick_override: 480
output:
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Journal.Enabled)
	assert.Equal(t, "/tmp/engraver.db", cfg.Journal.Path)
	assert.Equal(t, 200*time.Millisecond, cfg.Watch.Debounce())
	assert.Equal(t, 480.0, cfg.Layout.QuarterTickOverride)
	assert.Equal(t, "json", cfg.Output.Format)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "engraver.yaml")
	writeFile(t, path, "watch:\n  debounce_ms: 200\n")
	t.Setenv("ENGRAVER_WATCH_DEBOUNCE_MS", "10")
	t.Setenv("ENGRAVER_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Watch.DebounceMs)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_Invalid(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "engraver.yaml")
	writeFile(t, path, `
log:
  level: loud
watch:
  debounce_ms: -1
`)

	_, err := Load(path)
	require.Error(t, err)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 2)
	assert.Equal(t, "log.level", verrs[0].Field)
	assert.Equal(t, "watch.debounce_ms", verrs[1].Field)
	assert.Contains(t, err.Error(), "2 validation errors")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(c *Config)
		field string
	}{
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"journal without path", func(c *Config) { c.Journal.Enabled = true; c.Journal.Path = " " }, "journal.path"},
		{"debounce too long", func(c *Config) { c.Watch.DebounceMs = maxDebounceMs + 1 }, "watch.debounce_ms"},
		{"negative quarter", func(c *Config) { c.Layout.QuarterTickOverride = -1 }, "layout.quarter_tick_override"},
		{"output format", func(c *Config) { c.Output.Format = "yaml" }, "output.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.edit(cfg)
			errs := cfg.Validate()
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestValidate_LevelIsCaseInsensitive(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "DEBUG"
	assert.Empty(t, cfg.Validate())
}

func TestValidationErrors_Single(t *testing.T) {
	err := ValidationErrors{{Field: "log.level", Value: "x", Message: "bad"}}
	assert.Equal(t, "log.level: bad (got: x)", err.Error())
	assert.Empty(t, ValidationErrors{}.Error())
}
