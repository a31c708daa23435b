// Package config loads engraver settings from defaults, an optional YAML
// file and ENGRAVER_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// ENGRAVER_LOG_LEVEL for log.level.
const EnvPrefix = "ENGRAVER"

// Config is the complete engraver configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Journal JournalConfig `mapstructure:"journal"`
	Watch   WatchConfig   `mapstructure:"watch"`
	Layout  LayoutConfig  `mapstructure:"layout"`
	Output  OutputConfig  `mapstructure:"output"`
}

// LogConfig controls the default slog handler.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`
	// Format is text or json.
	Format string `mapstructure:"format"`
}

// JournalConfig controls outcome recording.
type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// WatchConfig controls the file watcher.
type WatchConfig struct {
	// DebounceMs is how long a burst of file events must be quiet before
	// the score is reloaded.
	DebounceMs int `mapstructure:"debounce_ms"`
}

// Debounce returns DebounceMs as a duration.
func (c WatchConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// LayoutConfig adjusts scores before layout.
type LayoutConfig struct {
	// QuarterTickOverride replaces the score's quarter tick when positive.
	QuarterTickOverride float64 `mapstructure:"quarter_tick_override"`
}

// OutputConfig controls CLI output.
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Journal: JournalConfig{
			Enabled: false,
			Path:    filepath.Join(Dir(), "journal.db"),
		},
		Watch: WatchConfig{
			DebounceMs: 50,
		},
		Output: OutputConfig{
			Format: "text",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("journal.enabled", d.Journal.Enabled)
	v.SetDefault("journal.path", d.Journal.Path)

	v.SetDefault("watch.debounce_ms", d.Watch.DebounceMs)

	v.SetDefault("layout.quarter_tick_override", d.Layout.QuarterTickOverride)

	v.SetDefault("output.format", d.Output.Format)
}

// Load reads the configuration. When path is empty, engraver.yaml is
// searched in Dir() and the working directory and may be absent; an
// explicit path must exist. The result is validated.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("engraver")
		v.SetConfigType("yaml")
		v.AddConfigPath(Dir())
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return &cfg, nil
}

// Dir returns the engraver configuration directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "engraver")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".engraver"
	}
	return filepath.Join(home, ".config", "engraver")
}
