package config

import (
	"fmt"
	"slices"
	"strings"
)

// maxDebounceMs caps watch.debounce_ms at one minute.
const maxDebounceMs = 60_000

// ValidationError is a single invalid setting.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors collects every invalid setting of a configuration.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidLogLevels lists accepted log.level values.
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidFormats lists accepted log.format and output.format values.
func ValidFormats() []string {
	return []string{"text", "json"}
}

// Validate returns every problem with c, or nil.
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError

	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Log.Level)) {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Value:   c.Log.Level,
			Message: fmt.Sprintf("must be one of %v", ValidLogLevels()),
		})
	}
	if !slices.Contains(ValidFormats(), c.Log.Format) {
		errs = append(errs, ValidationError{
			Field:   "log.format",
			Value:   c.Log.Format,
			Message: fmt.Sprintf("must be one of %v", ValidFormats()),
		})
	}
	if c.Journal.Enabled && strings.TrimSpace(c.Journal.Path) == "" {
		errs = append(errs, ValidationError{
			Field:   "journal.path",
			Value:   c.Journal.Path,
			Message: "required when journal.enabled is true",
		})
	}
	if c.Watch.DebounceMs < 0 || c.Watch.DebounceMs > maxDebounceMs {
		errs = append(errs, ValidationError{
			Field:   "watch.debounce_ms",
			Value:   c.Watch.DebounceMs,
			Message: fmt.Sprintf("must be between 0 and %d", maxDebounceMs),
		})
	}
	if c.Layout.QuarterTickOverride < 0 {
		errs = append(errs, ValidationError{
			Field:   "layout.quarter_tick_override",
			Value:   c.Layout.QuarterTickOverride,
			Message: "must not be negative",
		})
	}
	if !slices.Contains(ValidFormats(), c.Output.Format) {
		errs = append(errs, ValidationError{
			Field:   "output.format",
			Value:   c.Output.Format,
			Message: fmt.Sprintf("must be one of %v", ValidFormats()),
		})
	}

	return errs
}
