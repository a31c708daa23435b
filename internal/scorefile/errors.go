package scorefile

import (
	"errors"
	"fmt"
)

// Load error codes.
const (
	ErrCodeRead   = "SCORE_READ"
	ErrCodeEmpty  = "SCORE_EMPTY"
	ErrCodeSyntax = "SCORE_SYNTAX"
	ErrCodeSchema = "SCORE_SCHEMA"
	ErrCodeDecode = "SCORE_DECODE"
)

// LoadError describes why a score file could not be loaded. Path is the
// dotted field path for schema violations, empty otherwise.
type LoadError struct {
	File    string
	Code    string
	Path    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	prefix := e.Code
	if e.File != "" {
		prefix = e.File + ": " + e.Code
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", prefix, e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsLoadError reports whether err wraps a *LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

// SchemaErrors lists every schema violation of one file.
type SchemaErrors []*LoadError

func (e SchemaErrors) Error() string {
	switch len(e) {
	case 0:
		return ""
	case 1:
		return e[0].Error()
	}
	return fmt.Sprintf("%s (and %d more)", e[0].Error(), len(e)-1)
}

// Unwrap exposes the individual violations to errors.As.
func (e SchemaErrors) Unwrap() []error {
	out := make([]error, len(e))
	for i, le := range e {
		out[i] = le
	}
	return out
}
