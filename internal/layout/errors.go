package layout

import (
	"errors"
	"fmt"
)

// Pass names one stage of the layout pipeline.
type Pass string

const (
	PassStructural  Pass = "structural"
	PassNotes       Pass = "notes"
	PassDecorations Pass = "decorations"
	PassBeams       Pass = "beams"
	PassAuxiliary   Pass = "auxiliary"
	PassSort        Pass = "sort"
	PassLines       Pass = "lines"
	PassPages       Pass = "pages"
)

// ErrorCode categorizes layout failures.
type ErrorCode string

const (
	// ErrCodeInvalidProperties indicates unusable score properties.
	ErrCodeInvalidProperties ErrorCode = "INVALID_PROPERTIES"

	// ErrCodeInvalidGrid indicates a grid group with a non-positive
	// numerator or denominator, or a negative measure count.
	ErrCodeInvalidGrid ErrorCode = "INVALID_GRID"

	// ErrCodeInvalidNote indicates a negative duration, an unknown hand or
	// a pitch outside the keyboard.
	ErrCodeInvalidNote ErrorCode = "INVALID_NOTE"

	// ErrCodeInvalidBeam indicates a beam without a positive duration or
	// with an unknown hand.
	ErrCodeInvalidBeam ErrorCode = "INVALID_BEAM"

	// ErrCodeInvalidEvent indicates an auxiliary event with an unknown
	// variant field, such as a repeat that is neither start nor end.
	ErrCodeInvalidEvent ErrorCode = "INVALID_EVENT"

	// ErrCodeOutOfRange indicates an event time outside [0, length].
	ErrCodeOutOfRange ErrorCode = "EVENT_OUT_OF_RANGE"

	// ErrCodeInvalidLineBreak indicates a line break outside [0, length].
	ErrCodeInvalidLineBreak ErrorCode = "INVALID_LINEBREAK"
)

// Error is a failure in one layout pass. No document is produced when a
// pass fails.
type Error struct {
	Pass    Pass
	Code    ErrorCode
	Message string

	// Staff is the offending staff index, or NoStaff.
	Staff int

	// Ref is the offending source entity id, if known.
	Ref int64
}

func (e *Error) Error() string {
	switch {
	case e.Staff != NoStaff && e.Ref != 0:
		return fmt.Sprintf("layout %s: %s: %s (staff=%d, id=%d)", e.Pass, e.Code, e.Message, e.Staff, e.Ref)
	case e.Staff != NoStaff:
		return fmt.Sprintf("layout %s: %s: %s (staff=%d)", e.Pass, e.Code, e.Message, e.Staff)
	default:
		return fmt.Sprintf("layout %s: %s: %s", e.Pass, e.Code, e.Message)
	}
}

// IsLayoutError returns true if err is or wraps a layout Error.
func IsLayoutError(err error) bool {
	var le *Error
	return errors.As(err, &le)
}

// HasCode returns true if err is a layout Error with the given code.
func HasCode(err error, code ErrorCode) bool {
	var le *Error
	if errors.As(err, &le) {
		return le.Code == code
	}
	return false
}

func newError(pass Pass, code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Pass:    pass,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Staff:   NoStaff,
	}
}

func (e *Error) at(staff int, ref int64) *Error {
	e.Staff = staff
	e.Ref = ref
	return e
}
