package score

import (
	"errors"
	"fmt"
	"sync"
)

// ErrCodeIsolation marks a snapshot that still shares memory with its origin.
const ErrCodeIsolation = "SNAPSHOT_ISOLATION"

// IsolationError reports that a snapshot could not be separated from the
// live score. A snapshot with this error must never be used.
type IsolationError struct {
	// Path locates the shared field, e.g. "staves[0].notes".
	Path    string
	Message string
	Err     error
}

func (e *IsolationError) Error() string {
	msg := fmt.Sprintf("%s: %s", ErrCodeIsolation, e.Message)
	if e.Path != "" {
		msg = fmt.Sprintf("%s (path=%s)", msg, e.Path)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *IsolationError) Unwrap() error {
	return e.Err
}

// IsIsolationError returns true if err is or wraps an IsolationError.
func IsIsolationError(err error) bool {
	var ie *IsolationError
	return errors.As(err, &ie)
}

// Source produces isolated snapshots of a score.
//
// Snapshot is called on the submitting goroutine. The returned score is
// owned by the caller and must share no memory with the source.
type Source interface {
	Snapshot() (*Score, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func() (*Score, error)

// Snapshot calls f.
func (f SourceFunc) Snapshot() (*Score, error) {
	return f()
}

// Snapshot returns a verified deep copy of s. A *Score is therefore a Source
// for callers that own the score exclusively.
func (s *Score) Snapshot() (*Score, error) {
	if s == nil {
		return nil, &IsolationError{Message: "nil score"}
	}
	c := s.Clone()
	if err := VerifyIsolated(s, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Clone returns a deep copy of s.
func (s *Score) Clone() *Score {
	if s == nil {
		return nil
	}
	c := &Score{
		Properties: s.Properties,
		Grid:       make([]GridGroup, len(s.Grid)),
		LineBreaks: make([]LineBreak, len(s.LineBreaks)),
		Staves:     make([]Stave, len(s.Staves)),
	}
	for i, g := range s.Grid {
		g.GridTimes = cloneSlice(g.GridTimes)
		c.Grid[i] = g
	}
	for i, lb := range s.LineBreaks {
		lb.StaffRanges = cloneSlice(lb.StaffRanges)
		c.LineBreaks[i] = lb
	}
	for i, st := range s.Staves {
		st.Notes = cloneSlice(st.Notes)
		st.GraceNotes = cloneSlice(st.GraceNotes)
		st.Beams = cloneSlice(st.Beams)
		st.Texts = cloneSlice(st.Texts)
		st.Tempos = cloneSlice(st.Tempos)
		st.CountLines = cloneSlice(st.CountLines)
		st.Sections = cloneSlice(st.Sections)
		st.Repeats = cloneSlice(st.Repeats)
		slurs := cloneSlice(st.Slurs)
		for j := range slurs {
			slurs[j].Points = cloneSlice(slurs[j].Points)
		}
		st.Slurs = slurs
		c.Staves[i] = st
	}
	return c
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

// VerifyIsolated checks that snap shares no slice storage with live.
func VerifyIsolated(live, snap *Score) error {
	if live == nil || snap == nil {
		return &IsolationError{Message: "nil score"}
	}
	if live == snap {
		return &IsolationError{Message: "snapshot is the live score"}
	}
	if len(live.Grid) != len(snap.Grid) || len(live.Staves) != len(snap.Staves) ||
		len(live.LineBreaks) != len(snap.LineBreaks) {
		return &IsolationError{Message: "snapshot shape differs from live score"}
	}

	checks := []struct {
		path   string
		shared bool
	}{
		{"grid", sharesStorage(live.Grid, snap.Grid)},
		{"line_breaks", sharesStorage(live.LineBreaks, snap.LineBreaks)},
		{"staves", sharesStorage(live.Staves, snap.Staves)},
	}
	for _, c := range checks {
		if c.shared {
			return &IsolationError{Path: c.path, Message: "slice storage shared with live score"}
		}
	}

	for i := range live.Grid {
		if sharesStorage(live.Grid[i].GridTimes, snap.Grid[i].GridTimes) {
			return sharedAt("grid[%d].grid_times", i)
		}
	}
	for i := range live.LineBreaks {
		if sharesStorage(live.LineBreaks[i].StaffRanges, snap.LineBreaks[i].StaffRanges) {
			return sharedAt("line_breaks[%d].staff_ranges", i)
		}
	}
	for i := range live.Staves {
		a, b := &live.Staves[i], &snap.Staves[i]
		fields := []struct {
			name   string
			shared bool
		}{
			{"notes", sharesStorage(a.Notes, b.Notes)},
			{"grace_notes", sharesStorage(a.GraceNotes, b.GraceNotes)},
			{"beams", sharesStorage(a.Beams, b.Beams)},
			{"slurs", sharesStorage(a.Slurs, b.Slurs)},
			{"texts", sharesStorage(a.Texts, b.Texts)},
			{"tempos", sharesStorage(a.Tempos, b.Tempos)},
			{"count_lines", sharesStorage(a.CountLines, b.CountLines)},
			{"sections", sharesStorage(a.Sections, b.Sections)},
			{"repeats", sharesStorage(a.Repeats, b.Repeats)},
		}
		for _, f := range fields {
			if f.shared {
				return sharedAt("staves[%d]."+f.name, i)
			}
		}
		if len(a.Slurs) == len(b.Slurs) {
			for j := range a.Slurs {
				if sharesStorage(a.Slurs[j].Points, b.Slurs[j].Points) {
					return sharedAt(fmt.Sprintf("staves[%d].slurs[%%d].points", i), j)
				}
			}
		}
	}
	return nil
}

func sharedAt(format string, i int) error {
	return &IsolationError{Path: fmt.Sprintf(format, i), Message: "slice storage shared with live score"}
}

// sharesStorage reports whether two non-empty slices start at the same
// element. Empty slices own no storage worth protecting.
func sharesStorage[T any](a, b []T) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	return &a[0] == &b[0]
}

// Live is a score that is edited concurrently with engraving.
//
// Edits run under the write lock; snapshots copy under the read lock, so
// a snapshot always reflects a whole number of edits.
type Live struct {
	mu    sync.RWMutex
	score *Score
}

// NewLive wraps s. The caller must not retain s after this call.
func NewLive(s *Score) *Live {
	if s == nil {
		s = New()
	}
	return &Live{score: s}
}

// Update applies fn to the live score under the write lock.
func (l *Live) Update(fn func(s *Score)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.score)
}

// Replace swaps in a new score, for example after reloading a file.
func (l *Live) Replace(s *Score) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.score = s
}

// Snapshot returns an isolated copy of the current state.
func (l *Live) Snapshot() (*Score, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.score.Snapshot()
}
