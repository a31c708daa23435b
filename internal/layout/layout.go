package layout

import (
	"log/slog"
	"math"
	"time"

	"github.com/roach88/engraver/internal/score"
)

// Epsilon is the tolerance for treating two tick positions as the same
// moment, and the distance by which end-of-span marks are pulled back so
// they stay on the line they close.
const Epsilon = 0.01

// run holds the state that accumulates across passes for one Engrave call.
type run struct {
	s       *score.Score
	quarter float64
	length  float64

	// barlines are measure start times followed by the final time.
	barlines []float64
	// boundaries are barlines and gridlines merged in time order.
	boundaries []float64

	sources []sourceNote
	events  []Event
	lines   []Line
	pages   []Page
}

// sourceNote is a validated score note with its staff index.
type sourceNote struct {
	staff int
	score.Note
}

type pass struct {
	name Pass
	fn   func(*run) error
}

var pipeline = []pass{
	{PassStructural, (*run).structural},
	{PassNotes, (*run).noteSegments},
	{PassDecorations, (*run).decorations},
	{PassBeams, (*run).beams},
	{PassAuxiliary, (*run).auxiliary},
	{PassSort, (*run).sortEvents},
	{PassLines, (*run).breakLines},
	{PassPages, (*run).packPages},
}

// Engrave computes the layout document for a score snapshot.
//
// Engrave only reads s. It is deterministic: equal scores produce documents
// with equal encodings. Any invalid input aborts the whole computation with
// an *Error and no document.
func Engrave(s *score.Score) (*Document, error) {
	start := time.Now()
	if s == nil {
		return nil, newError(PassStructural, ErrCodeInvalidProperties, "nil score")
	}

	r := &run{s: s, quarter: s.Properties.QuarterTick}
	for _, p := range pipeline {
		before := len(r.events)
		if err := p.fn(r); err != nil {
			slog.Debug("layout pass failed", "pass", p.name, "error", err)
			return nil, err
		}
		slog.Debug("layout pass done",
			"pass", p.name,
			"events", len(r.events),
			"added", len(r.events)-before,
		)
	}

	doc := &Document{
		QuarterTick:  r.quarter,
		Length:       r.length,
		PrintWidthMM: s.Properties.Page.PrintWidthMM(),
		Pages:        r.pages,
	}

	slog.Debug("layout complete",
		"pages", len(doc.Pages),
		"lines", len(r.lines),
		"events", len(r.events),
		"duration", time.Since(start),
	)
	return doc, nil
}

func (r *run) emit(e Event) {
	r.events = append(r.events, e)
}

// finite reports whether v is neither NaN nor infinite.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// positive reports whether v is finite and greater than zero.
func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// inRange reports whether t lies within [0, length]. NaN is never in range.
func (r *run) inRange(t float64) bool {
	return t >= 0 && t <= r.length
}

func (r *run) outOfRange(p Pass, what string, t float64, staff int, ref int64) *Error {
	return newError(p, ErrCodeOutOfRange, "%s at %g outside [0, %g]", what, t, r.length).at(staff, ref)
}
