package layout

import (
	"math"
	"sort"

	"github.com/roach88/engraver/internal/score"
)

// Line is one system of the document: a contiguous time range with its
// events and staff dimensions.
type Line struct {
	Index int     `json:"index"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`

	Events []Event       `json:"events"`
	Staves []StaffLayout `json:"staves"`

	// WidthMM is the sum over visible staves of width plus margins.
	WidthMM float64 `json:"width_mm"`
}

// StaffLayout is the derived pitch range and width of one staff on a line.
type StaffLayout struct {
	Staff    int     `json:"staff"`
	Name     string  `json:"name"`
	Hidden   bool    `json:"hidden,omitempty"`
	MinPitch int     `json:"min_pitch"`
	MaxPitch int     `json:"max_pitch"`
	WidthMM  float64 `json:"width_mm"`
}

// breakLines partitions [0, length] at the line break markers and
// distributes the sorted events over the resulting lines.
func (r *run) breakLines() error {
	starts, err := r.lineStarts()
	if err != nil {
		return err
	}

	r.lines = make([]Line, len(starts))
	for i, start := range starts {
		end := r.length
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		r.lines[i] = Line{Index: i, Start: start, End: end, Events: make([]Event, 0)}
	}

	for _, e := range r.events {
		t := e.Meta().Time
		i := sort.Search(len(starts), func(i int) bool { return starts[i] > t }) - 1
		if i < 0 {
			i = 0
		}
		r.lines[i].Events = append(r.lines[i].Events, e)
	}

	for i := range r.lines {
		r.measureLine(&r.lines[i])
	}
	return nil
}

// lineStarts returns the sorted, distinct start times of all lines. The
// first line always starts at 0; a marker at the very end opens no line.
func (r *run) lineStarts() ([]float64, error) {
	marks := make([]float64, 0, len(r.s.LineBreaks)+1)
	for _, lb := range r.s.LineBreaks {
		if !r.inRange(lb.Time) {
			return nil, newError(PassLines, ErrCodeInvalidLineBreak,
				"line break at %g outside [0, %g]", lb.Time, r.length).at(NoStaff, lb.ID)
		}
		for _, sr := range lb.StaffRanges {
			if sr.Staff < 0 || sr.Staff >= len(r.s.Staves) {
				return nil, newError(PassLines, ErrCodeInvalidLineBreak,
					"staff range for unknown staff %d", sr.Staff).at(NoStaff, lb.ID)
			}
			if !validRangeKey(sr.Lowest) || !validRangeKey(sr.Highest) {
				return nil, newError(PassLines, ErrCodeInvalidLineBreak,
					"staff range %d..%d outside keyboard", sr.Lowest, sr.Highest).at(sr.Staff, lb.ID)
			}
		}
		marks = append(marks, lb.Time)
	}
	marks = append(marks, 0)
	sort.Float64s(marks)
	marks = dedupe(marks)

	starts := marks[:0]
	for _, m := range marks {
		if m == 0 || m < r.length-Epsilon {
			starts = append(starts, m)
		}
	}
	return starts, nil
}

func validRangeKey(k int) bool {
	return k == 0 || (k >= score.LowestKey && k <= score.HighestKey)
}

// measureLine derives per-staff pitch ranges and widths for a line.
func (r *run) measureLine(l *Line) {
	overrides := make(map[int]score.StaffRange)
	for _, lb := range r.s.LineBreaks {
		if math.Abs(lb.Time-l.Start) > Epsilon {
			continue
		}
		for _, sr := range lb.StaffRanges {
			overrides[sr.Staff] = sr
		}
	}

	l.Staves = make([]StaffLayout, len(r.s.Staves))
	for si, st := range r.s.Staves {
		low, high := staffCoreLow, staffCoreHigh
		if sr, ok := overrides[si]; ok {
			if sr.Lowest != 0 {
				low = min(low, sr.Lowest)
			}
			if sr.Highest != 0 {
				high = max(high, sr.Highest)
			}
		}
		l.Staves[si] = StaffLayout{Staff: si, Name: st.Name, Hidden: st.Hidden, MinPitch: low, MaxPitch: high}
	}

	for _, e := range l.Events {
		n, ok := e.(Note)
		if !ok {
			continue
		}
		sl := &l.Staves[n.Staff]
		sl.MinPitch = min(sl.MinPitch, n.Pitch)
		sl.MaxPitch = max(sl.MaxPitch, n.Pitch)
	}

	for si, st := range r.s.Staves {
		sl := &l.Staves[si]
		if st.Hidden {
			continue
		}
		sl.WidthMM = StaffWidth(sl.MinPitch, sl.MaxPitch) * r.s.Properties.DrawScale * st.Scale
		l.WidthMM += sl.WidthMM + st.MarginLeftMM + st.MarginRightMM
	}
}
