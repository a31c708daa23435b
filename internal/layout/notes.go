package layout

import (
	"sort"

	"github.com/roach88/engraver/internal/score"
)

// noteSegments validates every note and cuts it at the barlines it crosses.
func (r *run) noteSegments() error {
	for si, st := range r.s.Staves {
		if !positive(st.Scale) {
			return newError(PassNotes, ErrCodeInvalidProperties, "staff scale must be positive, got %g", st.Scale).at(si, 0)
		}
		if !finite(st.MarginLeftMM) || !finite(st.MarginRightMM) {
			return newError(PassNotes, ErrCodeInvalidProperties,
				"staff margins %g/%g are not finite", st.MarginLeftMM, st.MarginRightMM).at(si, 0)
		}
		for _, n := range st.Notes {
			if err := r.checkNote(si, n); err != nil {
				return err
			}
			r.sources = append(r.sources, sourceNote{staff: si, Note: n})
			r.split(si, n)
		}
	}
	return nil
}

func (r *run) checkNote(staff int, n score.Note) error {
	switch {
	case !finite(n.Duration) || n.Duration < 0:
		return newError(PassNotes, ErrCodeInvalidNote, "invalid duration %g", n.Duration).at(staff, n.ID)
	case n.Pitch < score.LowestKey || n.Pitch > score.HighestKey:
		return newError(PassNotes, ErrCodeInvalidNote, "pitch %d outside keyboard", n.Pitch).at(staff, n.ID)
	case !n.Hand.Valid():
		return newError(PassNotes, ErrCodeInvalidNote, "unknown hand %q", n.Hand).at(staff, n.ID)
	case !r.inRange(n.Time):
		return r.outOfRange(PassNotes, "note", n.Time, staff, n.ID)
	}
	return nil
}

// split emits one note segment up to the first crossed barline and one
// notesplit segment per following barline-bounded remainder.
func (r *run) split(staff int, n score.Note) {
	end := n.End()
	start := n.Time
	kind := KindNote

	i := sort.Search(len(r.barlines), func(i int) bool { return r.barlines[i] > n.Time })
	for ; i < len(r.barlines) && r.barlines[i] < end; i++ {
		cut := r.barlines[i]
		r.emit(segment(kind, staff, n, start, cut))
		start = cut
		kind = KindNoteSplit
	}
	r.emit(segment(kind, staff, n, start, end))
}

func segment(kind Kind, staff int, n score.Note, start, end float64) Note {
	return Note{
		Base:     Base{Kind: kind, Time: start, Ref: n.ID, Staff: staff},
		Pitch:    n.Pitch,
		Hand:     n.Hand,
		Duration: end - start,
		Velocity: n.Velocity,
	}
}
