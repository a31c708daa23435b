package layout

import (
	"math"
	"sort"

	"github.com/roach88/engraver/internal/score"
)

// voice is the set of notes one hand plays on one staff. Decorations never
// look across voices.
type voice struct {
	staff int
	hand  score.Hand
	notes []sourceNote
}

// voices groups source notes by staff and hand. Groups are ordered by staff
// then hand, notes by onset, pitch and id.
func (r *run) voices() []voice {
	index := make(map[voiceKey]int)
	var out []voice
	for _, n := range r.sources {
		k := voiceKey{n.staff, n.Hand}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, voice{staff: n.staff, hand: n.Hand})
		}
		out[i].notes = append(out[i].notes, n)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].staff != out[j].staff {
			return out[i].staff < out[j].staff
		}
		return out[i].hand < out[j].hand
	})
	for _, v := range out {
		sort.SliceStable(v.notes, func(i, j int) bool {
			a, b := v.notes[i], v.notes[j]
			if a.Time != b.Time {
				return a.Time < b.Time
			}
			if a.Pitch != b.Pitch {
				return a.Pitch < b.Pitch
			}
			return a.ID < b.ID
		})
	}
	return out
}

type voiceKey struct {
	staff int
	hand  score.Hand
}

// decorations synthesizes continuation dots, stop signs and connect stems.
func (r *run) decorations() error {
	for _, v := range r.voices() {
		r.continuationDots(v)
		r.stopSigns(v)
		r.connectStems(v)
	}
	return nil
}

// continuationDots marks a note that is still sounding at a barline or
// gridline, or at an onset or release of another note in the same voice.
func (r *run) continuationDots(v voice) {
	for i, n := range v.notes {
		end := n.End()
		inside := func(t float64) bool {
			return t > n.Time+Epsilon && t < end-Epsilon && t <= r.length
		}

		var at []float64
		lo := sort.SearchFloat64s(r.boundaries, n.Time)
		for _, b := range r.boundaries[lo:] {
			if b >= end {
				break
			}
			if inside(b) {
				at = append(at, b)
			}
		}
		for j, o := range v.notes {
			if j == i {
				continue
			}
			if inside(o.Time) {
				at = append(at, o.Time)
			}
			if inside(o.End()) {
				at = append(at, o.End())
			}
		}

		sort.Float64s(at)
		for _, t := range dedupe(at) {
			r.emit(ContinuationDot{
				Base:  Base{Kind: KindContinuationDot, Time: t, Ref: n.ID, Staff: v.staff},
				Pitch: n.Pitch,
				Hand:  v.hand,
			})
		}
	}
}

// stopSigns marks the end of every maximal sounding span of a voice. Notes
// whose onset touches the running span extend it, so legato passages get a
// single stop sign at their final release.
func (r *run) stopSigns(v voice) {
	notes := v.notes
	for i := 0; i < len(notes); {
		spanEnd := notes[i].End()
		j := i + 1
		for j < len(notes) && notes[j].Time <= spanEnd+Epsilon {
			spanEnd = math.Max(spanEnd, notes[j].End())
			j++
		}

		at := math.Max(math.Min(spanEnd, r.length)-Epsilon, 0)
		for _, n := range notes[i:j] {
			if math.Abs(n.End()-spanEnd) > Epsilon {
				continue
			}
			r.emit(StopSign{
				Base:  Base{Kind: KindStopSign, Time: math.Max(at, n.Time), Ref: n.ID, Staff: v.staff},
				Pitch: n.Pitch,
				Hand:  v.hand,
			})
		}
		i = j
	}
}

// connectStems joins onsets of the same voice that fall within Epsilon of
// each other.
func (r *run) connectStems(v voice) {
	notes := v.notes
	for i := 0; i < len(notes); {
		start := notes[i].Time
		low, high := notes[i].Pitch, notes[i].Pitch
		j := i + 1
		for j < len(notes) && notes[j].Time-start <= Epsilon {
			low = min(low, notes[j].Pitch)
			high = max(high, notes[j].Pitch)
			j++
		}
		if j-i >= 2 {
			r.emit(ConnectStem{
				Base: Base{Kind: KindConnectStem, Time: start, Staff: v.staff},
				Hand: v.hand,
				Low:  low,
				High: high,
			})
		}
		i = j
	}
}
