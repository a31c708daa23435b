package layout

import (
	"math"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/engraver/internal/score"
)

// auxiliary emits slurs, texts, tempos, grace notes, count lines, sections
// and repeats. Content passes through unchanged except for text, which is
// NFC normalized so equivalent spellings encode identically.
func (r *run) auxiliary() error {
	for si, st := range r.s.Staves {
		for _, s := range st.Slurs {
			if !r.inRange(s.Time) {
				return r.outOfRange(PassAuxiliary, "slur", s.Time, si, s.ID)
			}
			for _, p := range s.Points {
				if !finite(p.Offset) || !finite(p.Time) {
					return newError(PassAuxiliary, ErrCodeInvalidEvent,
						"slur point (%g, %g) is not finite", p.Offset, p.Time).at(si, s.ID)
				}
			}
			points := make([]score.SlurPoint, len(s.Points))
			copy(points, s.Points)
			r.emit(Slur{Base: Base{Kind: KindSlur, Time: s.Time, Ref: s.ID, Staff: si}, Points: points})
		}

		for _, t := range st.Texts {
			if !r.inRange(t.Time) {
				return r.outOfRange(PassAuxiliary, "text", t.Time, si, t.ID)
			}
			if !finite(t.DistanceMM) {
				return newError(PassAuxiliary, ErrCodeInvalidEvent, "text distance %g is not finite", t.DistanceMM).at(si, t.ID)
			}
			if t.Side != score.SideLeft && t.Side != score.SideRight {
				return newError(PassAuxiliary, ErrCodeInvalidEvent, "unknown text side %q", t.Side).at(si, t.ID)
			}
			r.emit(Text{
				Base:       Base{Kind: KindText, Time: t.Time, Ref: t.ID, Staff: si},
				Side:       t.Side,
				DistanceMM: t.DistanceMM,
				Text:       norm.NFC.String(t.Text),
			})
		}

		for _, t := range st.Tempos {
			if !r.inRange(t.Time) {
				return r.outOfRange(PassAuxiliary, "tempo", t.Time, si, t.ID)
			}
			if !finite(t.BPM) {
				return newError(PassAuxiliary, ErrCodeInvalidEvent, "tempo %g is not finite", t.BPM).at(si, t.ID)
			}
			r.emit(Tempo{Base: Base{Kind: KindTempo, Time: t.Time, Ref: t.ID, Staff: si}, BPM: t.BPM})
		}

		for _, g := range st.GraceNotes {
			switch {
			case !r.inRange(g.Time):
				return r.outOfRange(PassAuxiliary, "grace note", g.Time, si, g.ID)
			case g.Pitch < score.LowestKey || g.Pitch > score.HighestKey:
				return newError(PassAuxiliary, ErrCodeInvalidNote, "grace note pitch %d outside keyboard", g.Pitch).at(si, g.ID)
			case !g.Hand.Valid():
				return newError(PassAuxiliary, ErrCodeInvalidNote, "unknown hand %q", g.Hand).at(si, g.ID)
			}
			r.emit(GraceNote{
				Base:  Base{Kind: KindGraceNote, Time: g.Time, Ref: g.ID, Staff: si},
				Pitch: g.Pitch,
				Hand:  g.Hand,
			})
		}

		for _, c := range st.CountLines {
			if !r.inRange(c.Time) {
				return r.outOfRange(PassAuxiliary, "count line", c.Time, si, c.ID)
			}
			r.emit(CountLine{
				Base:   Base{Kind: KindCountLine, Time: c.Time, Ref: c.ID, Staff: si},
				Pitch1: c.Pitch1,
				Pitch2: c.Pitch2,
			})
		}

		for _, s := range st.Sections {
			if !r.inRange(s.Time) {
				return r.outOfRange(PassAuxiliary, "section", s.Time, si, s.ID)
			}
			r.emit(Section{
				Base: Base{Kind: KindSection, Time: s.Time, Ref: s.ID, Staff: si},
				Text: norm.NFC.String(s.Text),
			})
		}

		for _, rp := range st.Repeats {
			if !r.inRange(rp.Time) {
				return r.outOfRange(PassAuxiliary, "repeat", rp.Time, si, rp.ID)
			}
			t := rp.Time
			switch rp.Kind {
			case score.RepeatStart:
			case score.RepeatEnd:
				// End repeats close the preceding line.
				t = math.Max(t-Epsilon, 0)
			default:
				return newError(PassAuxiliary, ErrCodeInvalidEvent, "unknown repeat kind %q", rp.Kind).at(si, rp.ID)
			}
			r.emit(Repeat{
				Base: Base{Kind: KindRepeat, Time: t, Ref: rp.ID, Staff: si},
				End:  rp.Kind == score.RepeatEnd,
			})
		}
	}
	return nil
}
