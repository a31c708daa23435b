package layout

import (
	"sort"

	"github.com/roach88/engraver/internal/score"
)

// structural emits barlines, gridlines and time signatures from the grid
// and fixes the score length.
func (r *run) structural() error {
	props := r.s.Properties
	if !positive(props.QuarterTick) {
		return newError(PassStructural, ErrCodeInvalidProperties, "quarter tick must be positive, got %g", props.QuarterTick)
	}
	if !positive(props.DrawScale) {
		return newError(PassStructural, ErrCodeInvalidProperties, "draw scale must be positive, got %g", props.DrawScale)
	}

	var (
		t                float64
		measure          int
		prevNum, prevDen int
		gridlines        []float64
	)
	for i, g := range r.s.Grid {
		if g.Numerator <= 0 || g.Denominator <= 0 {
			return newError(PassStructural, ErrCodeInvalidGrid,
				"grid group %d has time signature %d/%d", i, g.Numerator, g.Denominator)
		}
		if g.MeasureCount < 0 {
			return newError(PassStructural, ErrCodeInvalidGrid,
				"grid group %d has negative measure count %d", i, g.MeasureCount)
		}
		for _, o := range g.GridTimes {
			if !finite(o) {
				return newError(PassStructural, ErrCodeInvalidGrid,
					"grid group %d has grid time %g", i, o)
			}
		}
		if g.MeasureCount == 0 {
			continue
		}

		length := g.MeasureLength(r.quarter)
		if g.Numerator != prevNum || g.Denominator != prevDen {
			r.emit(TimeSignature{
				Base:        Base{Kind: KindTimeSignature, Time: t, Staff: NoStaff},
				Numerator:   g.Numerator,
				Denominator: g.Denominator,
				Visible:     !g.HideTimeSignature,
			})
			prevNum, prevDen = g.Numerator, g.Denominator
		}

		offsets := gridOffsets(g, length, r.quarter)
		for m := 0; m < g.MeasureCount; m++ {
			measure++
			r.barlines = append(r.barlines, t)
			r.emit(Barline{
				Base:    Base{Kind: KindBarline, Time: t, Staff: NoStaff},
				Measure: measure,
			})
			for _, o := range offsets {
				gridlines = append(gridlines, t+o)
				r.emit(Gridline{Base: Base{Kind: KindGridline, Time: t + o, Staff: NoStaff}})
			}
			t += length
		}
	}

	r.length = t
	r.barlines = append(r.barlines, t)
	r.emit(Barline{
		Base:    Base{Kind: KindBarline, Time: t, Staff: NoStaff},
		Measure: measure,
		End:     true,
	})

	r.boundaries = make([]float64, 0, len(r.barlines)+len(gridlines))
	r.boundaries = append(r.boundaries, r.barlines...)
	r.boundaries = append(r.boundaries, gridlines...)
	sort.Float64s(r.boundaries)
	return nil
}

// gridOffsets returns the gridline positions inside one measure. Explicit
// grid times win; otherwise every beat gets a gridline.
func gridOffsets(g score.GridGroup, measureLength, quarter float64) []float64 {
	var offsets []float64
	if len(g.GridTimes) > 0 {
		for _, o := range g.GridTimes {
			if o > Epsilon && o < measureLength-Epsilon {
				offsets = append(offsets, o)
			}
		}
		sort.Float64s(offsets)
		return dedupe(offsets)
	}

	beat := quarter * 4 / float64(g.Denominator)
	for k := 1; k < g.Numerator; k++ {
		offsets = append(offsets, float64(k)*beat)
	}
	return offsets
}

// dedupe drops sorted values closer than Epsilon to their predecessor.
func dedupe(sorted []float64) []float64 {
	if len(sorted) < 2 {
		return sorted
	}
	out := sorted[:1]
	for _, v := range sorted[1:] {
		if v-out[len(out)-1] > Epsilon {
			out = append(out, v)
		}
	}
	return out
}
