package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/engraver/internal/score"
	"github.com/roach88/engraver/internal/testutil"
)

func TestBreakLines_Coverage(t *testing.T) {
	b := testutil.NewScore().Grid(4, 4, 2).Staff("piano")
	for _, tm := range []float64{0, 499, 500, 999, 1000, 2040} {
		b.Right(tm, 1, 40)
	}
	b.LineBreaks(0, 500, 1000, 2048)
	doc := engrave(t, b.Build())

	lines := doc.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, [][2]float64{{0, 500}, {500, 1000}, {1000, 2048}},
		[][2]float64{{lines[0].Start, lines[0].End}, {lines[1].Start, lines[1].End}, {lines[2].Start, lines[2].End}})

	seen := make(map[int64]int)
	for i, l := range lines {
		last := i == len(lines)-1
		for _, e := range l.Events {
			tm := e.Meta().Time
			assert.GreaterOrEqual(t, tm, l.Start)
			if last {
				assert.LessOrEqual(t, tm, l.End)
			} else {
				assert.Less(t, tm, l.End)
			}
			if n, ok := e.(Note); ok && n.Kind == KindNote {
				seen[n.Ref]++
			}
		}
	}

	assert.Len(t, seen, 6)
	for id, count := range seen {
		assert.Equal(t, 1, count, "note %d", id)
	}

	// The final barline sits exactly at the end and belongs to the last line.
	lastEvents := lines[2].Events
	bar, ok := lastEvents[len(lastEvents)-1].(Barline)
	require.True(t, ok)
	assert.True(t, bar.End)
}

func TestBreakLines_BoundaryEventStartsLine(t *testing.T) {
	b := testutil.NewScore().Grid(4, 4, 2).Staff("piano").Right(1024, 10, 40)
	b.LineBreaks(1024)
	doc := engrave(t, b.Build())

	lines := doc.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, 0.0, lines[0].Start)

	notes := 0
	for _, e := range lines[1].Events {
		if _, ok := e.(Note); ok {
			notes++
		}
	}
	assert.Equal(t, 1, notes)
}

func TestBreakLines_EndRepeatClosesPreviousLine(t *testing.T) {
	b := testutil.NewScore().Grid(4, 4, 2).Staff("piano").Repeat(0, 1024, score.RepeatEnd)
	b.LineBreaks(0, 1024)
	doc := engrave(t, b.Build())

	lines := doc.Lines()
	require.Len(t, lines, 2)

	found := false
	for _, e := range lines[0].Events {
		if r, ok := e.(Repeat); ok && r.End {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLineStarts(t *testing.T) {
	tests := []struct {
		name   string
		marks  []float64
		length int
		want   []float64
	}{
		{"implicit zero", []float64{1024}, 2, []float64{0, 1024}},
		{"unsorted with duplicates", []float64{1024, 0, 512, 1024, 512.001}, 2, []float64{0, 512, 1024}},
		{"marker at end opens no line", []float64{0, 2048}, 2, []float64{0}},
		{"empty score", []float64{0}, 0, []float64{0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := testutil.NewScore()
			if tt.length > 0 {
				b.Grid(4, 4, tt.length)
			}
			b.LineBreaks(tt.marks...)
			doc := engrave(t, b.Build())

			var starts []float64
			for _, l := range doc.Lines() {
				starts = append(starts, l.Start)
			}
			assert.Equal(t, tt.want, starts)
		})
	}
}

func TestStaffWidth(t *testing.T) {
	assert.Equal(t, 0.0, StaffWidth(0, 0))
	assert.Equal(t, 18.0, StaffWidth(40, 44))
	assert.Equal(t, 18.0, StaffWidth(41, 43))
	assert.Equal(t, 60.0, StaffWidth(30, 44))
	assert.Equal(t, 102.0, StaffWidth(28, 52))

	// Wider ranges never give narrower staves.
	prev := StaffWidth(40, 44)
	for low, high := 39, 45; low >= 1 && high <= 88; low, high = low-1, high+1 {
		w := StaffWidth(low, high)
		assert.GreaterOrEqual(t, w, prev, "range %d..%d", low, high)
		prev = w
	}
}

func TestMeasureLine_StaffRanges(t *testing.T) {
	s := testutil.NewScore().Grid(4, 4, 2).Staff("upper").Staff("lower").
		Right(0, 256, 52).
		Note(1, 0, 256, 30, score.HandLeft).
		DrawScale(1).
		Build()
	doc := engrave(t, s)

	staves := doc.Lines()[0].Staves
	require.Len(t, staves, 2)

	assert.Equal(t, "upper", staves[0].Name)
	assert.Equal(t, 40, staves[0].MinPitch)
	assert.Equal(t, 52, staves[0].MaxPitch)
	assert.Equal(t, StaffWidth(40, 52), staves[0].WidthMM)

	assert.Equal(t, 30, staves[1].MinPitch)
	assert.Equal(t, 44, staves[1].MaxPitch)
	assert.Equal(t, StaffWidth(30, 44), staves[1].WidthMM)

	assert.Equal(t, staves[0].WidthMM+staves[1].WidthMM, doc.Lines()[0].WidthMM)
}

func TestMeasureLine_OverrideWidensRange(t *testing.T) {
	s := testutil.NewScore().Grid(4, 4, 2).Staff("piano").Right(0, 256, 42).Build()
	s.LineBreaks[0].StaffRanges = []score.StaffRange{{Staff: 0, Lowest: 28, Highest: 52}}
	doc := engrave(t, s)

	st := doc.Lines()[0].Staves[0]
	assert.Equal(t, 28, st.MinPitch)
	assert.Equal(t, 52, st.MaxPitch)
	assert.InDelta(t, 102*score.DefaultDrawScale, st.WidthMM, 1e-9)
}

func TestMeasureLine_ScaleMarginsAndHidden(t *testing.T) {
	s := testutil.NewScore().Grid(4, 4, 1).Staff("a").Staff("b").
		Margins(0, 2, 3).
		Margins(1, 10, 10).
		Hidden(1).
		DrawScale(1).
		Edit(func(s *score.Score) { s.Staves[0].Scale = 2 }).
		Build()
	doc := engrave(t, s)

	l := doc.Lines()[0]
	assert.Equal(t, 36.0, l.Staves[0].WidthMM)
	assert.True(t, l.Staves[1].Hidden)
	assert.Zero(t, l.Staves[1].WidthMM)
	assert.Equal(t, 36.0+2+3, l.WidthMM)
}

func TestPack(t *testing.T) {
	lines := []Line{{Index: 0, WidthMM: 80}, {Index: 1, WidthMM: 80}, {Index: 2, WidthMM: 80}}
	pages := Pack(lines, 180)

	require.Len(t, pages, 2)

	assert.Equal(t, []int{0, 1}, []int{pages[0].Lines[0].Index, pages[0].Lines[1].Index})
	assert.Equal(t, 160.0, pages[0].UsedMM)
	assert.Equal(t, 20.0, pages[0].LeftoverMM)
	assert.False(t, pages[0].Overflow)

	require.Len(t, pages[1].Lines, 1)
	assert.Equal(t, 2, pages[1].Lines[0].Index)
	assert.Equal(t, 80.0, pages[1].UsedMM)
	assert.Equal(t, 100.0, pages[1].LeftoverMM)
	assert.Equal(t, 1, pages[1].Index)
}

func TestPack_ExactFit(t *testing.T) {
	pages := Pack([]Line{{WidthMM: 60}, {WidthMM: 60}, {WidthMM: 60}}, 180)
	require.Len(t, pages, 1)
	assert.Zero(t, pages[0].LeftoverMM)
}

func TestPack_OversizedLine(t *testing.T) {
	pages := Pack([]Line{{WidthMM: 50}, {WidthMM: 250}, {WidthMM: 50}}, 180)
	require.Len(t, pages, 3)

	assert.False(t, pages[0].Overflow)
	assert.True(t, pages[1].Overflow)
	assert.Zero(t, pages[1].LeftoverMM)
	assert.Equal(t, 250.0, pages[1].UsedMM)
	assert.Equal(t, 130.0, pages[2].LeftoverMM)
}

func TestPack_Empty(t *testing.T) {
	assert.Empty(t, Pack(nil, 180))
}

func TestEngrave_PagesUsePrintWidth(t *testing.T) {
	// Each staff of range 40..44 is 18mm wide at unit scale.
	b := testutil.NewScore().Grid(4, 4, 4).Staff("piano").DrawScale(1).Margins(0, 1, 1).Page(50, 5, 5)
	b.LineBreaks(0, 1024, 2048, 3072)
	doc := engrave(t, b.Build())

	// Budget 40mm, lines 20mm: two lines per page.
	require.Len(t, doc.Pages, 2)
	for _, p := range doc.Pages {
		assert.Len(t, p.Lines, 2)
		assert.Equal(t, 40.0, p.UsedMM)
		assert.Zero(t, p.LeftoverMM)
	}
	assert.Equal(t, 40.0, doc.PrintWidthMM)
}
