package testutil

import "github.com/roach88/engraver/internal/score"

// ScoreBuilder assembles scores for tests.
//
// Ids are assigned from a counter starting at 1 in call order, so the
// same sequence of builder calls always yields the same ids.
type ScoreBuilder struct {
	s      *score.Score
	nextID int64
}

// NewScore starts a score with default properties, no grid and one line.
func NewScore() *ScoreBuilder {
	return &ScoreBuilder{s: score.New()}
}

func (b *ScoreBuilder) id() int64 {
	b.nextID++
	return b.nextID
}

// LastID returns the id assigned by the most recent call.
func (b *ScoreBuilder) LastID() int64 {
	return b.nextID
}

// Grid appends a grid group.
func (b *ScoreBuilder) Grid(numerator, denominator, measures int) *ScoreBuilder {
	b.s.Grid = append(b.s.Grid, score.GridGroup{
		Numerator:    numerator,
		Denominator:  denominator,
		MeasureCount: measures,
	})
	return b
}

// GridTimes sets explicit gridline offsets on the last grid group.
func (b *ScoreBuilder) GridTimes(offsets ...float64) *ScoreBuilder {
	b.s.Grid[len(b.s.Grid)-1].GridTimes = offsets
	return b
}

// Staff appends a visible staff with unit scale and no margins.
func (b *ScoreBuilder) Staff(name string) *ScoreBuilder {
	b.s.Staves = append(b.s.Staves, score.Stave{Name: name, Scale: 1})
	return b
}

// Margins sets the margins of staff i.
func (b *ScoreBuilder) Margins(i int, left, right float64) *ScoreBuilder {
	b.s.Staves[i].MarginLeftMM = left
	b.s.Staves[i].MarginRightMM = right
	return b
}

// Hidden hides staff i.
func (b *ScoreBuilder) Hidden(i int) *ScoreBuilder {
	b.s.Staves[i].Hidden = true
	return b
}

// Note adds a note to staff i.
func (b *ScoreBuilder) Note(i int, time, duration float64, pitch int, hand score.Hand) *ScoreBuilder {
	b.s.Staves[i].Notes = append(b.s.Staves[i].Notes, score.Note{
		ID:       b.id(),
		Time:     time,
		Duration: duration,
		Pitch:    pitch,
		Hand:     hand,
	})
	return b
}

// Right adds a right-hand note to staff 0.
func (b *ScoreBuilder) Right(time, duration float64, pitch int) *ScoreBuilder {
	return b.Note(0, time, duration, pitch, score.HandRight)
}

// Left adds a left-hand note to staff 0.
func (b *ScoreBuilder) Left(time, duration float64, pitch int) *ScoreBuilder {
	return b.Note(0, time, duration, pitch, score.HandLeft)
}

// Beam adds a beam to staff i.
func (b *ScoreBuilder) Beam(i int, time, duration float64, hand score.Hand) *ScoreBuilder {
	b.s.Staves[i].Beams = append(b.s.Staves[i].Beams, score.Beam{
		ID:       b.id(),
		Time:     time,
		Duration: duration,
		Hand:     hand,
	})
	return b
}

// Text adds a text annotation to staff i.
func (b *ScoreBuilder) Text(i int, time float64, text string) *ScoreBuilder {
	b.s.Staves[i].Texts = append(b.s.Staves[i].Texts, score.Text{
		ID:   b.id(),
		Time: time,
		Side: score.SideLeft,
		Text: text,
	})
	return b
}

// Repeat adds a repeat sign to staff i.
func (b *ScoreBuilder) Repeat(i int, time float64, kind score.RepeatKind) *ScoreBuilder {
	b.s.Staves[i].Repeats = append(b.s.Staves[i].Repeats, score.Repeat{
		ID:   b.id(),
		Time: time,
		Kind: kind,
	})
	return b
}

// LineBreaks replaces the line breaks with markers at the given times.
func (b *ScoreBuilder) LineBreaks(times ...float64) *ScoreBuilder {
	b.s.LineBreaks = b.s.LineBreaks[:0]
	for _, t := range times {
		b.s.LineBreaks = append(b.s.LineBreaks, score.LineBreak{ID: b.id(), Time: t})
	}
	return b
}

// Page sets the page width and horizontal margins.
func (b *ScoreBuilder) Page(width, marginLeft, marginRight float64) *ScoreBuilder {
	b.s.Properties.Page.WidthMM = width
	b.s.Properties.Page.MarginLeftMM = marginLeft
	b.s.Properties.Page.MarginRightMM = marginRight
	return b
}

// DrawScale sets the global draw scale.
func (b *ScoreBuilder) DrawScale(scale float64) *ScoreBuilder {
	b.s.Properties.DrawScale = scale
	return b
}

// Edit applies fn to the score under construction.
func (b *ScoreBuilder) Edit(fn func(s *score.Score)) *ScoreBuilder {
	fn(b.s)
	return b
}

// Build returns the score. Later builder calls keep modifying it.
func (b *ScoreBuilder) Build() *score.Score {
	return b.s
}

// Piece returns a small two-staff score over eight 4/4 measures that
// touches every event kind. Tests use it where content matters less than
// coverage.
func Piece() *score.Score {
	b := NewScore().Grid(4, 4, 4).Grid(3, 4, 4).Staff("upper").Staff("lower")
	b.Right(0, 256, 52).Right(0, 256, 56).Right(256, 512, 59).Right(960, 256, 47)
	b.Left(0, 1024, 28).Left(1024, 768, 35)
	b.Note(1, 0, 2048, 16, score.HandLeft).Note(1, 2048, 1536, 21, score.HandLeft)
	b.Beam(0, 0, 512, score.HandRight)
	b.Text(0, 0, "dolce").Repeat(0, 0, score.RepeatStart).Repeat(0, 3072, score.RepeatEnd)
	b.Edit(func(s *score.Score) {
		st := &s.Staves[0]
		st.GraceNotes = append(st.GraceNotes, score.GraceNote{ID: 900, Time: 1024, Pitch: 54, Hand: score.HandRight})
		st.Slurs = append(st.Slurs, score.Slur{ID: 901, Time: 0, Points: []score.SlurPoint{
			{Offset: 12, Time: 0}, {Offset: 14, Time: 128}, {Offset: 18, Time: 384}, {Offset: 19, Time: 768},
		}})
		st.Tempos = append(st.Tempos, score.Tempo{ID: 902, Time: 0, BPM: 96})
		st.CountLines = append(st.CountLines, score.CountLine{ID: 903, Time: 2048, Pitch1: 40, Pitch2: 44})
		st.Sections = append(st.Sections, score.Section{ID: 904, Time: 2048, Text: "B"})
	})
	b.LineBreaks(0, 2048, 3328)
	return b.Build()
}
