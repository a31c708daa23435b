package score

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleScore() *Score {
	s := New()
	s.Grid = []GridGroup{{Numerator: 4, Denominator: 4, MeasureCount: 2, GridTimes: []float64{256, 512, 768}}}
	s.LineBreaks = []LineBreak{{ID: 1, Time: 0, StaffRanges: []StaffRange{{Staff: 0, Lowest: 30, Highest: 50}}}}
	s.Staves = []Stave{{
		Name:       "piano",
		Scale:      1,
		Notes:      []Note{{ID: 2, Time: 0, Duration: 256, Pitch: 40, Hand: HandRight}},
		GraceNotes: []GraceNote{{ID: 3, Time: 128, Pitch: 42, Hand: HandRight}},
		Beams:      []Beam{{ID: 4, Time: 0, Duration: 512, Hand: HandRight}},
		Slurs:      []Slur{{ID: 5, Time: 0, Points: []SlurPoint{{0, 0}, {2, 64}, {4, 128}, {0, 256}}}},
		Texts:      []Text{{ID: 6, Time: 0, Side: SideLeft, Text: "dolce"}},
		Tempos:     []Tempo{{ID: 7, Time: 0, BPM: 120}},
		CountLines: []CountLine{{ID: 8, Time: 0, Pitch1: 40, Pitch2: 44}},
		Sections:   []Section{{ID: 9, Time: 0, Text: "A"}},
		Repeats:    []Repeat{{ID: 10, Time: 0, Kind: RepeatStart}},
	}}
	return s
}

func TestClone_DeepCopy(t *testing.T) {
	s := sampleScore()
	c := s.Clone()

	require.Equal(t, s, c)
	require.NoError(t, VerifyIsolated(s, c))

	// Mutating the clone must not leak into the original.
	c.Staves[0].Notes[0].Pitch = 60
	c.Staves[0].Slurs[0].Points[1].Offset = 99
	c.Grid[0].GridTimes[0] = 1
	c.LineBreaks[0].StaffRanges[0].Lowest = 1

	assert.Equal(t, 40, s.Staves[0].Notes[0].Pitch)
	assert.Equal(t, 2.0, s.Staves[0].Slurs[0].Points[1].Offset)
	assert.Equal(t, 256.0, s.Grid[0].GridTimes[0])
	assert.Equal(t, 30, s.LineBreaks[0].StaffRanges[0].Lowest)
}

func TestClone_Nil(t *testing.T) {
	var s *Score
	assert.Nil(t, s.Clone())
}

func TestVerifyIsolated_DetectsSharedStorage(t *testing.T) {
	tests := []struct {
		name  string
		alias func(live, snap *Score)
		path  string
	}{
		{"notes", func(l, s *Score) { s.Staves[0].Notes = l.Staves[0].Notes }, "staves[0].notes"},
		{"slur points", func(l, s *Score) { s.Staves[0].Slurs[0].Points = l.Staves[0].Slurs[0].Points }, "staves[0].slurs[0].points"},
		{"grid times", func(l, s *Score) { s.Grid[0].GridTimes = l.Grid[0].GridTimes }, "grid[0].grid_times"},
		{"staves", func(l, s *Score) { s.Staves = l.Staves }, "staves"},
		{"staff ranges", func(l, s *Score) { s.LineBreaks[0].StaffRanges = l.LineBreaks[0].StaffRanges }, "line_breaks[0].staff_ranges"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			live := sampleScore()
			snap := live.Clone()
			tt.alias(live, snap)

			err := VerifyIsolated(live, snap)
			require.Error(t, err)
			assert.True(t, IsIsolationError(err))

			var ie *IsolationError
			require.True(t, errors.As(err, &ie))
			assert.Equal(t, tt.path, ie.Path)
		})
	}
}

func TestVerifyIsolated_SamePointer(t *testing.T) {
	s := sampleScore()
	err := VerifyIsolated(s, s)
	require.Error(t, err)
	assert.True(t, IsIsolationError(err))
}

func TestIsIsolationError_Wrapped(t *testing.T) {
	err := fmt.Errorf("snapshot: %w", &IsolationError{Message: "boom"})
	assert.True(t, IsIsolationError(err))
	assert.False(t, IsIsolationError(errors.New("other")))
}

func TestScoreSnapshot(t *testing.T) {
	s := sampleScore()
	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, s, snap)
	assert.NotSame(t, s, snap)

	var nilScore *Score
	_, err = nilScore.Snapshot()
	assert.True(t, IsIsolationError(err))
}

func TestLength(t *testing.T) {
	s := New()
	s.Grid = []GridGroup{
		{Numerator: 4, Denominator: 4, MeasureCount: 2},
		{Numerator: 3, Denominator: 8, MeasureCount: 2},
		{Numerator: 5, Denominator: 4, MeasureCount: 0},
	}
	// 2*1024 + 2*384
	assert.Equal(t, 2816.0, s.Length())
}

func TestPrintWidth(t *testing.T) {
	assert.Equal(t, 200.0, DefaultProperties().Page.PrintWidthMM())
}

func TestLive_ConcurrentEditsAndSnapshots(t *testing.T) {
	live := NewLive(sampleScore())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				live.Update(func(s *Score) {
					s.Staves[0].Notes = append(s.Staves[0].Notes, Note{ID: int64(1000*i + j), Pitch: 40, Hand: HandLeft})
				})
			}
		}(i)
	}

	snaps := make(chan *Score, 100)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				snap, err := live.Snapshot()
				if err == nil {
					snaps <- snap
				}
			}
		}()
	}
	wg.Wait()
	close(snaps)

	count := 0
	for snap := range snaps {
		count++
		assert.GreaterOrEqual(t, len(snap.Staves[0].Notes), 1)
	}
	assert.Equal(t, 100, count)

	final, err := live.Snapshot()
	require.NoError(t, err)
	assert.Len(t, final.Staves[0].Notes, 1+8*50)
}

func TestLive_Replace(t *testing.T) {
	live := NewLive(nil)
	snap, err := live.Snapshot()
	require.NoError(t, err)
	assert.Empty(t, snap.Staves)

	live.Replace(sampleScore())
	snap, err = live.Snapshot()
	require.NoError(t, err)
	assert.Len(t, snap.Staves, 1)
}

func TestSourceFunc(t *testing.T) {
	want := errors.New("no score")
	var src Source = SourceFunc(func() (*Score, error) { return nil, want })
	_, err := src.Snapshot()
	assert.ErrorIs(t, err, want)
}

func TestHandValid(t *testing.T) {
	assert.True(t, HandLeft.Valid())
	assert.True(t, HandRight.Valid())
	assert.False(t, Hand("").Valid())
	assert.False(t, Hand("x").Valid())
}
