package score

// Default property values, matching an A4 portrait page.
const (
	DefaultQuarterTick = 256.0
	DefaultDrawScale   = 0.75

	// MiddleC is the piano key number of C4.
	MiddleC = 40

	// LowestKey and HighestKey bound the 88-key piano range.
	LowestKey  = 1
	HighestKey = 88
)

// Hand marks which hand plays a note.
type Hand string

const (
	// HandLeft is written "<" in score files.
	HandLeft Hand = "<"
	// HandRight is written ">" in score files.
	HandRight Hand = ">"
)

// Valid reports whether h is one of the two known hands.
func (h Hand) Valid() bool {
	return h == HandLeft || h == HandRight
}

// Side marks the side of the staff a text annotation is attached to.
type Side string

const (
	SideLeft  Side = "<"
	SideRight Side = ">"
)

// Score is the complete editable document.
type Score struct {
	Properties Properties  `yaml:"properties" json:"properties"`
	Grid       []GridGroup `yaml:"grid" json:"grid"`
	LineBreaks []LineBreak `yaml:"line_breaks" json:"line_breaks"`
	Staves     []Stave     `yaml:"staves" json:"staves"`
}

// Properties holds global dimensions.
type Properties struct {
	// QuarterTick is the number of ticks in one quarter note.
	QuarterTick float64 `yaml:"quarter_tick" json:"quarter_tick"`

	// DrawScale scales every staff width.
	DrawScale float64 `yaml:"draw_scale" json:"draw_scale"`

	Page Page `yaml:"page" json:"page"`
}

// Page describes the printable sheet in millimeters.
type Page struct {
	WidthMM        float64 `yaml:"width_mm" json:"width_mm"`
	HeightMM       float64 `yaml:"height_mm" json:"height_mm"`
	MarginLeftMM   float64 `yaml:"margin_left_mm" json:"margin_left_mm"`
	MarginRightMM  float64 `yaml:"margin_right_mm" json:"margin_right_mm"`
	MarginTopMM    float64 `yaml:"margin_top_mm" json:"margin_top_mm"`
	MarginBottomMM float64 `yaml:"margin_bottom_mm" json:"margin_bottom_mm"`
}

// PrintWidthMM is the horizontal space available for lines.
func (p Page) PrintWidthMM() float64 {
	return p.WidthMM - p.MarginLeftMM - p.MarginRightMM
}

// GridGroup is a run of measures sharing one time signature.
type GridGroup struct {
	Numerator    int `yaml:"numerator" json:"numerator"`
	Denominator  int `yaml:"denominator" json:"denominator"`
	MeasureCount int `yaml:"measure_count" json:"measure_count"`

	// GridTimes are gridline offsets inside a measure. When empty the
	// gridlines fall on every beat.
	GridTimes []float64 `yaml:"grid_times,omitempty" json:"grid_times,omitempty"`

	// HideTimeSignature suppresses drawing of the time signature. The
	// timesignature event is still emitted.
	HideTimeSignature bool `yaml:"hide_time_signature,omitempty" json:"hide_time_signature,omitempty"`
}

// MeasureLength returns the length of one measure in ticks.
func (g GridGroup) MeasureLength(quarterTick float64) float64 {
	if g.Denominator == 0 {
		return 0
	}
	return float64(g.Numerator) * (quarterTick * 4) / float64(g.Denominator)
}

// LineBreak starts a new line at Time.
type LineBreak struct {
	ID   int64   `yaml:"id" json:"id"`
	Time float64 `yaml:"time" json:"time"`

	// StaffRanges widen the automatic pitch range of individual staves on
	// the line that starts here.
	StaffRanges []StaffRange `yaml:"staff_ranges,omitempty" json:"staff_ranges,omitempty"`
}

// StaffRange is a manual pitch range for one staff. Zero keys mean automatic.
type StaffRange struct {
	Staff   int `yaml:"staff" json:"staff"`
	Lowest  int `yaml:"lowest" json:"lowest"`
	Highest int `yaml:"highest" json:"highest"`
}

// Stave is one staff of the score with all events attached to it.
type Stave struct {
	Name          string  `yaml:"name" json:"name"`
	Hidden        bool    `yaml:"hidden,omitempty" json:"hidden,omitempty"`
	Scale         float64 `yaml:"scale" json:"scale"`
	MarginLeftMM  float64 `yaml:"margin_left_mm" json:"margin_left_mm"`
	MarginRightMM float64 `yaml:"margin_right_mm" json:"margin_right_mm"`

	Notes      []Note      `yaml:"notes,omitempty" json:"notes,omitempty"`
	GraceNotes []GraceNote `yaml:"grace_notes,omitempty" json:"grace_notes,omitempty"`
	Beams      []Beam      `yaml:"beams,omitempty" json:"beams,omitempty"`
	Slurs      []Slur      `yaml:"slurs,omitempty" json:"slurs,omitempty"`
	Texts      []Text      `yaml:"texts,omitempty" json:"texts,omitempty"`
	Tempos     []Tempo     `yaml:"tempos,omitempty" json:"tempos,omitempty"`
	CountLines []CountLine `yaml:"count_lines,omitempty" json:"count_lines,omitempty"`
	Sections   []Section   `yaml:"sections,omitempty" json:"sections,omitempty"`
	Repeats    []Repeat    `yaml:"repeats,omitempty" json:"repeats,omitempty"`
}

// Note is a sounding key.
type Note struct {
	ID       int64   `yaml:"id" json:"id"`
	Time     float64 `yaml:"time" json:"time"`
	Duration float64 `yaml:"duration" json:"duration"`
	Pitch    int     `yaml:"pitch" json:"pitch"`
	Hand     Hand    `yaml:"hand" json:"hand"`
	Velocity int     `yaml:"velocity,omitempty" json:"velocity,omitempty"`
}

// End returns the release time of the note.
func (n Note) End() float64 {
	return n.Time + n.Duration
}

// GraceNote is an ornamental note without duration.
type GraceNote struct {
	ID    int64   `yaml:"id" json:"id"`
	Time  float64 `yaml:"time" json:"time"`
	Pitch int     `yaml:"pitch" json:"pitch"`
	Hand  Hand    `yaml:"hand" json:"hand"`
}

// Beam groups the notes of one hand whose onset falls in [Time, Time+Duration).
type Beam struct {
	ID       int64   `yaml:"id" json:"id"`
	Time     float64 `yaml:"time" json:"time"`
	Duration float64 `yaml:"duration" json:"duration"`
	Hand     Hand    `yaml:"hand" json:"hand"`
}

// SlurPoint is one control point of a slur curve.
type SlurPoint struct {
	// Offset is the horizontal position in semitones from middle C.
	Offset float64 `yaml:"offset" json:"offset"`
	Time   float64 `yaml:"time" json:"time"`
}

// Slur is a bezier curve defined by control points.
type Slur struct {
	ID     int64       `yaml:"id" json:"id"`
	Time   float64     `yaml:"time" json:"time"`
	Points []SlurPoint `yaml:"points" json:"points"`
}

// Text is a free annotation next to the staff.
type Text struct {
	ID         int64   `yaml:"id" json:"id"`
	Time       float64 `yaml:"time" json:"time"`
	Side       Side    `yaml:"side" json:"side"`
	DistanceMM float64 `yaml:"distance_mm" json:"distance_mm"`
	Text       string  `yaml:"text" json:"text"`
}

// Tempo changes the playback speed from Time onwards.
type Tempo struct {
	ID   int64   `yaml:"id" json:"id"`
	Time float64 `yaml:"time" json:"time"`
	BPM  float64 `yaml:"bpm" json:"bpm"`
}

// CountLine is a helper line between two keys.
type CountLine struct {
	ID     int64   `yaml:"id" json:"id"`
	Time   float64 `yaml:"time" json:"time"`
	Pitch1 int     `yaml:"pitch1" json:"pitch1"`
	Pitch2 int     `yaml:"pitch2" json:"pitch2"`
}

// Section marks the start of a named part.
type Section struct {
	ID   int64   `yaml:"id" json:"id"`
	Time float64 `yaml:"time" json:"time"`
	Text string  `yaml:"text" json:"text"`
}

// RepeatKind distinguishes start and end repeat signs.
type RepeatKind string

const (
	RepeatStart RepeatKind = "start"
	RepeatEnd   RepeatKind = "end"
)

// Repeat is a repeat sign.
type Repeat struct {
	ID   int64      `yaml:"id" json:"id"`
	Time float64    `yaml:"time" json:"time"`
	Kind RepeatKind `yaml:"kind" json:"kind"`
}

// New returns an empty score with default properties and a single
// automatic line.
func New() *Score {
	return &Score{
		Properties: DefaultProperties(),
		LineBreaks: []LineBreak{{Time: 0}},
	}
}

// DefaultProperties returns A4 portrait dimensions.
func DefaultProperties() Properties {
	return Properties{
		QuarterTick: DefaultQuarterTick,
		DrawScale:   DefaultDrawScale,
		Page: Page{
			WidthMM:        210,
			HeightMM:       297,
			MarginLeftMM:   5,
			MarginRightMM:  5,
			MarginTopMM:    10,
			MarginBottomMM: 10,
		},
	}
}

// Length returns the total length of the score in ticks.
func (s *Score) Length() float64 {
	var total float64
	for _, g := range s.Grid {
		if g.MeasureCount > 0 {
			total += g.MeasureLength(s.Properties.QuarterTick) * float64(g.MeasureCount)
		}
	}
	return total
}

// EventCount returns the number of source events across all staves.
func (s *Score) EventCount() int {
	n := 0
	for _, st := range s.Staves {
		n += len(st.Notes) + len(st.GraceNotes) + len(st.Beams) + len(st.Slurs) +
			len(st.Texts) + len(st.Tempos) + len(st.CountLines) + len(st.Sections) + len(st.Repeats)
	}
	return n
}
