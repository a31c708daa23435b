package layout

import (
	"fmt"

	"github.com/roach88/engraver/internal/score"
)

// Kind identifies the variant of an Event.
type Kind int

const (
	KindBarline Kind = iota + 1
	KindGridline
	KindTimeSignature
	KindNote
	KindNoteSplit
	KindBeam
	KindSlur
	KindText
	KindTempo
	KindGraceNote
	KindCountLine
	KindSection
	KindRepeat
	KindContinuationDot
	KindStopSign
	KindConnectStem
)

var kindNames = map[Kind]string{
	KindBarline:         "barline",
	KindGridline:        "gridline",
	KindTimeSignature:   "timesignature",
	KindNote:            "note",
	KindNoteSplit:       "notesplit",
	KindBeam:            "beam",
	KindSlur:            "slur",
	KindText:            "text",
	KindTempo:           "tempo",
	KindGraceNote:       "gracenote",
	KindCountLine:       "countline",
	KindSection:         "section",
	KindRepeat:          "repeat",
	KindContinuationDot: "continuation_dot",
	KindStopSign:        "stop_sign",
	KindConnectStem:     "connect_stem",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText encodes the kind by name so documents stay readable.
func (k Kind) MarshalText() ([]byte, error) {
	name, ok := kindNames[k]
	if !ok {
		return nil, fmt.Errorf("unknown event kind %d", int(k))
	}
	return []byte(name), nil
}

// priority orders events that share a time. Lower draws first.
func (k Kind) priority() int {
	switch k {
	case KindBarline:
		return 0
	case KindTimeSignature:
		return 1
	case KindGridline:
		return 2
	case KindNote, KindNoteSplit:
		return 3
	case KindConnectStem:
		return 4
	case KindBeam:
		return 5
	case KindContinuationDot, KindStopSign:
		return 6
	default:
		return 7
	}
}

// NoStaff is the staff index of events that span the whole system.
const NoStaff = -1

// Base carries the fields every event has.
type Base struct {
	Kind Kind    `json:"type"`
	Time float64 `json:"time"`

	// Ref is the id of the source entity, or 0 for synthetic events.
	Ref   int64 `json:"id,omitempty"`
	Staff int   `json:"staff"`
}

// Meta returns the common fields.
func (b Base) Meta() Base { return b }

func (Base) sealed() {}

// Event is one element of a laid out line.
//
// The set of variants is closed: only types in this package embed Base,
// and consumers switch on the concrete type.
type Event interface {
	Meta() Base
	sealed()
}

// Barline marks a measure boundary. The final barline of the score has End set.
type Barline struct {
	Base
	Measure int  `json:"measure"`
	End     bool `json:"end,omitempty"`
}

// Gridline marks a subdivision inside a measure.
type Gridline struct {
	Base
}

// TimeSignature announces a new meter.
type TimeSignature struct {
	Base
	Numerator   int  `json:"numerator"`
	Denominator int  `json:"denominator"`
	Visible     bool `json:"visible"`
}

// Note is a note segment. Kind is KindNote for the first segment of a
// source note and KindNoteSplit for each continuation after a barline.
type Note struct {
	Base
	Pitch    int        `json:"pitch"`
	Hand     score.Hand `json:"hand"`
	Duration float64    `json:"duration"`
	Velocity int        `json:"velocity,omitempty"`
}

// End returns the time the segment stops sounding.
func (n Note) End() float64 { return n.Time + n.Duration }

// Beam groups member notes of one hand.
type Beam struct {
	Base
	Hand     score.Hand `json:"hand"`
	Duration float64    `json:"duration"`
	Members  []int64    `json:"members"`
}

// Slur is a curve through control points.
type Slur struct {
	Base
	Points []score.SlurPoint `json:"points"`
}

// Text is an annotation.
type Text struct {
	Base
	Side       score.Side `json:"side"`
	DistanceMM float64    `json:"distance_mm"`
	Text       string     `json:"text"`
}

// Tempo is a tempo marker.
type Tempo struct {
	Base
	BPM float64 `json:"bpm"`
}

// GraceNote is an ornamental note.
type GraceNote struct {
	Base
	Pitch int        `json:"pitch"`
	Hand  score.Hand `json:"hand"`
}

// CountLine is a helper line between two keys.
type CountLine struct {
	Base
	Pitch1 int `json:"pitch1"`
	Pitch2 int `json:"pitch2"`
}

// Section starts a named part.
type Section struct {
	Base
	Text string `json:"text"`
}

// Repeat is a repeat sign. End repeats are placed just before their
// stored time so they close the preceding line.
type Repeat struct {
	Base
	End bool `json:"end"`
}

// ContinuationDot shows that the note Ref is still sounding at Time.
type ContinuationDot struct {
	Base
	Pitch int        `json:"pitch"`
	Hand  score.Hand `json:"hand"`
}

// StopSign marks the release of note Ref into a rest.
type StopSign struct {
	Base
	Pitch int        `json:"pitch"`
	Hand  score.Hand `json:"hand"`
}

// ConnectStem joins a chord of simultaneous onsets from Low to High.
type ConnectStem struct {
	Base
	Hand score.Hand `json:"hand"`
	Low  int        `json:"low"`
	High int        `json:"high"`
}

// pitchOf returns the sort pitch of pitched events, 0 otherwise.
func pitchOf(e Event) int {
	switch v := e.(type) {
	case Note:
		return v.Pitch
	case GraceNote:
		return v.Pitch
	case ContinuationDot:
		return v.Pitch
	case StopSign:
		return v.Pitch
	case ConnectStem:
		return v.Low
	case CountLine:
		return v.Pitch1
	default:
		return 0
	}
}
