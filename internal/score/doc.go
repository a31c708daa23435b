// Package score defines the music score consumed by the engraver.
//
// A Score is an ordered set of staves on a shared time grid. Times are
// expressed in ticks, where Properties.QuarterTick ticks make one quarter
// note. Pitches are piano keys 1..88 with key 40 being middle C.
//
// The engraver never reads a live score directly. Callers hand it a Source,
// and the Source produces an isolated deep copy (a snapshot) that the layout
// worker can read without synchronization.
package score
