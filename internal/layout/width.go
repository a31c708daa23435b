package layout

import "github.com/roach88/engraver/internal/score"

// PitchUnitMM is the horizontal distance between adjacent keys.
const PitchUnitMM = 3.0

// Keys a staff always covers: the two-black-key group around middle C.
const (
	staffCoreLow  = score.MiddleC
	staffCoreHigh = 44
)

// Extension from a key to the outer edge of its key group, indexed by the
// key's position in the octave (1 = A, 4 = C, 9 = F).
var (
	lowEdge  = [13]int{1: -4, 2: -5, 3: -6, 4: 0, 5: -1, 6: -2, 7: -3, 8: -4, 9: 0, 10: -1, 11: -2, 12: -3}
	highEdge = [13]int{1: 2, 2: 1, 3: 0, 4: 4, 5: 3, 6: 2, 7: 1, 8: 0, 9: 6, 10: 5, 11: 4, 12: 3}
)

func octavePos(key int) int {
	return ((key - 1) % 12) + 1
}

// StaffWidth returns the unscaled width in millimeters of a staff drawn for
// the key range [low, high]. The range is widened to the core keys and to
// whole key groups, and C and F keys take a double unit because they start
// a new group of staff lines. A zero range has no width.
func StaffWidth(low, high int) float64 {
	if low == 0 && high == 0 {
		return 0
	}
	low, high = min(low, staffCoreLow), max(high, staffCoreHigh)
	low = max(low+lowEdge[octavePos(low)], score.LowestKey)
	high = min(high+highEdge[octavePos(high)], score.HighestKey)

	var width float64
	for n := low - 1; n <= high; n++ {
		if p := octavePos(n); (p == 4 || p == 9) && n != low {
			width += PitchUnitMM * 2
		} else {
			width += PitchUnitMM
		}
	}
	return width
}
