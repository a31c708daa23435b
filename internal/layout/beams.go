package layout

import "sort"

// beams emits each explicit beam with the ids of the notes it groups.
// Beams are never inferred.
func (r *run) beams() error {
	for si, st := range r.s.Staves {
		for _, b := range st.Beams {
			switch {
			case !positive(b.Duration):
				return newError(PassBeams, ErrCodeInvalidBeam, "beam duration must be positive, got %g", b.Duration).at(si, b.ID)
			case !b.Hand.Valid():
				return newError(PassBeams, ErrCodeInvalidBeam, "unknown hand %q", b.Hand).at(si, b.ID)
			case !r.inRange(b.Time):
				return r.outOfRange(PassBeams, "beam", b.Time, si, b.ID)
			}

			members := make([]sourceNote, 0)
			for _, n := range r.sources {
				if n.staff != si || n.Hand != b.Hand {
					continue
				}
				if n.Time >= b.Time-Epsilon && n.Time < b.Time+b.Duration-Epsilon {
					members = append(members, n)
				}
			}
			sort.SliceStable(members, func(i, j int) bool {
				if members[i].Time != members[j].Time {
					return members[i].Time < members[j].Time
				}
				if members[i].Pitch != members[j].Pitch {
					return members[i].Pitch < members[j].Pitch
				}
				return members[i].ID < members[j].ID
			})

			ids := make([]int64, len(members))
			for i, m := range members {
				ids[i] = m.ID
			}
			r.emit(Beam{
				Base:     Base{Kind: KindBeam, Time: b.Time, Ref: b.ID, Staff: si},
				Hand:     b.Hand,
				Duration: b.Duration,
				Members:  ids,
			})
		}
	}
	return nil
}
