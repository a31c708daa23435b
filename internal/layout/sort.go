package layout

import "sort"

// sortEvents orders all events by time, breaking ties by kind priority and
// then by staff, pitch and source id. The result does not depend on the
// order in which earlier passes emitted events, except for events that are
// equal in every key.
func (r *run) sortEvents() error {
	sort.SliceStable(r.events, func(i, j int) bool {
		return lessEvent(r.events[i], r.events[j])
	})
	return nil
}

func lessEvent(a, b Event) bool {
	ma, mb := a.Meta(), b.Meta()
	if ma.Time != mb.Time {
		return ma.Time < mb.Time
	}
	if pa, pb := ma.Kind.priority(), mb.Kind.priority(); pa != pb {
		return pa < pb
	}
	if ma.Kind != mb.Kind {
		return ma.Kind < mb.Kind
	}
	if ma.Staff != mb.Staff {
		return ma.Staff < mb.Staff
	}
	if pa, pb := pitchOf(a), pitchOf(b); pa != pb {
		return pa < pb
	}
	return ma.Ref < mb.Ref
}
