package engraver

import "sync/atomic"

// idClock hands out task ids.
//
// Ids are strictly increasing in acceptance order, so a larger id always
// means a newer edit. The first id is 1; 0 means "no task".
type idClock struct {
	seq atomic.Int64
}

// Next returns the next id.
func (c *idClock) Next() TaskID {
	return TaskID(c.seq.Add(1))
}

