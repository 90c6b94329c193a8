package book

import "fmt"

// Order is the identity and mutable state of one resting or incoming
// order. prev/next are the intrusive neighbor handles used by the Limit
// it currently rests in; they are meaningful only while Status == Active
// and the order is linked into a Limit's queue.
type Order struct {
	ID            uint64
	AgentID       uint64
	Side          Side
	Price         uint32
	InitialVolume uint64
	Volume        uint64
	Status        OrderStatus

	prev *Order
	next *Order
}

// fill reduces the order's remaining volume by v. v must be positive and
// no larger than the order's current volume — violating that is a
// programmer error (mismatched fill accounting upstream), so it panics
// rather than returning an error.
func (o *Order) fill(v uint64) {
	if v == 0 || v > o.Volume {
		panic(LogicError{Msg: fmt.Sprintf(
			"order %d: fill(%d) exceeds remaining volume %d", o.ID, v, o.Volume)})
	}
	o.Volume -= v
	if o.Volume == 0 {
		o.Status = Fulfilled
	}
}

func (o *Order) isFulfilled() bool {
	return o.Volume == 0
}
