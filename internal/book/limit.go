package book

import "fmt"

// Limit is the FIFO queue of resting orders at one price on one side.
// head is the oldest (highest priority) order; tail is the most recently
// inserted.
type Limit struct {
	Price       uint32
	Length      uint64
	TotalVolume uint64

	head *Order
	tail *Order
}

// insertOrder appends o at the tail, giving it the lowest priority at
// this price level.
func (l *Limit) insertOrder(o *Order) {
	if l.Length == 0 {
		l.head, l.tail = o, o
	} else {
		l.tail.next = o
		o.prev = l.tail
		l.tail = o
	}
	l.Length++
	l.TotalVolume += o.Volume
}

// deleteOrder unlinks o from the queue. o must currently be linked in
// this Limit. Four cases, each touching exactly the affected neighbors:
// sole member, head, tail, interior.
func (l *Limit) deleteOrder(o *Order) {
	if o.Price != l.Price || (o.prev == nil && o != l.head) || (o.next == nil && o != l.tail) {
		panic(LogicError{Msg: fmt.Sprintf(
			"order %d: not linked in limit at price %d", o.ID, l.Price)})
	}
	switch {
	case l.Length == 1:
		l.head, l.tail = nil, nil
	case o == l.head:
		l.head = o.next
		l.head.prev = nil
	case o == l.tail:
		l.tail = o.prev
		l.tail.next = nil
	default:
		o.prev.next = o.next
		o.next.prev = o.prev
	}
	o.prev, o.next = nil, nil
	if o.Status != Fulfilled {
		o.Status = Deleted
	}
	l.TotalVolume -= o.Volume
	l.Length--
}

// matchOrder consumes resting orders from head while the level is
// non-empty and incoming is not yet fulfilled, emitting one Trade per
// fill in FIFO-consumption order. A resting order that becomes fulfilled
// is unlinked from this queue; it is left to the caller (Book) to
// reclaim its pool slot and its id_to_order entry.
func (l *Limit) matchOrder(incoming *Order) []Trade {
	var trades []Trade
	for l.Length > 0 && !incoming.isFulfilled() {
		resting := l.head
		fillVolume := min(resting.Volume, incoming.Volume)
		resting.fill(fillVolume)
		incoming.fill(fillVolume)
		l.TotalVolume -= fillVolume
		trades = append(trades, Trade{
			AggressorID: incoming.ID,
			MatchedID:   resting.ID,
			Price:       l.Price,
			Volume:      fillVolume,
		})
		if resting.isFulfilled() {
			l.deleteOrder(resting)
		}
	}
	return trades
}

func (l *Limit) isEmpty() bool {
	return l.Length == 0
}
