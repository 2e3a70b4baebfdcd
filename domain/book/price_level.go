package book

// PriceLevel is the FIFO queue of resting orders at one price. head and
// tail are arena handles; TotalQty aggregates the remaining quantity of
// the whole chain. All operations are O(1) and take the store explicitly,
// since the level owns the linkage but not the records.
type PriceLevel struct {
	Price int64

	head Handle
	tail Handle

	TotalQty int64
	Count    int
}

func newPriceLevel(price int64) *PriceLevel {
	return &PriceLevel{Price: price, head: NilHandle, tail: NilHandle}
}

// PushBack appends h as the newest order at this price.
func (l *PriceLevel) PushBack(s *OrderStore, h Handle) {
	o := s.Get(h)
	o.next = NilHandle
	o.prev = l.tail

	if l.tail == NilHandle {
		l.head = h
	} else {
		s.Get(l.tail).next = h
	}
	l.tail = h

	l.TotalQty += o.Qty
	l.Count++
}

// Unlink splices h out of the chain, advancing head/tail when h is an
// endpoint, and subtracts the order's remaining quantity from TotalQty.
func (l *PriceLevel) Unlink(s *OrderStore, h Handle) {
	o := s.Get(h)

	if o.prev != NilHandle {
		s.Get(o.prev).next = o.next
	} else {
		l.head = o.next
	}
	if o.next != NilHandle {
		s.Get(o.next).prev = o.prev
	} else {
		l.tail = o.prev
	}

	o.next = NilHandle
	o.prev = NilHandle

	l.TotalQty -= o.Qty
	l.Count--
}

// Front peeks the oldest order, NilHandle when empty.
func (l *PriceLevel) Front() Handle {
	return l.head
}

func (l *PriceLevel) Empty() bool {
	return l.head == NilHandle
}
