package book

import "testing"

func levelChain(s *OrderStore, l *PriceLevel) []uint64 {
	var ids []uint64
	for h := l.Front(); h != NilHandle; h = s.Get(h).Next() {
		ids = append(ids, s.Get(h).ID)
	}
	return ids
}

func TestLevelPushBackFIFO(t *testing.T) {
	s := NewOrderStore()
	l := newPriceLevel(100)

	for id := uint64(1); id <= 3; id++ {
		l.PushBack(s, s.Alloc(Order{ID: id, Price: 100, Qty: int64(id)}))
	}

	ids := levelChain(s, l)
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 3 {
		t.Errorf("chain = %v, want [1 2 3]", ids)
	}
	if l.TotalQty != 6 || l.Count != 3 {
		t.Errorf("TotalQty=%d Count=%d, want 6/3", l.TotalQty, l.Count)
	}
}

func TestLevelUnlinkHead(t *testing.T) {
	s := NewOrderStore()
	l := newPriceLevel(100)
	var hs []Handle
	for id := uint64(1); id <= 3; id++ {
		h := s.Alloc(Order{ID: id, Price: 100, Qty: 2})
		l.PushBack(s, h)
		hs = append(hs, h)
	}

	l.Unlink(s, hs[0])
	if ids := levelChain(s, l); len(ids) != 2 || ids[0] != 2 || ids[1] != 3 {
		t.Errorf("chain = %v, want [2 3]", ids)
	}
	if l.TotalQty != 4 || l.Count != 2 {
		t.Errorf("TotalQty=%d Count=%d, want 4/2", l.TotalQty, l.Count)
	}
}

func TestLevelUnlinkMiddle(t *testing.T) {
	s := NewOrderStore()
	l := newPriceLevel(100)
	var hs []Handle
	for id := uint64(1); id <= 3; id++ {
		h := s.Alloc(Order{ID: id, Price: 100, Qty: 2})
		l.PushBack(s, h)
		hs = append(hs, h)
	}

	l.Unlink(s, hs[1])
	if ids := levelChain(s, l); len(ids) != 2 || ids[0] != 1 || ids[1] != 3 {
		t.Errorf("chain = %v, want [1 3]", ids)
	}
	// Neighbour links must be spliced on both directions.
	if s.Get(hs[2]).prev != hs[0] {
		t.Error("back-link not spliced")
	}
}

func TestLevelUnlinkTail(t *testing.T) {
	s := NewOrderStore()
	l := newPriceLevel(100)
	var hs []Handle
	for id := uint64(1); id <= 3; id++ {
		h := s.Alloc(Order{ID: id, Price: 100, Qty: 2})
		l.PushBack(s, h)
		hs = append(hs, h)
	}

	l.Unlink(s, hs[2])
	if l.tail != hs[1] {
		t.Error("tail not advanced")
	}
	if ids := levelChain(s, l); len(ids) != 2 || ids[1] != 2 {
		t.Errorf("chain = %v, want [1 2]", ids)
	}
}

func TestLevelUnlinkLast(t *testing.T) {
	s := NewOrderStore()
	l := newPriceLevel(100)
	h := s.Alloc(Order{ID: 1, Price: 100, Qty: 2})
	l.PushBack(s, h)

	l.Unlink(s, h)
	if !l.Empty() || l.tail != NilHandle {
		t.Error("level should be fully empty")
	}
	if l.TotalQty != 0 || l.Count != 0 {
		t.Errorf("TotalQty=%d Count=%d, want 0/0", l.TotalQty, l.Count)
	}
}

func TestLevelFrontEmpty(t *testing.T) {
	l := newPriceLevel(100)
	if l.Front() != NilHandle {
		t.Error("Front on empty level should be NilHandle")
	}
}
