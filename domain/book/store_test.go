package book

import "testing"

func TestStoreAllocGet(t *testing.T) {
	s := NewOrderStore()
	h := s.Alloc(Order{ID: 1, Price: 100, Qty: 5})

	o := s.Get(h)
	if o.ID != 1 || o.Price != 100 || o.Qty != 5 {
		t.Errorf("got %+v", *o)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestStoreFreeListReuse(t *testing.T) {
	s := NewOrderStore()
	h1 := s.Alloc(Order{ID: 1})
	h2 := s.Alloc(Order{ID: 2})

	s.Free(h1)
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}

	h3 := s.Alloc(Order{ID: 3})
	if h3 != h1 {
		t.Errorf("freed slot not reused: got %d, want %d", h3, h1)
	}
	if s.Get(h3).ID != 3 {
		t.Error("recycled slot kept stale record")
	}
	if s.Get(h2).ID != 2 {
		t.Error("unrelated record disturbed by reuse")
	}
}

func TestStorePointerStabilityAcrossGrowth(t *testing.T) {
	s := NewOrderStore()
	h0 := s.Alloc(Order{ID: 42})
	p0 := s.Get(h0)

	// Force allocation past the first page.
	for i := 0; i < pageSize+10; i++ {
		s.Alloc(Order{ID: uint64(i + 100)})
	}

	if s.Get(h0) != p0 {
		t.Fatal("record moved when the arena grew")
	}
	if p0.ID != 42 {
		t.Errorf("record corrupted: %+v", *p0)
	}
}

func TestStoreFreeOrderIsLIFO(t *testing.T) {
	s := NewOrderStore()
	a := s.Alloc(Order{ID: 1})
	b := s.Alloc(Order{ID: 2})
	s.Free(a)
	s.Free(b)

	if got := s.Alloc(Order{ID: 3}); got != b {
		t.Errorf("expected most recently freed slot %d, got %d", b, got)
	}
	if got := s.Alloc(Order{ID: 4}); got != a {
		t.Errorf("expected slot %d next, got %d", a, got)
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
}
