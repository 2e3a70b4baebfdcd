package book

// indexEntry locates a resting order without touching the book: the side
// and price find the level, the handle finds the record.
type indexEntry struct {
	side   Side
	price  int64
	handle Handle
}

// OrderIndex maps order id to its location for O(1) cancellation.
type OrderIndex struct {
	m map[uint64]indexEntry
}

func NewOrderIndex() *OrderIndex {
	return &OrderIndex{m: make(map[uint64]indexEntry)}
}

func (ix *OrderIndex) Len() int {
	return len(ix.m)
}

func (ix *OrderIndex) Contains(id uint64) bool {
	_, ok := ix.m[id]
	return ok
}

func (ix *OrderIndex) put(id uint64, e indexEntry) {
	ix.m[id] = e
}

func (ix *OrderIndex) lookup(id uint64) (indexEntry, bool) {
	e, ok := ix.m[id]
	return e, ok
}

func (ix *OrderIndex) remove(id uint64) {
	delete(ix.m, id)
}
