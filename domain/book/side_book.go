package book

// SideBook is one half of the book: the sorted set of price levels on a
// single side. "Best" is the maximum price for bids and the minimum for
// asks; WalkBest iterates from best to worst.
type SideBook struct {
	Side Side

	tree *RBTree
}

func NewSideBook(side Side) *SideBook {
	return &SideBook{Side: side, tree: NewRBTree()}
}

// Levels reports the number of distinct price levels.
func (b *SideBook) Levels() int {
	return b.tree.Len()
}

// Level returns the level at price, nil when absent.
func (b *SideBook) Level(price int64) *PriceLevel {
	return b.tree.Get(price)
}

// GetOrCreate returns the level at price, creating it when absent.
func (b *SideBook) GetOrCreate(price int64) *PriceLevel {
	return b.tree.GetOrCreate(price)
}

// Remove erases the level at price.
func (b *SideBook) Remove(price int64) bool {
	return b.tree.Delete(price)
}

// Best returns the top-of-book level, nil when the side is empty.
func (b *SideBook) Best() *PriceLevel {
	if b.Side == Bid {
		return b.tree.Max()
	}
	return b.tree.Min()
}

// WalkBest visits levels best-first until fn returns false.
func (b *SideBook) WalkBest(fn func(*PriceLevel) bool) {
	if b.Side == Bid {
		b.tree.Descend(fn)
	} else {
		b.tree.Ascend(fn)
	}
}
