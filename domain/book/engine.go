package book

import "fmt"

// Fill reports one maker execution produced by a market order.
type Fill struct {
	MakerID uint64
	Price   int64
	Qty     int64
}

// LevelQuote is an aggregated (price, quantity) pair for depth queries.
type LevelQuote struct {
	Price int64
	Qty   int64
}

// Engine composes the store, both side books and the id index behind the
// three public operations. Limit orders are makers only: a limit that
// would cross the opposite side still rests untouched, matching happens
// exclusively on the market path.
type Engine struct {
	bids  *SideBook
	asks  *SideBook
	store *OrderStore
	index *OrderIndex

	arrival uint64
}

func NewEngine() *Engine {
	return &Engine{
		bids:  NewSideBook(Bid),
		asks:  NewSideBook(Ask),
		store: NewOrderStore(),
		index: NewOrderIndex(),
	}
}

func (e *Engine) side(s Side) *SideBook {
	if s == Bid {
		return e.bids
	}
	return e.asks
}

// PlaceLimit rests a new limit order at the back of its price level. The
// order becomes the newest at that price; partial fills later on never
// reset that priority.
func (e *Engine) PlaceLimit(side Side, price, qty int64, id uint64) error {
	if price <= 0 {
		return ErrInvalidPrice
	}
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if id == 0 {
		return ErrInvalidOrderID
	}
	if e.index.Contains(id) {
		return ErrDuplicateOrderID
	}

	e.arrival++
	h := e.store.Alloc(Order{
		ID:    id,
		Side:  side,
		Price: price,
		Qty:   qty,
		Seq:   e.arrival,
	})

	lvl := e.side(side).GetOrCreate(price)
	lvl.PushBack(e.store, h)
	e.index.put(id, indexEntry{side: side, price: price, handle: h})
	return nil
}

// Cancel removes a resting order and returns its residual quantity.
func (e *Engine) Cancel(id uint64) (int64, error) {
	entry, ok := e.index.lookup(id)
	if !ok {
		return 0, ErrUnknownOrderID
	}

	sb := e.side(entry.side)
	lvl := sb.Level(entry.price)
	residual := e.store.Get(entry.handle).Qty

	lvl.Unlink(e.store, entry.handle)
	if lvl.Empty() {
		sb.Remove(entry.price)
	}
	e.store.Free(entry.handle)
	e.index.remove(id)
	return residual, nil
}

// ExecuteMarket consumes resting liquidity on the side opposite to the
// taker, best price first and oldest order first within a price, until
// qty is exhausted or the opposite side is empty. It returns the fills in
// exact consumption order plus the unfilled residual. An empty opposite
// book is not an error: zero fills, full residual.
func (e *Engine) ExecuteMarket(taker Side, qty int64) ([]Fill, int64, error) {
	if qty <= 0 {
		return nil, 0, ErrInvalidQuantity
	}

	opp := e.side(taker.Opposite())
	remaining := qty
	var fills []Fill

	for remaining > 0 {
		lvl := opp.Best()
		if lvl == nil {
			break
		}

		for remaining > 0 && lvl.Front() != NilHandle {
			h := lvl.Front()
			maker := e.store.Get(h)

			trade := maker.Qty
			if remaining < trade {
				trade = remaining
			}

			fills = append(fills, Fill{MakerID: maker.ID, Price: lvl.Price, Qty: trade})
			remaining -= trade
			maker.Qty -= trade
			lvl.TotalQty -= trade

			if maker.Qty == 0 {
				id := maker.ID
				lvl.Unlink(e.store, h)
				e.index.remove(id)
				e.store.Free(h)
			}
		}

		if lvl.Empty() {
			opp.Remove(lvl.Price)
		}
	}

	return fills, remaining, nil
}

// BestBid returns the highest resting bid price with its aggregate
// quantity.
func (e *Engine) BestBid() (price, qty int64, ok bool) {
	return bestOf(e.bids)
}

// BestAsk returns the lowest resting ask price with its aggregate
// quantity.
func (e *Engine) BestAsk() (price, qty int64, ok bool) {
	return bestOf(e.asks)
}

func bestOf(sb *SideBook) (int64, int64, bool) {
	lvl := sb.Best()
	if lvl == nil {
		return 0, 0, false
	}
	return lvl.Price, lvl.TotalQty, true
}

// Depth returns up to n (price, aggregate quantity) pairs best-first.
func (e *Engine) Depth(side Side, n int) []LevelQuote {
	if n <= 0 {
		return nil
	}
	quotes := make([]LevelQuote, 0, n)
	e.side(side).WalkBest(func(lvl *PriceLevel) bool {
		quotes = append(quotes, LevelQuote{Price: lvl.Price, Qty: lvl.TotalQty})
		return len(quotes) < n
	})
	return quotes
}

// Resting reports the number of resting orders across both sides.
func (e *Engine) Resting() int {
	return e.index.Len()
}

// Walk visits every resting order on one side, best level first and FIFO
// within each level. Orders must be treated as read-only.
func (e *Engine) Walk(side Side, fn func(*Order) bool) {
	e.side(side).WalkBest(func(lvl *PriceLevel) bool {
		for h := lvl.Front(); h != NilHandle; h = e.store.Get(h).Next() {
			if !fn(e.store.Get(h)) {
				return false
			}
		}
		return true
	})
}

// CheckInvariants walks the whole book and cross-checks it against the
// index and the per-level aggregates. A non-nil result is a programming
// error, not a caller error; tests fail hard on it.
func (e *Engine) CheckInvariants() error {
	reachable := 0
	for _, sb := range []*SideBook{e.bids, e.asks} {
		prev := int64(0)
		first := true
		var walkErr error

		sb.WalkBest(func(lvl *PriceLevel) bool {
			if !first {
				if sb.Side == Bid && lvl.Price >= prev {
					walkErr = fmt.Errorf("bid prices not strictly descending at %d", lvl.Price)
					return false
				}
				if sb.Side == Ask && lvl.Price <= prev {
					walkErr = fmt.Errorf("ask prices not strictly ascending at %d", lvl.Price)
					return false
				}
			}
			prev = lvl.Price
			first = false

			if lvl.Empty() || lvl.Count == 0 || lvl.TotalQty <= 0 {
				walkErr = fmt.Errorf("empty level %d left on %v side", lvl.Price, sb.Side)
				return false
			}

			sum := int64(0)
			count := 0
			lastSeq := uint64(0)
			back := NilHandle
			for h := lvl.Front(); h != NilHandle; h = e.store.Get(h).Next() {
				o := e.store.Get(h)
				if o.prev != back {
					walkErr = fmt.Errorf("broken back-link at order %d", o.ID)
					return false
				}
				if o.Qty <= 0 {
					walkErr = fmt.Errorf("non-positive quantity resting on order %d", o.ID)
					return false
				}
				if o.Seq <= lastSeq {
					walkErr = fmt.Errorf("arrival order violated at price %d", lvl.Price)
					return false
				}
				lastSeq = o.Seq

				entry, ok := e.index.lookup(o.ID)
				if !ok || entry.handle != h || entry.side != o.Side || entry.price != o.Price || o.Price != lvl.Price {
					walkErr = fmt.Errorf("index out of sync for order %d", o.ID)
					return false
				}

				sum += o.Qty
				count++
				back = h
				reachable++
			}
			if back != lvl.tail {
				walkErr = fmt.Errorf("tail mismatch at price %d", lvl.Price)
				return false
			}
			if sum != lvl.TotalQty || count != lvl.Count {
				walkErr = fmt.Errorf("aggregate mismatch at price %d: qty %d/%d count %d/%d",
					lvl.Price, sum, lvl.TotalQty, count, lvl.Count)
				return false
			}
			return true
		})
		if walkErr != nil {
			return walkErr
		}
	}

	if reachable != e.index.Len() {
		return fmt.Errorf("index holds %d ids, book reaches %d", e.index.Len(), reachable)
	}
	if reachable != e.store.Len() {
		return fmt.Errorf("store holds %d live records, book reaches %d", e.store.Len(), reachable)
	}
	return nil
}
