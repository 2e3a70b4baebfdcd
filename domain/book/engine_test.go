package book

import "testing"

func checked(t *testing.T, e *Engine) {
	t.Helper()
	if err := e.CheckInvariants(); err != nil {
		t.Fatalf("invariant violation: %v", err)
	}
}

func mustPlace(t *testing.T, e *Engine, side Side, price, qty int64, id uint64) {
	t.Helper()
	if err := e.PlaceLimit(side, price, qty, id); err != nil {
		t.Fatalf("PlaceLimit(%v, %d, %d, %d): %v", side, price, qty, id, err)
	}
	checked(t, e)
}

func expectFills(t *testing.T, got []Fill, want []Fill) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d fills, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("fill %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestBasicMatch(t *testing.T) {
	e := NewEngine()
	mustPlace(t, e, Bid, 100, 10, 1)

	fills, residual, err := e.ExecuteMarket(Ask, 4)
	if err != nil {
		t.Fatal(err)
	}
	checked(t, e)

	expectFills(t, fills, []Fill{{MakerID: 1, Price: 100, Qty: 4}})
	if residual != 0 {
		t.Errorf("residual = %d, want 0", residual)
	}
	price, qty, ok := e.BestBid()
	if !ok || price != 100 || qty != 6 {
		t.Errorf("best bid = (%d, %d, %v), want (100, 6, true)", price, qty, ok)
	}
}

func TestFIFOWithinLevel(t *testing.T) {
	e := NewEngine()
	mustPlace(t, e, Bid, 100, 5, 1)
	mustPlace(t, e, Bid, 100, 5, 2)

	fills, residual, err := e.ExecuteMarket(Ask, 7)
	if err != nil {
		t.Fatal(err)
	}
	checked(t, e)

	expectFills(t, fills, []Fill{
		{MakerID: 1, Price: 100, Qty: 5},
		{MakerID: 2, Price: 100, Qty: 2},
	})
	if residual != 0 {
		t.Errorf("residual = %d, want 0", residual)
	}
	if e.Resting() != 1 {
		t.Fatalf("resting = %d, want 1", e.Resting())
	}
	_, qty, _ := e.BestBid()
	if qty != 3 {
		t.Errorf("remaining qty = %d, want 3", qty)
	}
}

func TestSweepAcrossLevels(t *testing.T) {
	e := NewEngine()
	mustPlace(t, e, Ask, 100, 2, 10)
	mustPlace(t, e, Ask, 101, 2, 11)
	mustPlace(t, e, Ask, 102, 2, 12)

	fills, residual, err := e.ExecuteMarket(Bid, 5)
	if err != nil {
		t.Fatal(err)
	}
	checked(t, e)

	expectFills(t, fills, []Fill{
		{MakerID: 10, Price: 100, Qty: 2},
		{MakerID: 11, Price: 101, Qty: 2},
		{MakerID: 12, Price: 102, Qty: 1},
	})
	if residual != 0 {
		t.Errorf("residual = %d, want 0", residual)
	}
	price, qty, ok := e.BestAsk()
	if !ok || price != 102 || qty != 1 {
		t.Errorf("best ask = (%d, %d, %v), want (102, 1, true)", price, qty, ok)
	}
}

func TestOversizedMarket(t *testing.T) {
	e := NewEngine()
	mustPlace(t, e, Ask, 100, 2, 10)
	mustPlace(t, e, Ask, 101, 2, 11)
	mustPlace(t, e, Ask, 102, 2, 12)

	fills, residual, err := e.ExecuteMarket(Bid, 100)
	if err != nil {
		t.Fatal(err)
	}
	checked(t, e)

	expectFills(t, fills, []Fill{
		{MakerID: 10, Price: 100, Qty: 2},
		{MakerID: 11, Price: 101, Qty: 2},
		{MakerID: 12, Price: 102, Qty: 2},
	})
	if residual != 94 {
		t.Errorf("residual = %d, want 94", residual)
	}
	if _, _, ok := e.BestAsk(); ok {
		t.Error("ask side should be empty")
	}
	if e.Resting() != 0 {
		t.Errorf("resting = %d, want 0", e.Resting())
	}
}

func TestCancelThenMatch(t *testing.T) {
	e := NewEngine()
	mustPlace(t, e, Bid, 100, 5, 1)
	mustPlace(t, e, Bid, 100, 5, 2)

	residual, err := e.Cancel(1)
	if err != nil {
		t.Fatal(err)
	}
	if residual != 5 {
		t.Errorf("cancelled residual = %d, want 5", residual)
	}
	checked(t, e)

	fills, _, err := e.ExecuteMarket(Ask, 3)
	if err != nil {
		t.Fatal(err)
	}
	checked(t, e)

	expectFills(t, fills, []Fill{{MakerID: 2, Price: 100, Qty: 3}})
	if _, err := e.Cancel(1); err != ErrUnknownOrderID {
		t.Errorf("cancel of gone id: got %v, want ErrUnknownOrderID", err)
	}
}

func TestDuplicateIDRejected(t *testing.T) {
	e := NewEngine()
	mustPlace(t, e, Bid, 100, 1, 7)

	if err := e.PlaceLimit(Bid, 101, 1, 7); err != ErrDuplicateOrderID {
		t.Fatalf("got %v, want ErrDuplicateOrderID", err)
	}
	checked(t, e)

	if e.Resting() != 1 {
		t.Errorf("resting = %d, want 1", e.Resting())
	}
	price, _, _ := e.BestBid()
	if price != 100 {
		t.Errorf("best bid price = %d, want 100", price)
	}
}

func TestMarketAgainstEmptyBook(t *testing.T) {
	e := NewEngine()
	mustPlace(t, e, Bid, 100, 5, 1)

	fills, residual, err := e.ExecuteMarket(Bid, 5) // consumes asks, none rest
	if err != nil {
		t.Fatal(err)
	}
	checked(t, e)

	if len(fills) != 0 {
		t.Errorf("got %d fills, want 0", len(fills))
	}
	if residual != 5 {
		t.Errorf("residual = %d, want 5", residual)
	}
	if e.Resting() != 1 {
		t.Error("book should be unchanged")
	}
}

func TestExactFillRemovesHead(t *testing.T) {
	e := NewEngine()
	mustPlace(t, e, Ask, 100, 5, 1)

	fills, residual, err := e.ExecuteMarket(Bid, 5)
	if err != nil {
		t.Fatal(err)
	}
	checked(t, e)

	expectFills(t, fills, []Fill{{MakerID: 1, Price: 100, Qty: 5}})
	if residual != 0 {
		t.Errorf("residual = %d, want 0", residual)
	}
	if _, _, ok := e.BestAsk(); ok {
		t.Error("level should have been removed on exact fill")
	}
}

func TestInvalidInputs(t *testing.T) {
	e := NewEngine()

	if err := e.PlaceLimit(Bid, 0, 5, 1); err != ErrInvalidPrice {
		t.Errorf("zero price: got %v", err)
	}
	if err := e.PlaceLimit(Bid, 100, 0, 1); err != ErrInvalidQuantity {
		t.Errorf("zero qty: got %v", err)
	}
	if err := e.PlaceLimit(Bid, 100, 5, 0); err != ErrInvalidOrderID {
		t.Errorf("zero id: got %v", err)
	}
	if _, _, err := e.ExecuteMarket(Bid, 0); err != ErrInvalidQuantity {
		t.Errorf("zero market qty: got %v", err)
	}
	if _, err := e.Cancel(42); err != ErrUnknownOrderID {
		t.Errorf("unknown cancel: got %v", err)
	}
	checked(t, e)
	if e.Resting() != 0 || e.store.Len() != 0 {
		t.Error("failed operations must leave no trace")
	}
}

// Limit orders are makers only: a bid above the best ask still rests
// without matching.
func TestLimitsNeverCross(t *testing.T) {
	e := NewEngine()
	mustPlace(t, e, Ask, 100, 5, 1)
	mustPlace(t, e, Bid, 110, 5, 2)

	bid, _, _ := e.BestBid()
	ask, _, _ := e.BestAsk()
	if bid != 110 || ask != 100 {
		t.Errorf("crossed book should rest as-is, got bid=%d ask=%d", bid, ask)
	}
	if e.Resting() != 2 {
		t.Errorf("resting = %d, want 2", e.Resting())
	}
}

// Place-then-cancel leaves the book exactly as it was, including arena
// slot reuse.
func TestPlaceCancelIdempotence(t *testing.T) {
	e := NewEngine()
	mustPlace(t, e, Bid, 100, 5, 1)
	mustPlace(t, e, Ask, 105, 3, 2)

	mustPlace(t, e, Bid, 99, 7, 3)
	if _, err := e.Cancel(3); err != nil {
		t.Fatal(err)
	}
	checked(t, e)

	if e.Resting() != 2 || e.store.Len() != 2 {
		t.Errorf("resting=%d live=%d, want 2/2", e.Resting(), e.store.Len())
	}
	if lvl := e.bids.Level(99); lvl != nil {
		t.Error("level 99 should have been removed")
	}
}

// Conservation: placed == cancelled + traded + still resting.
func TestQuantityConservation(t *testing.T) {
	e := NewEngine()

	var placed, cancelled, traded int64

	place := func(side Side, price, qty int64, id uint64) {
		mustPlace(t, e, side, price, qty, id)
		placed += qty
	}

	place(Bid, 100, 10, 1)
	place(Bid, 99, 20, 2)
	place(Bid, 100, 5, 3)
	place(Ask, 105, 8, 4)
	place(Ask, 106, 12, 5)

	r, err := e.Cancel(2)
	if err != nil {
		t.Fatal(err)
	}
	cancelled += r

	fills, _, err := e.ExecuteMarket(Ask, 12)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range fills {
		traded += f.Qty
	}
	fills, _, err = e.ExecuteMarket(Bid, 9)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range fills {
		traded += f.Qty
	}
	checked(t, e)

	resting := int64(0)
	for _, side := range []Side{Bid, Ask} {
		e.Walk(side, func(o *Order) bool {
			resting += o.Qty
			return true
		})
	}

	if placed != cancelled+traded+resting {
		t.Errorf("conservation broken: placed=%d cancelled=%d traded=%d resting=%d",
			placed, cancelled, traded, resting)
	}
}

// Market residual law: full fill iff opposite aggregate covers the order.
func TestMarketResidualLaw(t *testing.T) {
	e := NewEngine()
	mustPlace(t, e, Ask, 100, 4, 1)
	mustPlace(t, e, Ask, 101, 6, 2)

	_, residual, err := e.ExecuteMarket(Bid, 10)
	if err != nil {
		t.Fatal(err)
	}
	if residual != 0 {
		t.Errorf("aggregate == qty: residual = %d, want 0", residual)
	}

	mustPlace(t, e, Ask, 100, 3, 3)
	_, residual, err = e.ExecuteMarket(Bid, 10)
	if err != nil {
		t.Fatal(err)
	}
	if residual != 7 {
		t.Errorf("residual = %d, want 7", residual)
	}
	if _, _, ok := e.BestAsk(); ok {
		t.Error("ask side should be exhausted")
	}
	checked(t, e)
}

func TestDepth(t *testing.T) {
	e := NewEngine()
	mustPlace(t, e, Bid, 100, 5, 1)
	mustPlace(t, e, Bid, 99, 3, 2)
	mustPlace(t, e, Bid, 98, 8, 3)
	mustPlace(t, e, Bid, 100, 2, 4)

	depth := e.Depth(Bid, 2)
	if len(depth) != 2 {
		t.Fatalf("got %d levels, want 2", len(depth))
	}
	if depth[0] != (LevelQuote{Price: 100, Qty: 7}) {
		t.Errorf("depth[0] = %+v", depth[0])
	}
	if depth[1] != (LevelQuote{Price: 99, Qty: 3}) {
		t.Errorf("depth[1] = %+v", depth[1])
	}

	if got := e.Depth(Ask, 5); len(got) != 0 {
		t.Errorf("empty side depth = %v, want none", got)
	}
}

// Ids are unique across both sides simultaneously.
func TestIDUniqueAcrossSides(t *testing.T) {
	e := NewEngine()
	mustPlace(t, e, Bid, 100, 5, 1)
	if err := e.PlaceLimit(Ask, 200, 5, 1); err != ErrDuplicateOrderID {
		t.Fatalf("got %v, want ErrDuplicateOrderID", err)
	}
}

// An id freed by a full fill may be reused by a later placement.
func TestIDReuseAfterFill(t *testing.T) {
	e := NewEngine()
	mustPlace(t, e, Ask, 100, 5, 1)
	if _, _, err := e.ExecuteMarket(Bid, 5); err != nil {
		t.Fatal(err)
	}
	mustPlace(t, e, Bid, 90, 2, 1)
}

func TestPartialFillKeepsPriority(t *testing.T) {
	e := NewEngine()
	mustPlace(t, e, Bid, 100, 10, 1)
	mustPlace(t, e, Bid, 100, 10, 2)

	// Partially consume id=1; it must stay ahead of id=2.
	if _, _, err := e.ExecuteMarket(Ask, 4); err != nil {
		t.Fatal(err)
	}
	fills, _, err := e.ExecuteMarket(Ask, 8)
	if err != nil {
		t.Fatal(err)
	}
	checked(t, e)

	expectFills(t, fills, []Fill{
		{MakerID: 1, Price: 100, Qty: 6},
		{MakerID: 2, Price: 100, Qty: 2},
	})
}
