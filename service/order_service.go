package service

import (
	"log/slog"
	"sync"

	"bulkbook/api/wire"
	"bulkbook/domain/book"
	"bulkbook/infra/memory"
	"bulkbook/infra/outbox"
	"bulkbook/infra/sequence"
	"bulkbook/infra/wal"
	"bulkbook/snapshot"
)

// OrderService is the only entry point into the engine. The core is
// single-threaded by contract; this is the dispatcher that serialises
// every command and query in front of it, assigns sequence numbers,
// writes the WAL, and hands fills to the outbox and the event ring.
//
// Commands are applied first and logged second: the WAL therefore holds
// exactly the commands that succeeded, and replay re-applies them
// without special cases.
type OrderService struct {
	mu sync.Mutex

	engine *book.Engine
	seq    *sequence.Sequencer
	wal    *wal.WAL
	out    *outbox.Outbox // nil disables trade publishing
	ring   *memory.Ring   // nil disables the live feed
	log    *slog.Logger

	bufs *memory.Pool[[]byte]
}

func New(
	engine *book.Engine,
	seq *sequence.Sequencer,
	w *wal.WAL,
	out *outbox.Outbox,
	ring *memory.Ring,
	log *slog.Logger,
) *OrderService {
	return &OrderService{
		engine: engine,
		seq:    seq,
		wal:    w,
		out:    out,
		ring:   ring,
		log:    log,
		bufs: memory.NewPool(func() *[]byte {
			b := make([]byte, 0, 64)
			return &b
		}),
	}
}

// PlaceLimit rests a limit order and returns its command sequence.
func (s *OrderService) PlaceLimit(side book.Side, price, qty int64, id uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.engine.PlaceLimit(side, price, qty, id); err != nil {
		return 0, err
	}

	seq := s.seq.Next()
	buf := s.bufs.Get()
	s.append(wal.NewRecord(wal.RecordPlace, seq, encodePlace((*buf)[:0], side, price, qty, id)))
	s.bufs.Put(buf)
	return seq, nil
}

// Cancel removes a resting order and returns the cancelled residual.
func (s *OrderService) Cancel(id uint64) (uint64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	residual, err := s.engine.Cancel(id)
	if err != nil {
		return 0, 0, err
	}

	seq := s.seq.Next()
	buf := s.bufs.Get()
	s.append(wal.NewRecord(wal.RecordCancel, seq, encodeCancel((*buf)[:0], id)))
	s.bufs.Put(buf)
	return seq, residual, nil
}

// ExecuteMarket matches a market order and returns its fills and the
// unfilled residual.
func (s *OrderService) ExecuteMarket(taker book.Side, qty int64) (uint64, []book.Fill, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fills, residual, err := s.engine.ExecuteMarket(taker, qty)
	if err != nil {
		return 0, nil, 0, err
	}

	seq := s.seq.Next()
	buf := s.bufs.Get()
	s.append(wal.NewRecord(wal.RecordMarket, seq, encodeMarket((*buf)[:0], taker, qty)))
	s.bufs.Put(buf)

	if len(fills) > 0 {
		s.publish(seq, taker, fills)
	}
	return seq, fills, residual, nil
}

func (s *OrderService) append(rec *wal.Record) {
	if s.wal == nil {
		return
	}
	if err := s.wal.Append(rec); err != nil {
		s.log.Error("wal append failed", "seq", rec.Seq, "err", err)
	}
}

func (s *OrderService) publish(seq uint64, taker book.Side, fills []book.Fill) {
	ev := &wire.FillEvent{Seq: seq, Taker: taker, Fills: fills}

	if s.out != nil {
		if err := s.out.Put(seq, wire.AppendFillEvent(nil, ev)); err != nil {
			s.log.Error("outbox put failed", "seq", seq, "err", err)
		}
	}
	if s.ring != nil && !s.ring.Enqueue(ev) {
		s.log.Warn("event ring full, dropping live fill event", "seq", seq)
	}
}

// ---- queries ----

func (s *OrderService) BestBid() (price, qty int64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.BestBid()
}

func (s *OrderService) BestAsk() (price, qty int64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.BestAsk()
}

func (s *OrderService) Depth(side book.Side, n int) []book.LevelQuote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Depth(side, n)
}

func (s *OrderService) Resting() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Resting()
}

// Sequence returns the last applied command sequence.
func (s *OrderService) Sequence() uint64 {
	return s.seq.Current()
}

// TakeSnapshot persists the current book under the command gate and
// returns the sequence the snapshot covers.
func (s *OrderService) TakeSnapshot(w *snapshot.Writer) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq := s.seq.Current()
	if err := w.Write(seq, s.engine); err != nil {
		return 0, err
	}
	return seq, nil
}

// TruncateWAL drops WAL segments fully covered by a snapshot sequence.
func (s *OrderService) TruncateWAL(seq uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wal == nil {
		return nil
	}
	return s.wal.TruncateBefore(seq)
}
