package snapshot

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"time"

	"bulkbook/domain/book"
)

type Writer struct {
	Dir string
}

// Write dumps all resting orders reachable from eng at sequence seq. The
// file is written to a temp name and renamed so a crash never leaves a
// half snapshot behind. The caller holds the command gate for the
// duration.
func (w *Writer) Write(seq uint64, eng *book.Engine) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return err
	}

	s := Snapshot{
		Seq:     seq,
		Created: time.Now(),
		Orders:  make([]OrderEntry, 0, eng.Resting()),
	}
	for _, side := range []book.Side{book.Bid, book.Ask} {
		eng.Walk(side, func(o *book.Order) bool {
			s.Orders = append(s.Orders, OrderEntry{
				ID:    o.ID,
				Side:  uint8(o.Side),
				Price: o.Price,
				Qty:   o.Qty,
			})
			return true
		})
	}

	tmp := filepath.Join(w.Dir, "snapshot.bin.tmp")
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(f).Encode(&s); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, filepath.Join(w.Dir, "snapshot.bin"))
}
