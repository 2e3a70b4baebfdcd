package snapshot

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"bulkbook/domain/book"
)

// Load reads the snapshot in dir. A missing file is a fresh start, not
// an error: it returns (nil, nil).
func Load(dir string) (*Snapshot, error) {
	f, err := os.Open(filepath.Join(dir, "snapshot.bin"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var s Snapshot
	if err := gob.NewDecoder(f).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Seed replaces s's orders into a fresh engine, preserving FIFO priority
// through file order. The engine must be empty.
func Seed(eng *book.Engine, s *Snapshot) error {
	for _, o := range s.Orders {
		if err := eng.PlaceLimit(book.Side(o.Side), o.Price, o.Qty, o.ID); err != nil {
			return fmt.Errorf("snapshot: seed order %d: %w", o.ID, err)
		}
	}
	return nil
}
