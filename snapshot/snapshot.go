// Package snapshot persists the set of resting orders so a restart does
// not have to replay the whole WAL. Orders are stored in best-first FIFO
// order; re-placing them in file order reproduces the book's priority
// exactly, and the WAL suffix past Seq brings it current.
package snapshot

import "time"

type Snapshot struct {
	Seq     uint64
	Created time.Time
	Orders  []OrderEntry
}

type OrderEntry struct {
	ID    uint64
	Side  uint8
	Price int64
	Qty   int64
}
