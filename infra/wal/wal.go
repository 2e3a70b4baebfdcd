// Package wal is the segmented entry log: every accepted command is
// framed, checksummed and appended here before the caller sees its
// acknowledgement. Replay re-applies the log in sequence order;
// TruncateBefore drops segments fully covered by a snapshot.
package wal

import (
	"fmt"
	"os"
	"path/filepath"
)

type Config struct {
	Dir         string
	SegmentSize int64
}

type WAL struct {
	dir      string
	segSize  int64
	current  *segment
	segIndex int
}

func Open(cfg Config) (*WAL, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, err
	}

	// Continue the highest existing segment so a restart appends
	// instead of clobbering.
	index := 0
	if segs, err := listSegments(cfg.Dir); err == nil && len(segs) > 0 {
		_, _ = fmt.Sscanf(filepath.Base(segs[len(segs)-1]), "segment-%06d.wal", &index)
	}

	seg, err := openSegment(cfg.Dir, index)
	if err != nil {
		return nil, err
	}

	return &WAL{
		dir:      cfg.Dir,
		segSize:  cfg.SegmentSize,
		current:  seg,
		segIndex: index,
	}, nil
}

// Append frames r (see frame.go for the layout) and writes it to the
// current segment, rotating when the segment is full.
func (w *WAL) Append(r *Record) error {
	if err := w.current.append(appendFrame(nil, r)); err != nil {
		return err
	}
	if w.current.offset >= w.segSize {
		return w.rotate()
	}
	return nil
}

func (w *WAL) rotate() error {
	_ = w.current.close()
	w.segIndex++

	seg, err := openSegment(w.dir, w.segIndex)
	if err != nil {
		return err
	}
	w.current = seg
	return nil
}

// Sync flushes the current segment to stable storage.
func (w *WAL) Sync() error {
	return w.current.sync()
}

func (w *WAL) Close() error {
	return w.current.close()
}

// TruncateBefore removes segments whose records are all covered by seq.
// The current segment is never removed.
func (w *WAL) TruncateBefore(seq uint64) error {
	segs, err := listSegments(w.dir)
	if err != nil {
		return err
	}

	for _, path := range segs {
		if path == w.current.file.Name() {
			continue
		}
		maxSeq, err := segmentMaxSeq(path)
		if err != nil {
			continue
		}
		if maxSeq <= seq {
			_ = os.Remove(path)
		}
	}
	return nil
}
