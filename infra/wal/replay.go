package wal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

type ReplayHandler func(*Record) error

// Replay feeds every record to fn in log order and returns the highest
// sequence seen. Sequences must be strictly increasing across segments;
// a repeated or decreasing sequence means the log is damaged and replay
// aborts. Gaps are not checked, so a log whose head was truncated after a
// snapshot replays from its first remaining record.
func Replay(dir string, fn ReplayHandler) (uint64, error) {
	segs, err := listSegments(dir)
	if err != nil {
		return 0, err
	}

	var last uint64
	for _, path := range segs {
		err := scanSegment(path, func(rec *Record) error {
			if rec.Seq <= last {
				return fmt.Errorf("wal: non-monotonic seq %d after %d", rec.Seq, last)
			}
			last = rec.Seq
			return fn(rec)
		})
		if err != nil {
			return last, err
		}
	}
	return last, nil
}

// scanSegment decodes one segment front to back, stopping cleanly at a
// torn tail.
func scanSegment(path string, fn func(*Record) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	frames := newFrameReader(f)
	for {
		rec, err := frames.next()
		if err != nil {
			if errors.Is(err, errSegmentEnd) {
				return nil
			}
			return fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}

// segmentMaxSeq returns the highest sequence in one segment. Truncation
// uses it, and only trusts segments that decode cleanly end to end.
func segmentMaxSeq(path string) (uint64, error) {
	var max uint64
	err := scanSegment(path, func(rec *Record) error {
		if rec.Seq > max {
			max = rec.Seq
		}
		return nil
	})
	return max, err
}

func listSegments(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "segment-*.wal"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
