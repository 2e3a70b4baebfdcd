package service

import (
	"fmt"

	"bulkbook/domain/book"
	"bulkbook/infra/sequence"
	"bulkbook/infra/wal"
)

// Replay rebuilds engine state from the WAL and resets the sequencer to
// the last applied sequence. It must run before the service accepts
// traffic. Records at or below fromSeq (the snapshot sequence) are
// skipped; the snapshot loader has already restored them.
//
// The WAL holds only commands that succeeded, so any rejection during
// replay means the log and the snapshot disagree and the process must
// not come up.
func Replay(walDir string, fromSeq uint64, eng *book.Engine, seqGen *sequence.Sequencer) error {
	lastSeq, err := wal.Replay(walDir, func(rec *wal.Record) error {
		if rec.Seq <= fromSeq {
			return nil
		}
		return apply(eng, rec)
	})
	if err != nil {
		return err
	}

	if lastSeq < fromSeq {
		lastSeq = fromSeq
	}
	seqGen.Reset(lastSeq)
	return nil
}

func apply(eng *book.Engine, rec *wal.Record) error {
	switch rec.Type {
	case wal.RecordPlace:
		side, price, qty, id, err := decodePlace(rec.Data)
		if err != nil {
			return err
		}
		if err := eng.PlaceLimit(side, price, qty, id); err != nil {
			return fmt.Errorf("service: replay seq %d: %w", rec.Seq, err)
		}

	case wal.RecordCancel:
		id, err := decodeCancel(rec.Data)
		if err != nil {
			return err
		}
		if _, err := eng.Cancel(id); err != nil {
			return fmt.Errorf("service: replay seq %d: %w", rec.Seq, err)
		}

	case wal.RecordMarket:
		taker, qty, err := decodeMarket(rec.Data)
		if err != nil {
			return err
		}
		if _, _, err := eng.ExecuteMarket(taker, qty); err != nil {
			return fmt.Errorf("service: replay seq %d: %w", rec.Seq, err)
		}

	default:
		return fmt.Errorf("service: replay seq %d: unknown record type %d", rec.Seq, rec.Type)
	}
	return nil
}
