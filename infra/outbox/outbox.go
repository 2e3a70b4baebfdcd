// Package outbox is the durable handoff between the matching path and
// the trade broadcaster. Every fill batch is written here in the same
// synchronous step that produced it; the broadcaster drains pending
// entries to Kafka with at-least-once semantics and marks progress back.
package outbox

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
)

type State uint8

const (
	StateNew State = iota
	StateSent
	StateAcked
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateSent:
		return "SENT"
	case StateAcked:
		return "ACKED"
	default:
		return "UNKNOWN"
	}
}

// Entry is one pending trade event keyed by command sequence.
type Entry struct {
	Seq         uint64
	State       State
	Retries     uint32
	LastAttempt int64
	Payload     []byte
}

// value encoding: [state:1][retries:4][lastAttempt:8][payload...]
func encodeValue(e *Entry) []byte {
	buf := make([]byte, 1+4+8+len(e.Payload))
	buf[0] = byte(e.State)
	binary.BigEndian.PutUint32(buf[1:5], e.Retries)
	binary.BigEndian.PutUint64(buf[5:13], uint64(e.LastAttempt))
	copy(buf[13:], e.Payload)
	return buf
}

func decodeValue(seq uint64, b []byte) (*Entry, error) {
	if len(b) < 13 {
		return nil, errors.New("outbox: short entry")
	}
	payload := make([]byte, len(b)-13)
	copy(payload, b[13:])
	return &Entry{
		Seq:         seq,
		State:       State(b[0]),
		Retries:     binary.BigEndian.Uint32(b[1:5]),
		LastAttempt: int64(binary.BigEndian.Uint64(b[5:13])),
		Payload:     payload,
	}, nil
}

type Outbox struct {
	db *pebble.DB
}

func Open(dir string) (*Outbox, error) {
	db, err := pebble.Open(dir, &pebble.Options{
		DisableWAL: false,
	})
	if err != nil {
		return nil, err
	}
	return &Outbox{db: db}, nil
}

func (o *Outbox) Close() error {
	return o.db.Close()
}

// Put records a new pending event. Called on the matching path, so the
// write is synced: a fill the caller saw acknowledged survives a crash.
func (o *Outbox) Put(seq uint64, payload []byte) error {
	e := &Entry{Seq: seq, State: StateNew, Payload: payload}
	return o.db.Set(keyFor(seq), encodeValue(e), pebble.Sync)
}

// MarkSent transitions an entry to SENT and bumps its retry counter.
func (o *Outbox) MarkSent(seq uint64) error {
	return o.transition(seq, StateSent, true)
}

// MarkAcked transitions an entry to ACKED after the broker confirmed it.
func (o *Outbox) MarkAcked(seq uint64) error {
	return o.transition(seq, StateAcked, false)
}

func (o *Outbox) transition(seq uint64, to State, bumpRetry bool) error {
	e, err := o.Get(seq)
	if err != nil {
		return err
	}
	e.State = to
	e.LastAttempt = time.Now().UnixNano()
	if bumpRetry {
		e.Retries++
	}
	return o.db.Set(keyFor(seq), encodeValue(e), pebble.Sync)
}

func (o *Outbox) Get(seq uint64) (*Entry, error) {
	val, closer, err := o.db.Get(keyFor(seq))
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return decodeValue(seq, val)
}

func (o *Outbox) Delete(seq uint64) error {
	return o.db.Delete(keyFor(seq), pebble.Sync)
}

// ScanPending visits every entry not yet ACKED, in sequence order. SENT
// entries are included: a publish that died between MarkSent and
// MarkAcked is retried on the next sweep.
func (o *Outbox) ScanPending(fn func(*Entry) error) error {
	return o.scan(func(e *Entry) error {
		if e.State == StateAcked {
			return nil
		}
		return fn(e)
	})
}

// PurgeAcked removes delivered entries. Run periodically, off the hot
// path.
func (o *Outbox) PurgeAcked() (int, error) {
	var seqs []uint64
	err := o.scan(func(e *Entry) error {
		if e.State == StateAcked {
			seqs = append(seqs, e.Seq)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	for _, seq := range seqs {
		if err := o.Delete(seq); err != nil {
			return 0, err
		}
	}
	return len(seqs), nil
}

func (o *Outbox) scan(fn func(*Entry) error) error {
	iter, err := o.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: []byte(keyPrefix + "~"),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		seq, err := parseKey(iter.Key())
		if err != nil {
			return err
		}
		e, err := decodeValue(seq, iter.Value())
		if err != nil {
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return iter.Error()
}

const keyPrefix = "fill/"

func keyFor(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", keyPrefix, seq))
}

func parseKey(b []byte) (uint64, error) {
	var seq uint64
	_, err := fmt.Sscanf(string(bytes.TrimPrefix(b, []byte(keyPrefix))), "%d", &seq)
	return seq, err
}
