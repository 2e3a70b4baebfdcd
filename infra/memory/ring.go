package memory

import "sync/atomic"

// Ring is a lock-free SPSC ring buffer. The service (single producer)
// hands trade events to the websocket hub (single consumer) through it;
// a full ring drops the oldest-first contract to the producer, which
// simply skips the publish.
type Ring struct {
	head  uint64
	_pad1 [56]byte
	tail  uint64
	_pad2 [56]byte
	buf   []any
	mask  uint64
}

func NewRing(size uint64) *Ring {
	if size&(size-1) != 0 {
		panic("memory: Ring size must be a power of two")
	}
	return &Ring{
		buf:  make([]any, size),
		mask: size - 1,
	}
}

func (r *Ring) Enqueue(v any) bool {
	h := r.head
	t := atomic.LoadUint64(&r.tail)
	if h-t == uint64(len(r.buf)) {
		return false
	}
	r.buf[h&r.mask] = v
	atomic.StoreUint64(&r.head, h+1)
	return true
}

func (r *Ring) Dequeue() any {
	t := r.tail
	h := atomic.LoadUint64(&r.head)
	if t == h {
		return nil
	}
	v := r.buf[t&r.mask]
	r.buf[t&r.mask] = nil
	atomic.StoreUint64(&r.tail, t+1)
	return v
}
