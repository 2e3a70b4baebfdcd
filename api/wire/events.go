// Package wire encodes the engine's outbound events in protobuf wire
// format. The messages are small and fixed, so the encoders are written
// directly against encoding/protowire instead of generated stubs; field
// numbers below are the schema and must never be renumbered.
package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"bulkbook/domain/book"
)

// FillEvent field numbers.
const (
	fillEvSeq   = 1
	fillEvTaker = 2
	fillEvFill  = 3

	fillMakerID = 1
	fillPrice   = 2
	fillQty     = 3
)

// DepthEvent field numbers.
const (
	depthEvSeq   = 1
	depthEvSide  = 2
	depthEvLevel = 3

	levelPrice = 1
	levelQty   = 2
)

// FillEvent reports the fills of one market execution.
type FillEvent struct {
	Seq   uint64
	Taker book.Side
	Fills []book.Fill
}

// DepthEvent is an aggregated top-of-book snapshot for one side.
type DepthEvent struct {
	Seq    uint64
	Side   book.Side
	Levels []book.LevelQuote
}

// AppendFillEvent appends the encoded event to b and returns the result.
func AppendFillEvent(b []byte, ev *FillEvent) []byte {
	b = protowire.AppendTag(b, fillEvSeq, protowire.VarintType)
	b = protowire.AppendVarint(b, ev.Seq)
	b = protowire.AppendTag(b, fillEvTaker, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(ev.Taker))
	for i := range ev.Fills {
		b = protowire.AppendTag(b, fillEvFill, protowire.BytesType)
		b = protowire.AppendBytes(b, appendFill(nil, &ev.Fills[i]))
	}
	return b
}

func appendFill(b []byte, f *book.Fill) []byte {
	b = protowire.AppendTag(b, fillMakerID, protowire.VarintType)
	b = protowire.AppendVarint(b, f.MakerID)
	b = protowire.AppendTag(b, fillPrice, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(f.Price))
	b = protowire.AppendTag(b, fillQty, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(f.Qty))
	return b
}

// DecodeFillEvent parses an event produced by AppendFillEvent. Unknown
// fields are skipped so older readers tolerate additions.
func DecodeFillEvent(b []byte) (*FillEvent, error) {
	ev := &FillEvent{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]

		switch {
		case num == fillEvSeq && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			ev.Seq = v
			b = b[n:]
		case num == fillEvTaker && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			ev.Taker = book.Side(v)
			b = b[n:]
		case num == fillEvFill && typ == protowire.BytesType:
			body, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			f, err := decodeFill(body)
			if err != nil {
				return nil, err
			}
			ev.Fills = append(ev.Fills, f)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return ev, nil
}

func decodeFill(b []byte) (book.Fill, error) {
	var f book.Fill
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return f, protowire.ParseError(n)
		}
		b = b[n:]

		if typ != protowire.VarintType {
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return f, protowire.ParseError(n)
			}
			b = b[n:]
			continue
		}

		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return f, protowire.ParseError(n)
		}
		b = b[n:]

		switch num {
		case fillMakerID:
			f.MakerID = v
		case fillPrice:
			f.Price = int64(v)
		case fillQty:
			f.Qty = int64(v)
		}
	}
	if f.MakerID == 0 {
		return f, fmt.Errorf("wire: fill without maker id")
	}
	return f, nil
}

// AppendDepthEvent appends the encoded snapshot to b.
func AppendDepthEvent(b []byte, ev *DepthEvent) []byte {
	b = protowire.AppendTag(b, depthEvSeq, protowire.VarintType)
	b = protowire.AppendVarint(b, ev.Seq)
	b = protowire.AppendTag(b, depthEvSide, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(ev.Side))
	for i := range ev.Levels {
		var body []byte
		body = protowire.AppendTag(body, levelPrice, protowire.VarintType)
		body = protowire.AppendVarint(body, uint64(ev.Levels[i].Price))
		body = protowire.AppendTag(body, levelQty, protowire.VarintType)
		body = protowire.AppendVarint(body, uint64(ev.Levels[i].Qty))
		b = protowire.AppendTag(b, depthEvLevel, protowire.BytesType)
		b = protowire.AppendBytes(b, body)
	}
	return b
}

// DecodeDepthEvent parses an event produced by AppendDepthEvent.
func DecodeDepthEvent(b []byte) (*DepthEvent, error) {
	ev := &DepthEvent{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]

		switch {
		case num == depthEvSeq && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			ev.Seq = v
			b = b[n:]
		case num == depthEvSide && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			ev.Side = book.Side(v)
			b = b[n:]
		case num == depthEvLevel && typ == protowire.BytesType:
			body, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			lq, err := decodeLevel(body)
			if err != nil {
				return nil, err
			}
			ev.Levels = append(ev.Levels, lq)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return ev, nil
}

func decodeLevel(b []byte) (book.LevelQuote, error) {
	var lq book.LevelQuote
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return lq, protowire.ParseError(n)
		}
		b = b[n:]

		if typ != protowire.VarintType {
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return lq, protowire.ParseError(n)
			}
			b = b[n:]
			continue
		}

		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return lq, protowire.ParseError(n)
		}
		b = b[n:]

		switch num {
		case levelPrice:
			lq.Price = int64(v)
		case levelQty:
			lq.Qty = int64(v)
		}
	}
	return lq, nil
}
