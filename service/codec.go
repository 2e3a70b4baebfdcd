package service

import (
	"encoding/binary"
	"errors"

	"bulkbook/domain/book"
)

// WAL payload encodings, little-endian fixed width. The WAL frame already
// carries type, sequence and time; payloads hold only the command
// arguments.
//
//	place:  [side:1][price:8][qty:8][id:8]
//	cancel: [id:8]
//	market: [side:1][qty:8]

var errShortPayload = errors.New("service: short wal payload")

func encodePlace(buf []byte, side book.Side, price, qty int64, id uint64) []byte {
	buf = append(buf, byte(side))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(price))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(qty))
	buf = binary.LittleEndian.AppendUint64(buf, id)
	return buf
}

func decodePlace(b []byte) (side book.Side, price, qty int64, id uint64, err error) {
	if len(b) != 25 {
		return 0, 0, 0, 0, errShortPayload
	}
	side = book.Side(b[0])
	price = int64(binary.LittleEndian.Uint64(b[1:9]))
	qty = int64(binary.LittleEndian.Uint64(b[9:17]))
	id = binary.LittleEndian.Uint64(b[17:25])
	return side, price, qty, id, nil
}

func encodeCancel(buf []byte, id uint64) []byte {
	return binary.LittleEndian.AppendUint64(buf, id)
}

func decodeCancel(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, errShortPayload
	}
	return binary.LittleEndian.Uint64(b), nil
}

func encodeMarket(buf []byte, taker book.Side, qty int64) []byte {
	buf = append(buf, byte(taker))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(qty))
	return buf
}

func decodeMarket(b []byte) (book.Side, int64, error) {
	if len(b) != 9 {
		return 0, 0, errShortPayload
	}
	return book.Side(b[0]), int64(binary.LittleEndian.Uint64(b[1:9])), nil
}
