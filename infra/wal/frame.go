package wal

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
)

// On-disk frame, big-endian:
//
//	[type:1][seq:8][time:8][len:4][payload][crc:4]
//
// The trailing CRC-32 (IEEE) covers everything before it.

const frameHeaderLen = 1 + 8 + 8 + 4

// errSegmentEnd marks the point past which a segment holds no further
// whole frames. A torn tail write from a crash mid-append surfaces the
// same way as a clean end of file; anything else is corruption.
var errSegmentEnd = errors.New("wal: end of segment")

// appendFrame appends the framed record to dst and returns the result.
func appendFrame(dst []byte, r *Record) []byte {
	start := len(dst)
	dst = append(dst, byte(r.Type))
	dst = binary.BigEndian.AppendUint64(dst, r.Seq)
	dst = binary.BigEndian.AppendUint64(dst, uint64(r.Time))
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(r.Data)))
	dst = append(dst, r.Data...)
	return binary.BigEndian.AppendUint32(dst, crc32.ChecksumIEEE(dst[start:]))
}

// frameReader decodes successive frames from one segment stream.
type frameReader struct {
	br *bufio.Reader
}

func newFrameReader(r io.Reader) *frameReader {
	return &frameReader{br: bufio.NewReader(r)}
}

func (fr *frameReader) next() (*Record, error) {
	var hdr [frameHeaderLen]byte
	if _, err := io.ReadFull(fr.br, hdr[:]); err != nil {
		return nil, tailOr(err)
	}

	rec := &Record{
		Type: RecordType(hdr[0]),
		Seq:  binary.BigEndian.Uint64(hdr[1:9]),
		Time: int64(binary.BigEndian.Uint64(hdr[9:17])),
		Data: make([]byte, binary.BigEndian.Uint32(hdr[17:21])),
	}
	if _, err := io.ReadFull(fr.br, rec.Data); err != nil {
		return nil, tailOr(err)
	}

	var trailer [4]byte
	if _, err := io.ReadFull(fr.br, trailer[:]); err != nil {
		return nil, tailOr(err)
	}

	digest := crc32.NewIEEE()
	digest.Write(hdr[:])
	digest.Write(rec.Data)
	if digest.Sum32() != binary.BigEndian.Uint32(trailer[:]) {
		return nil, fmt.Errorf("wal: crc mismatch at seq %d", rec.Seq)
	}
	return rec, nil
}

func tailOr(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errSegmentEnd
	}
	return err
}
