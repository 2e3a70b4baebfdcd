package wal

import "time"

// RecordType names the command a record carries. Market executions are
// logged like any other command so replay reproduces the book exactly.
type RecordType uint8

const (
	RecordPlace RecordType = iota
	RecordCancel
	RecordMarket
)

// Record is one immutable log entry. Data is an opaque payload; the
// service owns its encoding.
type Record struct {
	Type RecordType
	Seq  uint64
	Time int64
	Data []byte
}

func NewRecord(t RecordType, seq uint64, data []byte) *Record {
	return &Record{
		Type: t,
		Seq:  seq,
		Time: time.Now().UnixNano(),
		Data: data,
	}
}
