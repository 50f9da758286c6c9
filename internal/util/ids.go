package util

import (
	"crypto/rand"
	"encoding/hex"
	"sync/atomic"
)

// runSeq gives successive runs within one process an ordered prefix, so
// log lines from two runs started a moment apart still sort the way they
// happened even if their random suffixes don't.
var runSeq atomic.Uint32

// NewRunID returns a short identifier (16 hex characters) correlating
// every log line emitted by one harness run: a 4-byte process-local
// sequence number followed by 4 random bytes, so ids stay ordered within
// a process and still don't collide across concurrent processes.
func NewRunID() string {
	seq := runSeq.Add(1)
	prefix := [4]byte{byte(seq >> 24), byte(seq >> 16), byte(seq >> 8), byte(seq)}

	var suffix [4]byte
	_, _ = rand.Read(suffix[:])

	return hex.EncodeToString(prefix[:]) + hex.EncodeToString(suffix[:])
}
