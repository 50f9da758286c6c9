// Package trace implements structured begin/end events per tick and per
// worker, channel-addressed so a Task id (0..N-1) or an algorithm id
// (>=N) can share one event stream. The concrete Sink writes CSV rows
// (seq, channel, sec, nsec) through a rotating file via
// gopkg.in/natefinch/lumberjack.v2, plus a human-readable logrus line at
// debug level.
package trace

import (
	"encoding/csv"
	"io"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Sink is the minimum event-tracing collaborator API.
type Sink interface {
	TraceBegin(channel int)
	TraceEnd(channel int)
	Close() error
}

// CSVSink appends (seq, channel, sec, nsec) rows for every begin/end
// event.
type CSVSink struct {
	mu     sync.Mutex
	w      *csv.Writer
	closer io.Closer
	seq    atomic.Uint64
	log    *logrus.Entry
}

// NewCSVSink opens (creating/rotating as needed) path for CSV trace
// output. Pass "" to discard trace rows while still logging at debug
// level.
func NewCSVSink(path string) *CSVSink {
	s := &CSVSink{log: logrus.WithField("comp", "trace")}
	if path != "" {
		lj := &lumberjack.Logger{
			Filename: path,
			MaxSize:  10, // MB
			MaxBackups: 3,
		}
		s.closer = lj
		s.w = csv.NewWriter(lj)
	}
	return s
}

// TraceBegin implements Sink.
func (s *CSVSink) TraceBegin(channel int) { s.emit("begin", channel) }

// TraceEnd implements Sink.
func (s *CSVSink) TraceEnd(channel int) { s.emit("end", channel) }

func (s *CSVSink) emit(kind string, channel int) {
	now := time.Now()
	seq := s.seq.Add(1)

	s.log.WithFields(logrus.Fields{
		"seq":     seq,
		"channel": channel,
		"event":   kind,
	}).Debug("trace event")

	if s.w == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	row := []string{
		strconv.FormatUint(seq, 10),
		strconv.Itoa(channel),
		strconv.FormatInt(now.Unix(), 10),
		strconv.FormatInt(int64(now.Nanosecond()), 10),
	}
	if err := s.w.Write(row); err != nil {
		s.log.WithError(err).Warn("trace: write failed")
		return
	}
	s.w.Flush()
}

// Close flushes and closes the underlying rotating file, if any.
func (s *CSVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.w != nil {
		s.w.Flush()
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// AlgoChannel maps an algorithm index onto the shared channel space above
// every task id, so one algorithm's per-tick events never collide with a
// task's per-burst events on the same Sink.
func AlgoChannel(taskCount, algoIndex int) int {
	return taskCount + algoIndex
}
