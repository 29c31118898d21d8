// Package triallog writes listener responses as comma-separated lines.
//
// The format is one header line followed by one line per response:
//
//	Freq (Hz), Amp (dB), Datetime
//	   440.00,      -12, 2024-03-01T11:30:00.000000
//
// The header is written once, and only when the destination starts out empty.
package triallog

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sync"

	"hearing-test/dsp"
)

const (
	// Header is the first line of every new log.
	Header = "Freq (Hz), Amp (dB), Datetime"

	// TimeLayout is ISO-8601 with microseconds, always rendered in UTC.
	TimeLayout = "2006-01-02T15:04:05.000000"
)

// ErrClosed is returned by Write after Close.
var ErrClosed = errors.New("trial log closed")

// Log formats trial records onto a Sink.
type Log struct {
	mu         sync.Mutex
	sink       Sink
	needHeader bool
	count      int
	closed     bool
}

// New wraps sink. needHeader should be true when the destination holds no lines yet.
func New(sink Sink, needHeader bool) *Log {
	return &Log{sink: sink, needHeader: needHeader}
}

// Open returns a log appending to path, or streaming to stdout when path is empty.
func Open(path string, stdout io.Writer) (*Log, error) {
	if path == "" {
		return New(NewConsoleSink(stdout), true), nil
	}

	sink, err := OpenFile(path)
	if err != nil {
		return nil, err
	}

	return New(sink, sink.Empty()), nil
}

// FormatRecord renders rec as a log line without the trailing newline.
func FormatRecord(rec dsp.TrialRecord) string {
	return fmt.Sprintf("%9.2f, %8d, %s",
		rec.FrequencyHz, int(math.Round(rec.AmplitudeDB)), rec.Time.UTC().Format(TimeLayout))
}

// Write appends rec, preceded by the header on the first write to an empty destination,
// and flushes.
func (l *Log) Write(rec dsp.TrialRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}

	if l.needHeader {
		if err := l.sink.Append(Header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		l.needHeader = false
	}

	if err := l.sink.Append(FormatRecord(rec)); err != nil {
		return fmt.Errorf("write record: %w", err)
	}

	if err := l.sink.Flush(); err != nil {
		return fmt.Errorf("flush record: %w", err)
	}

	l.count++

	return nil
}

// Count returns the number of records written through this Log.
func (l *Log) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.count
}

// Close closes the underlying sink. Later writes return ErrClosed; repeated calls are no-ops.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	return l.sink.Close()
}
