package triallog

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Sink is an append-only line destination.
type Sink interface {
	Append(line string) error
	Flush() error
	Close() error
}

// FileSink appends lines to a file opened in append mode.
type FileSink struct {
	f *os.File
	w *bufio.Writer

	empty bool // true if the file was new or empty when opened
}

// OpenFile opens path for appending, creating it if needed.
func OpenFile(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open trial log: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat trial log: %w", err)
	}

	return &FileSink{
		f:     f,
		w:     bufio.NewWriter(f),
		empty: info.Size() == 0,
	}, nil
}

// Empty reports whether the file held no data when it was opened.
func (s *FileSink) Empty() bool {
	return s.empty
}

func (s *FileSink) Append(line string) error {
	_, err := s.w.WriteString(line + "\n")
	return err
}

// Flush writes buffered lines through to the file and syncs it.
func (s *FileSink) Flush() error {
	if err := s.w.Flush(); err != nil {
		return err
	}

	return s.f.Sync()
}

func (s *FileSink) Close() error {
	flushErr := s.w.Flush()
	if err := s.f.Close(); err != nil {
		return err
	}

	return flushErr
}

// ConsoleSink writes lines to a stream it does not own, usually standard output.
// Close flushes but never closes the stream.
type ConsoleSink struct {
	w *bufio.Writer
}

func NewConsoleSink(out io.Writer) *ConsoleSink {
	return &ConsoleSink{w: bufio.NewWriter(out)}
}

func (s *ConsoleSink) Append(line string) error {
	_, err := s.w.WriteString(line + "\n")
	return err
}

func (s *ConsoleSink) Flush() error {
	return s.w.Flush()
}

func (s *ConsoleSink) Close() error {
	return s.w.Flush()
}
