package sink

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Sink receives recorded URLs one line at a time.
type Sink interface {
	Append(line string) error
}

// FileSink appends lines to a file opened in append mode.
type FileSink struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	closed bool
}

// OpenFile opens path for appending, creating it and its parent directory
// when missing.
func OpenFile(path string) (*FileSink, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644) //nolint:gosec // Operator-chosen output file
	if err != nil {
		return nil, fmt.Errorf("failed to open output file: %w", err)
	}
	return &FileSink{path: path, file: f}, nil
}

// Append writes line followed by a newline with a single write call.
func (s *FileSink) Append(line string) error {
	if strings.ContainsAny(line, "\r\n") {
		return ErrMultiline
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if _, err := s.file.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return nil
}

// Path returns the file path.
func (s *FileSink) Path() string {
	return s.path
}

// Close closes the file. Further appends fail with ErrClosed.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.file.Close()
}

type multi struct {
	sinks []Sink
}

// Multi returns a sink that appends each line to every given sink in order.
// All sinks receive the line even if an earlier one fails; the errors are
// joined.
func Multi(sinks ...Sink) Sink {
	flat := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s == nil {
			continue
		}
		if m, ok := s.(*multi); ok {
			flat = append(flat, m.sinks...)
			continue
		}
		flat = append(flat, s)
	}
	return &multi{sinks: flat}
}

func (m *multi) Append(line string) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Append(line); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
