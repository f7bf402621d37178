package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

// ErrorLogTimeFormat is the timestamp layout of error log lines.
const ErrorLogTimeFormat = "2006-01-02 15:04:05,000"

// ErrorLogHandler is an slog.Handler that writes one line per record:
//
//	<timestamp>:<LEVEL>:<message>[ key=value ...]
//
// Writes are serialized, so concurrent records never interleave.
type ErrorLogHandler struct {
	mu    *sync.Mutex
	w     io.Writer
	level slog.Leveler
	attrs []slog.Attr // keys already qualified
	group string
}

// NewErrorLogHandler returns a handler writing records at or above level to w.
func NewErrorLogHandler(w io.Writer, level slog.Leveler) *ErrorLogHandler {
	if level == nil {
		level = slog.LevelError
	}
	return &ErrorLogHandler{mu: &sync.Mutex{}, w: w, level: level}
}

// Enabled implements slog.Handler.
func (h *ErrorLogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *ErrorLogHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	sb.WriteString(ts.Format(ErrorLogTimeFormat))
	sb.WriteByte(':')
	sb.WriteString(r.Level.String())
	sb.WriteByte(':')
	sb.WriteString(r.Message)

	for _, a := range h.attrs {
		writeAttr(&sb, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&sb, h.group, a)
		return true
	})
	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, sb.String())
	return err
}

func writeAttr(sb *strings.Builder, group string, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if group != "" {
		key = group + "." + key
	}
	fmt.Fprintf(sb, " %s=%v", key, a.Value.Resolve().Any())
}

// WithAttrs implements slog.Handler. Attribute keys are qualified with the
// current group when they are added.
func (h *ErrorLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = slices.Clone(h.attrs)
	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

// WithGroup implements slog.Handler.
func (h *ErrorLogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	if clone.group != "" {
		clone.group += "." + name
	} else {
		clone.group = name
	}
	return &clone
}

// NewErrorLogger returns a logger that writes error log lines to w.
func NewErrorLogger(w io.Writer) *slog.Logger {
	return slog.New(NewSecureHandler(NewErrorLogHandler(w, slog.LevelError)))
}

// OpenErrorLog opens path in append mode, creating parent directories, and
// returns a logger writing to it together with the file to close.
func OpenErrorLog(path string) (*slog.Logger, io.Closer, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create error log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600) //nolint:gosec // Operator-chosen path
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open error log: %w", err)
	}
	return NewErrorLogger(f), f, nil
}
