package log

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
)

var errorLineRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2},\d{3}:ERROR:`)

func TestErrorLogHandler_Format(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewErrorLogger(&buf)
	logger.Error("Failed to fetch http://example.com/a: " + errors.New("connection refused").Error())

	line := buf.String()
	if !errorLineRe.MatchString(line) {
		t.Fatalf("unexpected line format: %q", line)
	}
	if !strings.HasSuffix(line, ":ERROR:Failed to fetch http://example.com/a: connection refused\n") {
		t.Errorf("unexpected message: %q", line)
	}
}

func TestErrorLogHandler_LevelFilter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewErrorLogger(&buf)
	logger.Info("ignored")
	logger.Warn("ignored")

	if buf.Len() != 0 {
		t.Errorf("records below error level written: %q", buf.String())
	}
}

func TestErrorLogHandler_Attrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewErrorLogHandler(&buf, slog.LevelInfo)).With("host", "example.com").WithGroup("req")
	logger.Info("done", "status", 404)

	if !strings.Contains(buf.String(), ":INFO:done host=example.com req.status=404\n") {
		t.Errorf("unexpected line: %q", buf.String())
	}
}

func TestErrorLogHandler_ConcurrentLinesDoNotInterleave(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewErrorLogger(&buf)

	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			logger.Error("Failed to fetch http://example.com/x: timeout")
		})
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 50 {
		t.Fatalf("got %d lines, want 50", len(lines))
	}
	for _, line := range lines {
		if !errorLineRe.MatchString(line) {
			t.Errorf("malformed line: %q", line)
		}
	}
}

func TestOpenErrorLog_Appends(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "crash_log.log")
	for i := range 2 {
		logger, closer, err := OpenErrorLog(path)
		if err != nil {
			t.Fatalf("OpenErrorLog() error = %v", err)
		}
		logger.Error("run", "n", i)
		if err := closer.Close(); err != nil {
			t.Fatal(err)
		}
	}

	data, err := os.ReadFile(path) //nolint:gosec // test path
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(data), "\n"); got != 2 {
		t.Errorf("got %d lines, want 2 (append mode): %q", got, data)
	}
}
