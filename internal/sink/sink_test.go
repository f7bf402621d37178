package sink

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestFileSink_AppendsWithoutTruncating(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "unique_params.txt")
	if err := os.WriteFile(path, []byte("http://old.example/?a=1\n"), 0600); err != nil {
		t.Fatal(err)
	}

	s, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	if err := s.Append("http://example.com/?x=1"); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path) //nolint:gosec // test path
	if err != nil {
		t.Fatal(err)
	}
	want := "http://old.example/?a=1\nhttp://example.com/?x=1\n"
	if string(data) != want {
		t.Errorf("content = %q, want %q", data, want)
	}
}

func TestFileSink_CreatesDirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", "nested", "params.txt")
	s, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer s.Close()

	if s.Path() != path {
		t.Errorf("Path() = %q, want %q", s.Path(), path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file not created: %v", err)
	}
}

func TestFileSink_RejectsMultiline(t *testing.T) {
	t.Parallel()

	s, err := OpenFile(filepath.Join(t.TempDir(), "p.txt"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.Append("http://a/?x=1\nhttp://b/?y=2"); !errors.Is(err, ErrMultiline) {
		t.Errorf("Append() error = %v, want ErrMultiline", err)
	}
}

func TestFileSink_AppendAfterClose(t *testing.T) {
	t.Parallel()

	s, err := OpenFile(filepath.Join(t.TempDir(), "p.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := s.Append("http://a/?x=1"); !errors.Is(err, ErrClosed) {
		t.Errorf("Append() error = %v, want ErrClosed", err)
	}
}

func TestFileSink_ConcurrentAppends(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "p.txt")
	s, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}

	const line = "http://example.com/search?q=1&page=2&sort=asc"
	var wg sync.WaitGroup
	for range 100 {
		wg.Go(func() {
			if err := s.Append(line); err != nil {
				t.Error(err)
			}
		})
	}
	wg.Wait()
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path) //nolint:gosec // test path
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(lines) != 100 {
		t.Fatalf("got %d lines, want 100", len(lines))
	}
	for _, l := range lines {
		if l != line {
			t.Errorf("interleaved line %q", l)
		}
	}
}

type memorySink struct {
	lines []string
	err   error
}

func (m *memorySink) Append(line string) error {
	m.lines = append(m.lines, line)
	return m.err
}

func TestMulti(t *testing.T) {
	t.Parallel()

	errBroken := errors.New("broken")
	a := &memorySink{}
	b := &memorySink{err: errBroken}
	c := &memorySink{}

	s := Multi(Multi(a, nil), b, c)
	err := s.Append("http://example.com/?x=1")

	if !errors.Is(err, errBroken) {
		t.Errorf("Append() error = %v, want %v", err, errBroken)
	}
	for name, m := range map[string]*memorySink{"a": a, "b": b, "c": c} {
		if len(m.lines) != 1 {
			t.Errorf("sink %s got %d lines, want 1", name, len(m.lines))
		}
	}
}
