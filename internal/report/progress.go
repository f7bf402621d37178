package report

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Progress tracks the visited and unique-signature counters of a crawl and
// redraws a single status line on every update. Counters never decrease,
// even when updates arrive out of order.
type Progress struct {
	visited atomic.Int64
	unique  atomic.Int64

	// mu serializes rendering.
	mu       sync.Mutex
	out      io.Writer
	printer  *message.Printer
	quiet    bool
	rendered bool
}

// NewProgress returns a Progress that draws to out. When quiet is set the
// counters are still tracked but nothing is drawn.
func NewProgress(out io.Writer, quiet bool) *Progress {
	return &Progress{
		out:     out,
		printer: message.NewPrinter(language.English),
		quiet:   quiet || out == nil,
	}
}

// Update raises the counters to visited and unique and redraws the line.
func (p *Progress) Update(visited, unique int) {
	storeMax(&p.visited, int64(visited))
	storeMax(&p.unique, int64(unique))

	if p.quiet {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	v, u := p.Snapshot()
	p.printer.Fprintf(p.out, "\rVisited URLs: %d, Unique Parameters: %d", v, u)
	p.rendered = true
}

// Snapshot returns the current counters.
func (p *Progress) Snapshot() (visited, unique int) {
	return int(p.visited.Load()), int(p.unique.Load())
}

// Finish ends the status line so later output starts on a fresh line.
func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rendered {
		fmt.Fprintln(p.out)
		p.rendered = false
	}
}

func storeMax(v *atomic.Int64, n int64) {
	for {
		cur := v.Load()
		if n <= cur || v.CompareAndSwap(cur, n) {
			return
		}
	}
}
