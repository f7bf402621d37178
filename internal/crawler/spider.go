package crawler

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/paramscan/internal/fetcher"
	"github.com/nao1215/paramscan/internal/gate"
	"github.com/nao1215/paramscan/internal/model"
	"github.com/nao1215/paramscan/internal/signature"
	"github.com/nao1215/paramscan/internal/sink"
)

// Fetcher retrieves a page. *fetcher.Fetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) fetcher.Result
}

// ProgressFunc receives the visited and unique-signature counts after each
// task finishes.
type ProgressFunc func(visited, unique int)

// Spider crawls a single host for distinct query-parameter signatures.
type Spider struct {
	// scope bounds host and depth.
	scope model.Scope

	fetcher   Fetcher
	gate      *gate.Gate
	extractor *LinkExtractor
	index     *signature.Index
	sink      sink.Sink

	// visited is shared by all tasks of one crawl.
	visited *VisitedSet

	logger   *slog.Logger
	progress ProgressFunc
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithProgress sets the callback invoked after each task.
func WithProgress(fn ProgressFunc) SpiderOption {
	return func(s *Spider) {
		s.progress = fn
	}
}

// NewSpider returns a Spider that fetches through f, throttled by g, records
// novel signatures in index and appends their URLs to out.
func NewSpider(scope model.Scope, f Fetcher, g *gate.Gate, index *signature.Index, out sink.Sink, opts ...SpiderOption) *Spider {
	s := &Spider{
		scope:     scope,
		fetcher:   f,
		gate:      g,
		extractor: NewLinkExtractor(scope),
		index:     index,
		sink:      out,
		visited:   NewVisitedSet(),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Visited returns the spider's visited set.
func (s *Spider) Visited() *VisitedSet {
	return s.visited
}

// Crawl expands seed at depth 1 and returns once every spawned task has
// finished. It returns the sink error that ended the crawl, or ctx.Err()
// when the crawl was cancelled, or nil.
func (s *Spider) Crawl(ctx context.Context, seed string) error {
	g, gctx := errgroup.WithContext(ctx)

	s.spawn(gctx, g, model.CrawlTarget{URL: seed, Host: s.scope.Host(), Depth: 1})

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// spawn runs t as a task of g. A panicking task ends the crawl with an
// ErrTaskPanic error instead of crashing the process.
func (s *Spider) spawn(ctx context.Context, g *errgroup.Group, t model.CrawlTarget) {
	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w while visiting %s: %v", ErrTaskPanic, t.URL, r)
			}
		}()
		return s.visit(ctx, g, t)
	})
}

// visit runs one task. Only sink failures are returned.
func (s *Spider) visit(ctx context.Context, g *errgroup.Group, t model.CrawlTarget) error {
	if ctx.Err() != nil {
		return nil
	}
	if !s.scope.WithinDepth(t.Depth) {
		return nil
	}
	if !s.visited.MarkIfNotVisited(t.URL) {
		return nil
	}
	defer s.reportProgress()

	res, ok := s.fetch(ctx, t.URL)
	if !ok {
		return nil
	}
	if res.Outcome != fetcher.OutcomeHTML {
		s.logger.Debug("no links to follow", "url", t.URL, "outcome", res.Outcome.String(), "depth", t.Depth)
		return nil
	}

	for link := range s.extractor.Links(t.URL, res.Body) {
		if ctx.Err() != nil {
			return nil
		}

		if d := s.index.Consider(link); d.Novel {
			if err := s.sink.Append(link); err != nil {
				return fmt.Errorf("failed to record %s: %w", link, err)
			}
			s.logger.Debug("new parameter signature", "url", link, "signature", d.Signature.String())
		}

		child := t.Child(link)
		if s.scope.WithinDepth(child.Depth) && !s.visited.Contains(link) {
			s.spawn(ctx, g, child)
		}
	}
	return nil
}

// fetch retrieves rawURL while holding a gate slot. It reports false when
// the gate could not be acquired.
func (s *Spider) fetch(ctx context.Context, rawURL string) (fetcher.Result, bool) {
	if err := s.gate.Acquire(ctx); err != nil {
		return fetcher.Result{}, false
	}
	defer s.gate.Release()
	return s.fetcher.Fetch(ctx, rawURL), true
}

func (s *Spider) reportProgress() {
	if s.progress != nil {
		s.progress(s.visited.Len(), s.index.Len())
	}
}
