package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/net/html/charset"
)

// DefaultMaxBodySize caps how much of a response body is read.
const DefaultMaxBodySize int64 = 10 * 1024 * 1024

// Outcome classifies the result of a fetch.
type Outcome int

const (
	// OutcomeHTML means the body is HTML text ready for link extraction.
	OutcomeHTML Outcome = iota
	// OutcomeSkipped means the response was not HTML.
	OutcomeSkipped
	// OutcomeFailed means the request failed. Err holds the cause.
	OutcomeFailed
	// OutcomeCancelled means the context ended before the fetch completed.
	OutcomeCancelled
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeHTML:
		return "html"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the tagged outcome of one fetch.
type Result struct {
	URL         string
	Outcome     Outcome
	StatusCode  int
	ContentType string
	// Body is set only for OutcomeHTML.
	Body string
	// Err is set for OutcomeFailed and OutcomeCancelled.
	Err error
}

// Fetcher performs GET requests and classifies their results.
type Fetcher struct {
	client      *http.Client
	maxBodySize int64
	logger      *slog.Logger
	errorLog    *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithMaxBodySize sets the response body cap.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithErrorLog sets the logger that receives fetch failures.
func WithErrorLog(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.errorLog = logger
		}
	}
}

// New returns a Fetcher using client.
func New(client *http.Client, opts ...Option) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	discard := slog.New(slog.DiscardHandler)
	f := &Fetcher{
		client:      client,
		maxBodySize: DefaultMaxBodySize,
		logger:      discard,
		errorLog:    discard,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves rawURL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) Result {
	res := Result{URL: rawURL}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return f.fail(ctx, res, err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return f.fail(ctx, res, err)
	}
	defer resp.Body.Close()

	res.StatusCode = resp.StatusCode
	res.ContentType = resp.Header.Get("Content-Type")

	if resp.StatusCode >= http.StatusBadRequest {
		return f.fail(ctx, res, fmt.Errorf("%w: %s", ErrHTTPStatus, resp.Status))
	}

	if !strings.Contains(strings.ToLower(res.ContentType), "text/html") {
		f.logger.Debug("skipping non-HTML response", "url", rawURL, "content_type", res.ContentType)
		res.Outcome = OutcomeSkipped
		return res
	}

	reader, err := charset.NewReader(io.LimitReader(resp.Body, f.maxBodySize), res.ContentType)
	if err != nil {
		return f.fail(ctx, res, fmt.Errorf("failed to decode body: %w", err))
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return f.fail(ctx, res, fmt.Errorf("failed to read body: %w", err))
	}

	f.logger.Debug("fetched", "url", rawURL, "status", resp.StatusCode, "bytes", len(body))
	res.Outcome = OutcomeHTML
	res.Body = string(body)
	return res
}

// fail classifies err as a cancellation when ctx has ended and as a logged
// failure otherwise.
func (f *Fetcher) fail(ctx context.Context, res Result, err error) Result {
	res.Err = err
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		res.Outcome = OutcomeCancelled
		return res
	}
	res.Outcome = OutcomeFailed
	f.errorLog.Error(fmt.Sprintf("Failed to fetch %s: %v", res.URL, err))
	f.logger.Debug("fetch failed", "url", res.URL, "error", err)
	return res
}
