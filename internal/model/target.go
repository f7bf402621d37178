package model

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Start URL errors.
var (
	// ErrEmptyStartURL is returned when the start URL is empty.
	ErrEmptyStartURL = errors.New("start URL cannot be empty")
	// ErrInvalidStartURL is returned when the start URL cannot be parsed or has no host.
	ErrInvalidStartURL = errors.New("invalid start URL")
)

// defaultScheme is prepended to start URLs given without a scheme.
const defaultScheme = "http://"

// NormalizeStartURL prepends "http://" when the raw URL has no http or https
// scheme and checks that the result has a host.
// Nothing else about the URL is changed; URL identity during the crawl is the
// exact string.
func NormalizeStartURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyStartURL
	}

	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		raw = defaultScheme + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidStartURL, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: %q has no host", ErrInvalidStartURL, raw)
	}
	return raw, nil
}

// Scope is the immutable crawl boundary: the target host and the maximum
// discovery depth. It is derived once from the seed URL.
type Scope struct {
	host     string
	maxDepth int
}

// NewScope derives a Scope from the seed URL.
// The host is the seed's host including any port, compared exactly.
func NewScope(seed string, maxDepth int) (Scope, error) {
	u, err := url.Parse(seed)
	if err != nil {
		return Scope{}, fmt.Errorf("%w: %w", ErrInvalidStartURL, err)
	}
	if u.Host == "" {
		return Scope{}, fmt.Errorf("%w: %q has no host", ErrInvalidStartURL, seed)
	}
	return Scope{host: u.Host, maxDepth: maxDepth}, nil
}

// Host returns the target host (host[:port]).
func (s Scope) Host() string { return s.host }

// MaxDepth returns the maximum discovery depth. The seed has depth 1.
func (s Scope) MaxDepth() int { return s.maxDepth }

// Contains reports whether u is an http(s) URL on the target host.
func (s Scope) Contains(u *url.URL) bool {
	if u == nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host == s.host
}

// WithinDepth reports whether a target discovered at depth may be fetched.
func (s Scope) WithinDepth(depth int) bool {
	return depth >= 1 && depth <= s.maxDepth
}

// CrawlTarget is an in-scope URL together with the depth it was discovered at.
type CrawlTarget struct {
	// URL is the absolute URL string exactly as discovered.
	URL string

	// Host is the URL's host; it always equals the scope host.
	Host string

	// Depth is the discovery depth, 1 for the seed.
	Depth int
}

// Child returns the target for a link found on t's page.
func (t CrawlTarget) Child(rawURL string) CrawlTarget {
	return CrawlTarget{URL: rawURL, Host: t.Host, Depth: t.Depth + 1}
}
