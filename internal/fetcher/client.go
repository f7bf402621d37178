package fetcher

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// maxRedirects bounds redirect chains.
const maxRedirects = 10

// ClientOptions configures the HTTP client used by a Fetcher.
type ClientOptions struct {
	// Timeout is the per-request timeout. Zero means no timeout.
	Timeout time.Duration

	// Insecure disables TLS certificate verification.
	Insecure bool

	// UserAgent is sent with every request.
	UserAgent string

	// Headers are extra request headers set on every request.
	Headers http.Header

	// Cookie is appended to the Cookie header of every request.
	Cookie string

	// ProxyURL routes requests through an http, https or socks5 proxy.
	ProxyURL string
}

// NewHTTPClient builds an HTTP client from opts.
func NewHTTPClient(opts ClientOptions) (*http.Client, error) {
	transport := &http.Transport{
		Proxy: nil,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: opts.Insecure, //nolint:gosec // Operator opt-in via --insecure
		},
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	if opts.ProxyURL != "" {
		if err := applyProxy(transport, opts.ProxyURL); err != nil {
			return nil, err
		}
	}

	return &http.Client{
		Transport: &headerInjectingTransport{
			base:      transport,
			userAgent: opts.UserAgent,
			cookie:    opts.Cookie,
			headers:   opts.Headers,
		},
		Timeout: opts.Timeout,
		CheckRedirect: checkRedirect,
	}, nil
}

// checkRedirect follows redirects on the original host only and stops
// after maxRedirects hops.
func checkRedirect(req *http.Request, via []*http.Request) error {
	if origin := via[0].URL.Host; req.URL.Host != origin {
		return fmt.Errorf("%w: %s -> %s", ErrOffHostRedirect, origin, req.URL.Redacted())
	}
	if len(via) >= maxRedirects {
		return http.ErrUseLastResponse
	}
	return nil
}

// applyProxy routes transport through the proxy at rawURL. HTTP proxies use
// the transport's Proxy hook; SOCKS5 proxies replace the dialer.
func applyProxy(transport *http.Transport, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid proxy URL: %w", err)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid proxy URL %q: missing host", u.Redacted())
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		transport.Proxy = http.ProxyURL(u)
		return nil
	case "socks5", "socks5h":
		dialer, err := proxy.FromURL(u, proxy.Direct)
		if err != nil {
			return fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			transport.DialContext = cd.DialContext
		} else {
			transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedProxy, u.Scheme)
	}
}

// ParseHeaders turns "Name: value" lines into an http.Header.
func ParseHeaders(lines []string) (http.Header, error) {
	headers := make(http.Header, len(lines))
	for _, line := range lines {
		name, value, ok := strings.Cut(line, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" || strings.ContainsAny(name, " \t") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidHeader, line)
		}
		headers.Add(name, strings.TrimSpace(value))
	}
	return headers, nil
}

// headerInjectingTransport sets the user agent on every outgoing request.
// Operator headers and the cookie are set only while the request stays on
// the host of the request that started the redirect chain.
type headerInjectingTransport struct {
	base      http.RoundTripper
	userAgent string
	cookie    string
	headers   http.Header
}

func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	if t.userAgent != "" {
		clone.Header.Set("User-Agent", t.userAgent)
	}
	if req.URL.Host != originHost(req) {
		return t.base.RoundTrip(clone)
	}
	for key, values := range t.headers {
		clone.Header.Del(key)
		for _, v := range values {
			clone.Header.Add(key, v)
		}
	}
	if t.cookie != "" {
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+t.cookie)
		} else {
			clone.Header.Set("Cookie", t.cookie)
		}
	}

	return t.base.RoundTrip(clone)
}

// originHost returns the host of the first request in req's redirect chain.
func originHost(req *http.Request) string {
	for req.Response != nil && req.Response.Request != nil {
		req = req.Response.Request
	}
	return req.URL.Host
}
