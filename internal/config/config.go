package config

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultDepth is the maximum discovery depth; the seed is depth 1.
	DefaultDepth = 2

	// DefaultThreads bounds concurrent fetches.
	DefaultThreads = 5

	// DefaultRateLimit is the request rate in requests per second.
	DefaultRateLimit = 1.0

	// DefaultTimeout applies to each request.
	DefaultTimeout = 10 * time.Second

	// DefaultOutputFile receives one URL per distinct parameter signature.
	DefaultOutputFile = "unique_params.txt"

	// DefaultErrorLogFile receives fetch failures and unexpected errors.
	DefaultErrorLogFile = "crash_log.log"

	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3"

	// DefaultTorStartupTimeout bounds how long the embedded Tor daemon may
	// take to bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute

	// DefaultMaxBodySize limits how much of a response is read (10MB).
	DefaultMaxBodySize = 10 * 1024 * 1024

	// AppName is the application name used for XDG directory paths.
	AppName = "paramscan"
)

// Config holds all options of a crawl. It is populated from CLI flags and
// the config file and passed down explicitly.
type Config struct {
	// StartURL is the seed. Normalization happens in the model package.
	StartURL string

	// Depth is the maximum discovery depth, 1 meaning only the seed.
	Depth int

	// Threads bounds the number of fetches in flight.
	Threads int

	// RateLimit is the maximum request rate in requests per second.
	RateLimit float64

	// Timeout applies to each request.
	Timeout time.Duration

	// Insecure disables TLS certificate verification.
	Insecure bool

	// OutputFile is the append-only list of representative URLs.
	OutputFile string

	// ErrorLogFile is the append-only error log.
	ErrorLogFile string

	// SummaryFile, when set, receives a Markdown summary of the run.
	SummaryFile string

	// UserAgent is sent with every request.
	UserAgent string

	// Headers are extra request headers in "Name: value" form.
	Headers []string

	// Cookie is sent as the Cookie header.
	Cookie string

	// ProxyURL routes requests through an http, https or socks5 proxy.
	ProxyURL string

	// MaxBodySize is the maximum response body size to read.
	MaxBodySize int64

	// UseTor starts an embedded Tor daemon and routes requests through its
	// SOCKS proxy. It replaces ProxyURL.
	UseTor bool

	// TorStartupTimeout is the maximum time to wait for Tor to bootstrap.
	TorStartupTimeout time.Duration

	// Quiet suppresses the banner and the progress line.
	Quiet bool

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is an explicit config file. When empty, .paramscan is
	// searched in the current and home directories.
	ConfigFilePath string

	// SiteConfigs is the loaded config file, if any.
	SiteConfigs *File

	// SaveToDB records the run in the history database.
	SaveToDB bool

	// DBDir is the history database directory.
	// Defaults to the XDG data directory (~/.local/share/paramscan on Linux).
	DBDir string
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		Depth:             DefaultDepth,
		Threads:           DefaultThreads,
		RateLimit:         DefaultRateLimit,
		Timeout:           DefaultTimeout,
		OutputFile:        DefaultOutputFile,
		ErrorLogFile:      DefaultErrorLogFile,
		UserAgent:         DefaultUserAgent,
		MaxBodySize:       DefaultMaxBodySize,
		TorStartupTimeout: DefaultTorStartupTimeout,
		SaveToDB:          true,
		DBDir:             XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for paramscan.
// On Linux: ~/.local/share/paramscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for paramscan.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if c.StartURL == "" {
		return ErrNoTarget
	}
	if c.Depth < 1 {
		return ErrInvalidDepth
	}
	if c.Threads < 1 {
		return ErrInvalidThreads
	}
	if c.RateLimit <= 0 {
		return ErrInvalidRateLimit
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.OutputFile == "" {
		return ErrNoOutputFile
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.UseTor {
		if c.ProxyURL != "" {
			return ErrTorWithProxy
		}
		if c.TorStartupTimeout <= 0 {
			return ErrInvalidTorTimeout
		}
	}
	return nil
}

// Overrides names the options set explicitly on the command line. Those
// win over the config file.
type Overrides struct {
	Depth     bool
	Threads   bool
	RateLimit bool
	UserAgent bool
	Cookie    bool
	ProxyURL  bool
}

// ApplySiteConfig merges sc into c. Fields marked in keep are left alone.
// Headers from sc are added unless a header with the same name is already
// configured.
func (c *Config) ApplySiteConfig(sc SiteConfig, keep Overrides) {
	if sc.Depth != 0 && !keep.Depth {
		c.Depth = sc.Depth
	}
	if sc.Threads != 0 && !keep.Threads {
		c.Threads = sc.Threads
	}
	if sc.RateLimit != 0 && !keep.RateLimit {
		c.RateLimit = sc.RateLimit
	}
	if sc.UserAgent != "" && !keep.UserAgent {
		c.UserAgent = sc.UserAgent
	}
	if sc.Cookie != "" && !keep.Cookie {
		c.Cookie = sc.Cookie
	}
	if sc.Proxy != "" && !keep.ProxyURL {
		c.ProxyURL = sc.Proxy
	}

	if len(sc.Headers) == 0 {
		return
	}
	present := make(map[string]bool, len(c.Headers))
	for _, h := range c.Headers {
		present[headerName(h)] = true
	}
	for _, name := range sortedKeys(sc.Headers) {
		if present[http.CanonicalHeaderKey(name)] {
			continue
		}
		c.Headers = append(c.Headers, name+": "+sc.Headers[name])
	}
}
