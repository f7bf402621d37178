package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoTarget is returned when no start URL is given.
	ErrNoTarget = errors.New("no target specified: provide a start URL with --url or as an argument")

	// ErrInvalidDepth is returned when the maximum depth is below 1.
	ErrInvalidDepth = errors.New("invalid depth: must be at least 1")

	// ErrInvalidThreads is returned when the concurrency limit is below 1.
	ErrInvalidThreads = errors.New("invalid threads: must be at least 1")

	// ErrInvalidRateLimit is returned when the request rate is not positive.
	ErrInvalidRateLimit = errors.New("invalid rate limit: must be positive")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrNoOutputFile is returned when the output file path is empty.
	ErrNoOutputFile = errors.New("no output file specified")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrTorWithProxy is returned when --tor and --proxy are both given.
	ErrTorWithProxy = errors.New("--tor and --proxy cannot be used together")

	// ErrInvalidTorTimeout is returned when the Tor startup timeout is not positive.
	ErrInvalidTorTimeout = errors.New("invalid Tor startup timeout: must be positive")
)
