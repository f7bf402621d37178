package tor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nao1215/tornago"
)

// DefaultStartupTimeout is used when no startup timeout is configured.
const DefaultStartupTimeout = 3 * time.Minute

// ErrNotRunning is returned when the daemon's proxy is requested before
// Start succeeded.
var ErrNotRunning = errors.New("embedded Tor daemon is not running")

// process is the part of *tornago.TorProcess the daemon uses.
type process interface {
	SocksAddr() string
	ControlAddr() string
	Stop() error
}

// launcher starts a Tor process and blocks until it has bootstrapped.
type launcher func(startupTimeout time.Duration) (process, error)

// EmbeddedTor manages an embedded Tor daemon.
//
// Bootstrapping takes one to three minutes: Tor downloads the directory,
// builds its first circuits and opens the SOCKS and control listeners.
type EmbeddedTor struct {
	launch         launcher
	process        process
	socksAddr      string
	controlAddr    string
	startupTimeout time.Duration
}

// Option configures an EmbeddedTor.
type Option func(*EmbeddedTor)

// WithStartupTimeout sets the maximum time to wait for Tor to bootstrap.
func WithStartupTimeout(timeout time.Duration) Option {
	return func(e *EmbeddedTor) {
		if timeout > 0 {
			e.startupTimeout = timeout
		}
	}
}

// NewEmbeddedTor creates a daemon manager. Call Start to launch Tor.
func NewEmbeddedTor(opts ...Option) *EmbeddedTor {
	e := &EmbeddedTor{
		launch:         startTornago,
		startupTimeout: DefaultStartupTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// startTornago launches tor with OS-assigned SOCKS and control ports.
func startTornago(startupTimeout time.Duration) (process, error) {
	launchCfg, err := tornago.NewTorLaunchConfig(
		tornago.WithTorSocksAddr(":0"),
		tornago.WithTorControlAddr(":0"),
		tornago.WithTorStartupTimeout(startupTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Tor launch config: %w", err)
	}
	proc, err := tornago.StartTorDaemon(launchCfg)
	if err != nil {
		return nil, err
	}
	return proc, nil
}

// Start launches the daemon and waits for it to bootstrap. A daemon that
// comes up after ctx ended is stopped again and ctx's error is returned.
func (e *EmbeddedTor) Start(ctx context.Context) error {
	if e.process != nil {
		return nil
	}

	proc, err := e.launch(e.startupTimeout)
	if err != nil {
		return fmt.Errorf("failed to start embedded Tor daemon: %w", err)
	}

	if err := ctx.Err(); err != nil {
		_ = proc.Stop() //nolint:errcheck // best effort
		return err
	}

	e.process = proc
	e.socksAddr = proc.SocksAddr()
	e.controlAddr = proc.ControlAddr()
	return nil
}

// Stop shuts the daemon down. It is safe to call on a stopped or unstarted
// daemon.
func (e *EmbeddedTor) Stop() error {
	if e.process == nil {
		return nil
	}
	err := e.process.Stop()
	e.process = nil
	e.socksAddr = ""
	e.controlAddr = ""
	return err
}

// IsRunning reports whether the daemon is up.
func (e *EmbeddedTor) IsRunning() bool {
	return e.process != nil
}

// SocksAddr returns the SOCKS5 listener address ("127.0.0.1:42715"), or ""
// when the daemon is not running.
func (e *EmbeddedTor) SocksAddr() string {
	return e.socksAddr
}

// ControlAddr returns the control port address, or "" when the daemon is
// not running.
func (e *EmbeddedTor) ControlAddr() string {
	return e.controlAddr
}

// ProxyURL returns the daemon's SOCKS listener as a socks5h:// proxy URL.
func (e *EmbeddedTor) ProxyURL() (string, error) {
	if !e.IsRunning() {
		return "", ErrNotRunning
	}
	return "socks5h://" + e.socksAddr, nil
}
