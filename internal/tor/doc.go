// Package tor runs an embedded Tor daemon for crawls that must go through
// the Tor network.
//
// The daemon is started with tornago and exposes a SOCKS5 listener on a
// random local port. ProxyURL turns that listener into a socks5h:// URL the
// fetcher's HTTP client accepts, so host names are resolved inside Tor.
package tor
