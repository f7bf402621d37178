// Package main provides the entry point for the paramscan CLI.
//
// paramscan crawls a single web site to a bounded depth and records one
// example URL for every distinct set of query-parameter names it finds.
// The resulting list is the parameter surface to feed into security testing.
//
// Usage:
//
//	paramscan crawl -u https://example.com -d 3
//	paramscan history
//
// See --help for all available options.
package main

func main() {
	Execute()
}
