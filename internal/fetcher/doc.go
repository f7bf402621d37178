// Package fetcher retrieves pages for the crawl engine.
//
// Fetch never returns an error value. Every request ends in a tagged Result:
//
//   - OutcomeHTML: the response was text/html; Body holds the decoded text.
//   - OutcomeSkipped: the response had another content type. Not an error.
//   - OutcomeFailed: network, timeout, TLS or protocol failure, or an HTTP
//     status of 400 or above. The failure is written to the error log.
//   - OutcomeCancelled: the caller's context ended first. Not logged.
//
// Bodies are read up to a size cap and decoded to UTF-8 using the charset
// declared by the server or sniffed from the document.
package fetcher
