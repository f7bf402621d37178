// Package log builds the slog loggers used by paramscan.
//
// Two loggers exist during a crawl:
//
//   - the diagnostic logger (NewSecureLogger), a text handler on stderr whose
//     level follows --verbose;
//   - the error log (NewErrorLogger), an append-only file with one line per
//     record in the form "<timestamp>:<LEVEL>:<message>".
//
// Both wrap their handler in SecureHandler, which masks header, cookie and
// credential values before they reach any output. Operator-supplied cookies
// and Authorization headers are logged at debug level, so the masking
// applies even in verbose mode.
package log
