// Package database stores crawl history in SQLite (modernc.org/sqlite, no
// cgo).
//
// HistoryDB keeps two tables:
//   - runs: one row per crawl with its seed, limits, timing, final status
//     and counters
//   - signatures: the distinct parameter signatures recorded by a run, each
//     with its representative URL, unique per run
//
// RunRecorder adapts a run to the sink interface so recorded URLs reach the
// database as they are appended to the output file.
package database
