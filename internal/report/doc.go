// Package report renders crawl progress and run results.
//
// Progress keeps the live visited/unique counters and redraws a single
// status line. Flush writes every recorded signature's URL to a sink when a
// crawl stops early.
//
// Run summaries are rendered by Writer implementations:
//   - SimpleWriter: plain text for the terminal
//   - MarkdownWriter: Markdown for sharing (--summary, history show --markdown)
//   - JSONWriter: JSON for other tools (history --json)
package report
