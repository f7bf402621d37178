// Package model defines the data structures shared by the crawler, the
// reporters and the history database.
//
// This package contains the following main types:
//   - Scope: The immutable crawl boundary (target host and maximum depth)
//   - CrawlTarget: A URL scheduled for fetching together with its depth
//   - RunSummary: The outcome of one crawl, as reported and stored
//
// Models live in their own package so that crawler, report and database can
// all use them without importing each other.
package model
