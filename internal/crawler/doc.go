// Package crawler implements the parameter-discovery crawl.
//
// # Components
//
//   - Spider: expands targets from the seed, one task per target, on a
//     single errgroup. The gate.Gate is the only throttle on fetches.
//   - LinkExtractor: tokenizes fetched HTML and lazily yields anchors that
//     resolve to the scope host.
//   - VisitedSet: exact-string set of URLs already claimed by a task.
//
// # Task lifecycle
//
// A task stops early when the crawl context is done, when its depth exceeds
// the scope, or when another task already claimed its URL. Otherwise it
// acquires the gate, fetches, releases, and walks the page's links. Each
// link is offered to the signature index; a novel signature is appended to
// the sink immediately. Links that are unvisited and within depth become
// child tasks at depth+1.
//
// Fetch and parse failures end only the task that hit them. A sink failure
// ends the whole crawl.
//
// # Usage
//
//	spider := crawler.NewSpider(scope, f, g, index, out,
//		crawler.WithLogger(logger),
//		crawler.WithProgress(progress.Update))
//	err := spider.Crawl(ctx, seed)
package crawler
