package crawler

import "errors"

// ErrTaskPanic is wrapped by the error Crawl returns when a task panicked.
var ErrTaskPanic = errors.New("crawl task panicked")
