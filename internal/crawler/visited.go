package crawler

import "sync"

// VisitedSet records URLs that a task has claimed. URLs are compared as
// exact strings. It is safe for concurrent use.
type VisitedSet struct {
	mu   sync.Mutex
	urls map[string]struct{}
}

// NewVisitedSet returns an empty set.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{urls: make(map[string]struct{})}
}

// MarkIfNotVisited adds rawURL and reports whether it was absent.
// Exactly one of any number of concurrent callers with the same URL gets true.
func (v *VisitedSet) MarkIfNotVisited(rawURL string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.urls[rawURL]; ok {
		return false
	}
	v.urls[rawURL] = struct{}{}
	return true
}

// Contains reports whether rawURL has been claimed.
func (v *VisitedSet) Contains(rawURL string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	_, ok := v.urls[rawURL]
	return ok
}

// Len returns the number of claimed URLs.
func (v *VisitedSet) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.urls)
}
