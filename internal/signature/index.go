package signature

import "sync"

// Entry is a recorded signature with the first URL observed bearing it.
type Entry struct {
	Signature Signature
	URL       string
}

// Decision is the result of Index.Consider.
type Decision struct {
	// HasQuery is false when the URL had no query string; such URLs are
	// never novel and carry no signature.
	HasQuery bool

	// Novel is true when this call recorded a new signature.
	Novel bool

	// Signature is the URL's signature when HasQuery is true.
	Signature Signature
}

// Index maps signatures to their representative URL.
// It is safe for concurrent use.
type Index struct {
	mu      sync.Mutex
	entries map[string]int
	order   []Entry
}

// NewIndex returns an empty Index.
func NewIndex() *Index {
	return &Index{
		entries: make(map[string]int),
	}
}

// Consider computes the signature of rawURL and records it if it has not
// been seen before. The lookup and insert happen under one lock, so two
// concurrent calls with the same signature never both report Novel.
func (ix *Index) Consider(rawURL string) Decision {
	sig, ok := Of(rawURL)
	if !ok {
		return Decision{}
	}

	key := sig.Key()

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if _, seen := ix.entries[key]; seen {
		return Decision{HasQuery: true, Signature: sig}
	}
	ix.entries[key] = len(ix.order)
	ix.order = append(ix.order, Entry{Signature: sig, URL: rawURL})

	return Decision{HasQuery: true, Novel: true, Signature: sig}
}

// Lookup returns the representative URL for sig.
func (ix *Index) Lookup(sig Signature) (string, bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	i, ok := ix.entries[sig.Key()]
	if !ok {
		return "", false
	}
	return ix.order[i].URL, true
}

// Len returns the number of recorded signatures.
func (ix *Index) Len() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return len(ix.order)
}

// Entries returns a snapshot of all entries in discovery order.
func (ix *Index) Entries() []Entry {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	out := make([]Entry, len(ix.order))
	copy(out, ix.order)
	return out
}
