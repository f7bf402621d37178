package signature

import (
	"net/url"
	"slices"
	"strings"
)

// Signature is the sorted, deduplicated set of query-parameter names of a URL.
// The zero value is the empty signature.
type Signature struct {
	names []string
}

// New builds a Signature from parameter names in any order.
// Duplicate and empty names are dropped.
func New(names ...string) Signature {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return Signature{names: slices.Compact(out)}
}

// Of returns the signature of rawURL and whether the URL has a query string.
// URLs without a query string have no signature.
//
// Parameter names are decoded the way net/url decodes them. Malformed pairs
// are skipped rather than rejecting the whole query.
func Of(rawURL string) (Signature, bool) {
	query, ok := rawQuery(rawURL)
	if !ok {
		return Signature{}, false
	}
	return New(parameterNames(query)...), true
}

// rawQuery extracts the query component of rawURL, without the fragment.
func rawQuery(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		// Fall back to a plain split for URLs net/url refuses.
		before, _, _ := strings.Cut(rawURL, "#")
		_, query, found := strings.Cut(before, "?")
		if !found || query == "" {
			return "", false
		}
		return query, true
	}
	if u.RawQuery == "" {
		return "", false
	}
	return u.RawQuery, true
}

// parameterNames returns the decoded names of every key=value pair in query.
// Unlike url.ParseQuery it keeps going after a malformed pair. A name with a
// blank value ("a=" or a bare "a") is kept: "?a=&b=1" has the names {a, b},
// not just {b}.
func parameterNames(query string) []string {
	var names []string
	for pair := range strings.SplitSeq(query, "&") {
		if pair == "" {
			continue
		}
		key, _, _ := strings.Cut(pair, "=")
		name, err := url.QueryUnescape(key)
		if err != nil {
			continue
		}
		names = append(names, name)
	}
	return names
}

// Names returns a copy of the parameter names in sorted order.
func (s Signature) Names() []string {
	return slices.Clone(s.names)
}

// Len returns the number of parameter names.
func (s Signature) Len() int {
	return len(s.names)
}

// Key returns a string that identifies the signature, for use as a map key.
// Names are query-escaped and joined by "&", so distinct signatures never
// share a key.
func (s Signature) Key() string {
	escaped := make([]string, len(s.names))
	for i, n := range s.names {
		escaped[i] = url.QueryEscape(n)
	}
	return strings.Join(escaped, "&")
}

// Equal reports whether two signatures have the same names.
func (s Signature) Equal(other Signature) bool {
	return slices.Equal(s.names, other.names)
}

// String returns the signature in set notation, e.g. "{id,page}".
func (s Signature) String() string {
	return "{" + strings.Join(s.names, ",") + "}"
}
