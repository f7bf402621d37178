// Package signature derives parameter signatures from URLs and keeps the
// index of signatures seen during a crawl.
//
// A signature is the sorted set of query-parameter names of a URL. Values
// and order are ignored, so
//
//	/x?a=1&b=2
//	/x?b=9&a=4
//
// share the signature {a,b}. The Index remembers the first URL observed for
// each signature; Consider is the only way to add to it and performs the
// membership check and the insert as one step.
package signature
