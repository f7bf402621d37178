// Package sink provides the append-only destinations that receive recorded
// URLs. A sink line is a single URL; writers are serialized so lines never
// interleave, and existing content is never truncated.
package sink
