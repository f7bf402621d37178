package sink

import "errors"

var (
	// ErrMultiline is returned when a line contains a line break.
	ErrMultiline = errors.New("sink line must not contain a line break")
	// ErrClosed is returned when appending to a closed sink.
	ErrClosed = errors.New("sink is closed")
)
