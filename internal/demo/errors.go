package demo

import "go.trai.ch/zerr"

var (
	// ErrUnknownBackend is returned when no registered HAL backend has the
	// requested name.
	ErrUnknownBackend = zerr.New("unknown backend")

	// ErrNoAdapter is returned when a backend exposes no adapter.
	ErrNoAdapter = zerr.New("no adapter available")

	// ErrInvalidFrames is returned for a negative frame count.
	ErrInvalidFrames = zerr.New("invalid frame count")
)
