package core

import "errors"

// Common errors.
var (
	ErrNotFound         = errors.New("document not found")
	ErrTransport        = errors.New("document store unreachable")
	ErrInvalidPath      = errors.New("invalid document path")
	ErrClosed           = errors.New("document store is closed")
	ErrWatchUnsupported = errors.New("store does not support watching")
)
