package handler

import (
	"github.com/philipp01105/jsonlog/core"
)

// Handler defines the interface for event handlers
type Handler interface {
	// Handle formats and writes an event. The event must not be
	// retained after Handle returns.
	Handle(e *core.Event) error

	// Close closes the handler and releases resources
	Close() error
}
