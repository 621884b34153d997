package handler

import (
	"go.uber.org/multierr"

	"github.com/philipp01105/jsonlog/core"
)

// MultiHandler sends each event to multiple handlers
type MultiHandler struct {
	handlers []Handler
}

// NewMultiHandler creates a new multi-handler
func NewMultiHandler(handlers ...Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

// Handle passes the event to every handler, in order. A failing handler
// does not stop the others; all errors are combined.
func (h *MultiHandler) Handle(e *core.Event) error {
	var err error
	for _, handler := range h.handlers {
		err = multierr.Append(err, handler.Handle(e))
	}
	return err
}

// Close closes all handlers
func (h *MultiHandler) Close() error {
	var err error
	for _, handler := range h.handlers {
		err = multierr.Append(err, handler.Close())
	}
	return err
}
