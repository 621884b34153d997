// Package benchmark compares jsonlog with other Go loggers. It is a
// separate module so that the comparison libraries stay out of the main
// module's dependencies.
package benchmark

import (
	"github.com/philipp01105/jsonlog/core"
	"github.com/philipp01105/jsonlog/handler"
)

// noopHandler drops events without formatting them, isolating the cost
// of event construction.
type noopHandler struct{}

func newNoopHandler() handler.Handler {
	return noopHandler{}
}

func (noopHandler) Handle(e *core.Event) error {
	_ = e.Message
	return nil
}

func (noopHandler) Close() error {
	return nil
}
