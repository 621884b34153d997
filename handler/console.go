package handler

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/philipp01105/jsonlog/core"
	"github.com/philipp01105/jsonlog/formatter"
)

// ConsoleHandler writes formatted events to stdout or any other writer
type ConsoleHandler struct {
	writer          io.Writer
	formatter       formatter.Formatter
	writerFormatter formatter.WriterFormatter
	fallback        formatter.Formatter
	mu              sync.Mutex
	stats           *Stats
	closed          bool
}

// ConsoleConfig holds configuration for console handler
type ConsoleConfig struct {
	// Writer to write to (default: os.Stdout)
	Writer io.Writer
	// Formatter to use (default: TextFormatter)
	Formatter formatter.Formatter
	// Fallback renders events the Formatter rejects (default: none, the
	// formatting error is returned)
	Fallback formatter.Formatter
}

// NewConsoleHandler creates a new console handler
func NewConsoleHandler(cfg ConsoleConfig) *ConsoleHandler {
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	if cfg.Formatter == nil {
		cfg.Formatter = formatter.NewTextFormatter(formatter.TextOptions{})
	}

	h := &ConsoleHandler{
		writer:    cfg.Writer,
		formatter: cfg.Formatter,
		fallback:  cfg.Fallback,
		stats:     NewStats(),
	}

	// Cache WriterFormatter for the single-write path
	h.writerFormatter, _ = cfg.Formatter.(formatter.WriterFormatter)

	return h
}

// Handle formats and writes an event. When the formatter fails and a
// fallback is configured, the fallback output is written instead and
// the event counts as a fallback.
func (h *ConsoleHandler) Handle(e *core.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return errHandlerClosed
	}

	var err error
	if h.writerFormatter != nil {
		err = h.writerFormatter.FormatTo(e, h.writer)
	} else {
		var data []byte
		if data, err = h.formatter.Format(e); err == nil {
			_, err = h.writer.Write(data)
		}
	}
	if err == nil {
		h.stats.IncrementProcessed()
		return nil
	}
	if h.fallback == nil || !isFormatError(err) {
		h.stats.IncrementFailed()
		return err
	}

	data, fbErr := h.fallback.Format(e)
	if fbErr == nil {
		_, fbErr = h.writer.Write(data)
	}
	if fbErr != nil {
		h.stats.IncrementFailed()
		return fmt.Errorf("fallback after %v: %w", err, fbErr)
	}
	h.stats.IncrementFallback()
	return nil
}

// Stats returns a snapshot of the current statistics
func (h *ConsoleHandler) Stats() Snapshot {
	return h.stats.GetSnapshot()
}

// Close marks the handler closed. The writer is not closed.
func (h *ConsoleHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}
