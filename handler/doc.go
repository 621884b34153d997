// Package handler dispatches formatted events to outputs.
//
// Handlers are synchronous: Handle formats the event with the
// configured formatter and writes the result before returning, so the
// caller may recycle the event afterwards. Buffering, rotation and
// delivery guarantees are left to the writer.
//
// Built-in handlers:
//
//   - ConsoleHandler writes formatted events to any io.Writer (default:
//     stdout), optionally falling back to a second formatter when the
//     primary one fails.
//   - MultiHandler fans out a single event to multiple child handlers.
//   - SlogHandler adapts a Handler to log/slog.Handler, so jsonlog can
//     serve as a backend for the standard library.
//   - ZapCore adapts a Handler to zapcore.Core for go.uber.org/zap.
//
// ConsoleHandler tracks processed, failed and fallback counts via the
// Stats type, which can be queried at runtime for monitoring.
package handler
