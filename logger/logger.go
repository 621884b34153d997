package logger

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/philipp01105/jsonlog/core"
	"github.com/philipp01105/jsonlog/handler"
)

// osExit is a variable to allow overriding os.Exit in tests
var osExit = os.Exit

// noStack disables stack capture
const noStack core.Level = core.PanicLevel + 1

// Logger is the main logging interface (immutable)
type Logger struct {
	handler          handler.Handler
	level            core.Level
	name             string
	fields           []core.Field
	includeCaller    bool
	includeGoroutine bool
	stackLevel       core.Level
	callerSkip       int
	clock            core.Clock
}

// Builder provides a fluent API for building Logger instances
type Builder struct {
	l Logger
}

// NewBuilder creates a new logger builder
func NewBuilder() *Builder {
	return &Builder{l: Logger{
		level:      core.InfoLevel, // Default level
		stackLevel: noStack,
		callerSkip: 3, // Default skip for GetCaller
		clock:      core.SystemClock,
	}}
}

// WithHandler sets the handler
func (b *Builder) WithHandler(h handler.Handler) *Builder {
	b.l.handler = h
	return b
}

// WithLevel sets the log level
func (b *Builder) WithLevel(level core.Level) *Builder {
	b.l.level = level
	return b
}

// WithName sets the logger name reported as the name attribute
func (b *Builder) WithName(name string) *Builder {
	b.l.name = name
	return b
}

// WithFields adds default fields to all log events
func (b *Builder) WithFields(fields ...core.Field) *Builder {
	b.l.fields = append(b.l.fields, fields...)
	return b
}

// WithCaller enables caller information
func (b *Builder) WithCaller(enabled bool) *Builder {
	b.l.includeCaller = enabled
	return b
}

// WithGoroutineID records the calling goroutine id as the thread
// attribute
func (b *Builder) WithGoroutineID(enabled bool) *Builder {
	b.l.includeGoroutine = enabled
	return b
}

// WithStackInfo captures the calling goroutine's stack for events at
// level or above
func (b *Builder) WithStackInfo(level core.Level) *Builder {
	b.l.stackLevel = level
	return b
}

// WithCoarseClock timestamps events with core.CoarseClock instead of
// reading the wall clock for every event
func (b *Builder) WithCoarseClock(enabled bool) *Builder {
	if enabled {
		b.l.clock = core.CoarseClock()
	} else {
		b.l.clock = core.SystemClock
	}
	return b
}

// WithClock sets the event time source
func (b *Builder) WithClock(c core.Clock) *Builder {
	if c != nil {
		b.l.clock = c
	}
	return b
}

// Build creates the Logger instance
func (b *Builder) Build() *Logger {
	l := b.l
	l.fields = append([]core.Field(nil), b.l.fields...)
	return &l
}

// With creates a new Logger with additional fields (immutable operation)
func (l *Logger) With(fields ...core.Field) *Logger {
	newFields := make([]core.Field, len(l.fields)+len(fields))
	copy(newFields, l.fields)
	copy(newFields[len(l.fields):], fields)

	c := *l
	c.fields = newFields
	return &c
}

// Named creates a child Logger. Names nest with dots: a logger named
// "app" yields "app.db" for Named("db").
func (l *Logger) Named(name string) *Logger {
	c := *l
	switch {
	case l.name == "":
		c.name = name
	case name != "":
		c.name = l.name + "." + name
	}
	return &c
}

// Name returns the logger name
func (l *Logger) Name() string { return l.name }

// Enabled reports whether events at level are handled
func (l *Logger) Enabled(level core.Level) bool {
	return level >= l.level && l.handler != nil
}

// Log logs a message at the specified level
func (l *Logger) Log(level core.Level, msg any, fields ...core.Field) {
	// Level check optimization - exit early BEFORE any allocations
	if level < l.level {
		return
	}
	l.log(level, msg, nil, nil, fields)
}

// log builds the event and hands it to the handler. It must be called
// directly from the exported method so that callerSkip holds.
func (l *Logger) log(level core.Level, msg any, args []any, err error, fields []core.Field) {
	// Handler check - exit if no handler (avoid any work)
	if l.handler == nil {
		return
	}

	// Get event from pool AFTER level check
	e := core.GetEvent()
	e.Time = l.clock()
	e.Level = level
	e.Logger = l.name
	e.Message = msg
	e.Args = args
	e.Err = err

	// Add logger's default fields
	if len(l.fields) > 0 {
		e.Extras = append(e.Extras, l.fields...)
	}

	// Add provided fields
	if len(fields) > 0 {
		e.Extras = append(e.Extras, fields...)
	}

	if l.includeCaller {
		e.Caller = core.GetCaller(l.callerSkip)
	}
	if l.includeGoroutine {
		e.Goroutine = core.GoroutineID()
	}
	if level >= l.stackLevel {
		e.Stack = string(debug.Stack())
	}

	// Handlers are synchronous, so the event can be recycled even when
	// handling failed.
	_ = l.handler.Handle(e)
	core.PutEvent(e)
}

// Debug logs a debug message
func (l *Logger) Debug(msg any, fields ...core.Field) {
	if core.DebugLevel < l.level {
		return
	}
	l.log(core.DebugLevel, msg, nil, nil, fields)
}

// Info logs an info message
func (l *Logger) Info(msg any, fields ...core.Field) {
	if core.InfoLevel < l.level {
		return
	}
	l.log(core.InfoLevel, msg, nil, nil, fields)
}

// Warn logs a warning message
func (l *Logger) Warn(msg any, fields ...core.Field) {
	if core.WarnLevel < l.level {
		return
	}
	l.log(core.WarnLevel, msg, nil, nil, fields)
}

// Error logs an error message
func (l *Logger) Error(msg any, fields ...core.Field) {
	if core.ErrorLevel < l.level {
		return
	}
	l.log(core.ErrorLevel, msg, nil, nil, fields)
}

// Exception logs msg at error level with err attached. Formatters fold
// the rendered error into the message and expose it as exc_text.
func (l *Logger) Exception(msg any, err error, fields ...core.Field) {
	if core.ErrorLevel < l.level {
		return
	}
	l.log(core.ErrorLevel, msg, nil, err, fields)
}

// Fatal logs a fatal message and exits the program with os.Exit(1)
func (l *Logger) Fatal(msg any, fields ...core.Field) {
	l.log(core.FatalLevel, msg, nil, nil, fields)
	osExit(1)
}

// Panic logs a panic message and panics
func (l *Logger) Panic(msg any, fields ...core.Field) {
	l.log(core.PanicLevel, msg, nil, nil, fields)
	panic(msg)
}

// Debugf logs a debug message with formatting. Substitution is done by
// the formatter.
func (l *Logger) Debugf(format string, args ...any) {
	if core.DebugLevel < l.level {
		return
	}
	l.log(core.DebugLevel, format, args, nil, nil)
}

// Infof logs an info message with formatting
func (l *Logger) Infof(format string, args ...any) {
	if core.InfoLevel < l.level {
		return
	}
	l.log(core.InfoLevel, format, args, nil, nil)
}

// Warnf logs a warning message with formatting
func (l *Logger) Warnf(format string, args ...any) {
	if core.WarnLevel < l.level {
		return
	}
	l.log(core.WarnLevel, format, args, nil, nil)
}

// Errorf logs an error message with formatting
func (l *Logger) Errorf(format string, args ...any) {
	if core.ErrorLevel < l.level {
		return
	}
	l.log(core.ErrorLevel, format, args, nil, nil)
}

// Fatalf logs a fatal message with formatting and exits the program with os.Exit(1)
func (l *Logger) Fatalf(format string, args ...any) {
	l.log(core.FatalLevel, format, args, nil, nil)
	osExit(1)
}

// Panicf logs a panic message with formatting and panics
func (l *Logger) Panicf(format string, args ...any) {
	l.log(core.PanicLevel, format, args, nil, nil)
	panic(fmt.Sprintf(format, args...))
}

// Close closes the logger's handler
func (l *Logger) Close() error {
	if l.handler != nil {
		return l.handler.Close()
	}
	return nil
}
