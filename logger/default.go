package logger

import (
	"io"
	"os"
	"sync"

	"github.com/philipp01105/jsonlog/core"
	"github.com/philipp01105/jsonlog/formatter"
	"github.com/philipp01105/jsonlog/handler"
)

var (
	defaultLogger *Logger
	defaultMu     sync.RWMutex
)

func init() {
	// The zero Options always construct.
	f, _ := formatter.NewJSONFormatter(formatter.Options{})
	h := handler.NewConsoleHandler(handler.ConsoleConfig{
		Formatter: f,
		Fallback:  formatter.NewTextFormatter(formatter.TextOptions{}),
	})

	defaultLogger = NewBuilder().
		WithHandler(h).
		WithLevel(core.InfoLevel).
		Build()
}

// Default returns the default logger
func Default() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault sets the default logger
func SetDefault(l *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// BasicOptions configure BasicConfig.
type BasicOptions struct {
	// Writer receives the output (default: os.Stderr)
	Writer io.Writer
	// Level is the minimum level logged
	Level core.Level
	// Name is the root logger name
	Name string
	// Caller enables caller capture, needed for the pathname, filename,
	// module, lineno and funcName attributes
	Caller bool
	// Formatter configures the JSON formatter
	Formatter formatter.Options
}

// BasicConfig replaces the default logger with one writing JSON through
// a console handler. Formatter errors are returned and leave the
// default logger unchanged.
func BasicConfig(opts BasicOptions) error {
	f, err := formatter.NewJSONFormatter(opts.Formatter)
	if err != nil {
		return err
	}
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	h := handler.NewConsoleHandler(handler.ConsoleConfig{
		Writer:    w,
		Formatter: f,
		Fallback:  formatter.NewTextFormatter(formatter.TextOptions{IncludeCaller: opts.Caller}),
	})

	SetDefault(NewBuilder().
		WithHandler(h).
		WithLevel(opts.Level).
		WithName(opts.Name).
		WithCaller(opts.Caller).
		WithGoroutineID(true).
		Build())
	return nil
}

// Package-level convenience functions using the default logger

// Debug logs a debug message using the default logger
func Debug(msg any, fields ...core.Field) {
	if l := Default(); core.DebugLevel >= l.level {
		l.log(core.DebugLevel, msg, nil, nil, fields)
	}
}

// Info logs an info message using the default logger
func Info(msg any, fields ...core.Field) {
	if l := Default(); core.InfoLevel >= l.level {
		l.log(core.InfoLevel, msg, nil, nil, fields)
	}
}

// Warn logs a warning message using the default logger
func Warn(msg any, fields ...core.Field) {
	if l := Default(); core.WarnLevel >= l.level {
		l.log(core.WarnLevel, msg, nil, nil, fields)
	}
}

// Error logs an error message using the default logger
func Error(msg any, fields ...core.Field) {
	if l := Default(); core.ErrorLevel >= l.level {
		l.log(core.ErrorLevel, msg, nil, nil, fields)
	}
}

// Exception logs msg with err attached using the default logger
func Exception(msg any, err error, fields ...core.Field) {
	if l := Default(); core.ErrorLevel >= l.level {
		l.log(core.ErrorLevel, msg, nil, err, fields)
	}
}

// Fatal logs a fatal message using the default logger and exits the program
func Fatal(msg any, fields ...core.Field) {
	Default().log(core.FatalLevel, msg, nil, nil, fields)
	osExit(1)
}

// Panic logs a panic message using the default logger and panics
func Panic(msg any, fields ...core.Field) {
	Default().log(core.PanicLevel, msg, nil, nil, fields)
	panic(msg)
}

// Debugf logs a formatted debug message using the default logger
func Debugf(format string, args ...any) {
	if l := Default(); core.DebugLevel >= l.level {
		l.log(core.DebugLevel, format, args, nil, nil)
	}
}

// Infof logs a formatted info message using the default logger
func Infof(format string, args ...any) {
	if l := Default(); core.InfoLevel >= l.level {
		l.log(core.InfoLevel, format, args, nil, nil)
	}
}

// Warnf logs a formatted warning message using the default logger
func Warnf(format string, args ...any) {
	if l := Default(); core.WarnLevel >= l.level {
		l.log(core.WarnLevel, format, args, nil, nil)
	}
}

// Errorf logs a formatted error message using the default logger
func Errorf(format string, args ...any) {
	if l := Default(); core.ErrorLevel >= l.level {
		l.log(core.ErrorLevel, format, args, nil, nil)
	}
}

// With creates a new logger with additional fields
func With(fields ...core.Field) *Logger {
	return Default().With(fields...)
}

// Named creates a named child of the default logger
func Named(name string) *Logger {
	return Default().Named(name)
}
