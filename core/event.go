package core

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"time"
)

// Level represents the severity level of a log event
type Level int8

const (
	// DebugLevel for detailed debugging information
	DebugLevel Level = iota
	// InfoLevel for general informational messages (default)
	InfoLevel
	// WarnLevel for warning messages
	WarnLevel
	// ErrorLevel for error messages
	ErrorLevel
	// FatalLevel for fatal messages (causes os.Exit(1))
	FatalLevel
	// PanicLevel for panic messages (causes panic)
	PanicLevel
)

// String returns the string representation of the level
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FatalLevel:
		return "FATAL"
	case PanicLevel:
		return "PANIC"
	default:
		return "UNKNOWN"
	}
}

// Number returns the numeric severity exposed as the levelno attribute.
// Debug is 10 and every following level adds 10.
func (l Level) Number() int {
	return (int(l) + 1) * 10
}

// Event is one logging occurrence as handed to formatters. Formatters
// only read an Event; they never modify it or cache data on it, so the
// same Event can be formatted by any number of formatters.
type Event struct {
	Time   time.Time
	Level  Level
	Logger string
	// Message is usually a string but may be any value. Scalars without
	// Args keep their native JSON type.
	Message any
	// Args are positional substitution arguments applied to Message.
	Args      []any
	Caller    CallerInfo
	Goroutine uint64
	// Err carries the exception attached to the event, if any.
	Err error
	// Stack carries stack text requested by the caller, if any.
	Stack string
	// Extras are call-time attributes in insertion order.
	Extras []Field
}

// CallerInfo contains information about the caller
type CallerInfo struct {
	File      string
	ShortFile string
	Line      int
	Function  string
	Defined   bool
}

// eventPool is a pool of Event objects to reduce allocations
var eventPool = sync.Pool{
	New: func() interface{} {
		return &Event{
			Extras: make([]Field, 0, 8), // Pre-allocate for 8 fields
		}
	},
}

// GetEvent retrieves an Event from the pool
func GetEvent() *Event {
	e := eventPool.Get().(*Event)
	e.Time = time.Now()
	e.Extras = e.Extras[:0]
	return e
}

// PutEvent returns an Event to the pool. The caller must make sure no
// handler retained the event.
func PutEvent(e *Event) {
	if e == nil {
		return
	}
	extras := e.Extras[:0]
	*e = Event{Extras: extras}
	eventPool.Put(e)
}

// GetCaller retrieves caller information
func GetCaller(skip int) CallerInfo {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return CallerInfo{}
	}

	fn := runtime.FuncForPC(pc)
	var funcName string
	if fn != nil {
		funcName = fn.Name()
	}

	return CallerInfo{
		File:      file,
		ShortFile: filepath.Base(file),
		Line:      line,
		Function:  funcName,
		Defined:   true,
	}
}

// CallerFromPC resolves caller information from a program counter as
// recorded by log/slog and zap.
func CallerFromPC(pc uintptr) CallerInfo {
	if pc == 0 {
		return CallerInfo{}
	}
	frames := runtime.CallersFrames([]uintptr{pc})
	f, _ := frames.Next()
	if f.File == "" {
		return CallerInfo{}
	}
	return CallerInfo{
		File:      f.File,
		ShortFile: filepath.Base(f.File),
		Line:      f.Line,
		Function:  f.Function,
		Defined:   true,
	}
}

// GoroutineID returns the id of the calling goroutine, parsed from the
// runtime stack header ("goroutine 18 [running]:").
func GoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := bytes.TrimPrefix(buf[:n], []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i > 0 {
		b = b[:i]
	}
	id, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

var (
	startTime   = time.Now()
	processID   = os.Getpid()
	processName = filepath.Base(os.Args[0])
)

// StartTime returns the time the package was loaded. It is the origin of
// the relativeCreated attribute.
func StartTime() time.Time { return startTime }

// ProcessID returns the cached process id.
func ProcessID() int { return processID }

// ProcessName returns the base name of the running executable.
func ProcessName() string { return processName }
