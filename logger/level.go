package logger

import (
	"strconv"
	"strings"

	"github.com/philipp01105/jsonlog/core"
)

// Level Re-export type and constants for convenience
type Level = core.Level

const (
	DebugLevel = core.DebugLevel
	InfoLevel  = core.InfoLevel
	WarnLevel  = core.WarnLevel
	ErrorLevel = core.ErrorLevel
	FatalLevel = core.FatalLevel
	PanicLevel = core.PanicLevel
)

// ParseLevel converts a level name or levelno (10, 20, ...) to a Level.
// Unknown input yields InfoLevel.
func ParseLevel(s string) Level {
	l, ok := LookupLevel(s)
	if !ok {
		return InfoLevel
	}
	return l
}

// LookupLevel is ParseLevel reporting whether s was recognized.
func LookupLevel(s string) (Level, bool) {
	s = strings.TrimSpace(s)
	switch strings.ToUpper(s) {
	case "DEBUG":
		return DebugLevel, true
	case "INFO":
		return InfoLevel, true
	case "WARN", "WARNING":
		return WarnLevel, true
	case "ERROR":
		return ErrorLevel, true
	case "FATAL", "CRITICAL":
		return FatalLevel, true
	case "PANIC":
		return PanicLevel, true
	}
	if n, err := strconv.Atoi(s); err == nil {
		for l := DebugLevel; l <= PanicLevel; l++ {
			if l.Number() == n {
				return l, true
			}
		}
	}
	return InfoLevel, false
}
