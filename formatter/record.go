package formatter

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/philipp01105/jsonlog/core"
)

// ExceptionRenderer renders the error attached to an event as the
// exc_text attribute.
type ExceptionRenderer func(err error) string

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// DefaultExceptionRenderer renders errors carrying a
// github.com/pkg/errors stack trace with that trace, and every other
// error with Error().
func DefaultExceptionRenderer(err error) string {
	if err == nil {
		return ""
	}
	if _, ok := err.(stackTracer); ok {
		return fmt.Sprintf("%+v", err)
	}
	var st stackTracer
	if errors.As(err, &st) {
		return fmt.Sprintf("%s%+v", err.Error(), st.StackTrace())
	}
	return err.Error()
}

// normalizer turns an Event into the attribute map used by templates
// and rules. It holds no per-call state.
type normalizer struct {
	dates     *timeFormat
	needTime  bool
	renderExc ExceptionRenderer
}

func (n *normalizer) attributes(e *core.Event) map[string]any {
	attrs := make(map[string]any, len(core.StandardAttributes)+len(e.Extras))

	module := strings.TrimSuffix(e.Caller.ShortFile, filepath.Ext(e.Caller.ShortFile))
	funcName := e.Caller.Function
	if i := strings.LastIndexByte(funcName, '/'); i >= 0 {
		funcName = funcName[i+1:]
	}
	nanos := e.Time.UnixNano()

	attrs[core.AttrName] = e.Logger
	attrs[core.AttrLevelNo] = e.Level.Number()
	attrs[core.AttrLevelName] = e.Level.String()
	attrs[core.AttrPathname] = e.Caller.File
	attrs[core.AttrFilename] = e.Caller.ShortFile
	attrs[core.AttrModule] = module
	attrs[core.AttrLineNo] = e.Caller.Line
	attrs[core.AttrFuncName] = funcName
	attrs[core.AttrCreated] = float64(nanos) / 1e9
	attrs[core.AttrMsecs] = e.Time.Nanosecond() / int(time.Millisecond)
	attrs[core.AttrRelativeCreated] = float64(e.Time.Sub(core.StartTime())) / float64(time.Millisecond)
	attrs[core.AttrThread] = e.Goroutine
	attrs[core.AttrProcess] = core.ProcessID()
	attrs[core.AttrProcessName] = core.ProcessName()
	if n.needTime {
		attrs[core.AttrAscTime] = n.dates.format(e.Time)
	}

	message := normalizeMessage(e.Message, e.Args)
	if e.Err != nil {
		exc := strings.TrimSuffix(n.renderExc(e.Err), "\n")
		attrs[core.AttrExcText] = exc
		message = appendLine(message, exc)
	}
	if e.Stack != "" {
		attrs[core.AttrStackInfo] = e.Stack
		message = appendLine(message, strings.TrimSuffix(e.Stack, "\n"))
	}
	attrs[core.AttrMessage] = message

	for _, f := range e.Extras {
		if !core.IsReserved(f.Key) {
			attrs[f.Key] = f.Value()
		}
	}
	return attrs
}

// normalizeMessage keeps scalar messages without args in their native
// type and renders everything else as a string.
func normalizeMessage(msg any, args []any) any {
	if len(args) == 0 {
		if isScalar(msg) {
			return msg
		}
		return messageString(msg)
	}
	format := messageString(msg)
	out, err := percentSubstitute(format, args)
	if err != nil {
		return fmt.Sprintf(format, args...)
	}
	return out
}

func isScalar(v any) bool {
	switch v.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}

func messageString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return valueString(v)
}

// appendLine joins text to msg on a new line unless msg already ends
// with one.
func appendLine(msg any, text string) string {
	s := messageString(msg)
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	return s + text
}
