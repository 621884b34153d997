package handler

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/philipp01105/jsonlog/core"
)

// Extra keys added by SlogHandler when the context carries a span.
const (
	TraceIDKey = "trace_id"
	SpanIDKey  = "span_id"
)

// SlogHandler is an adapter that implements slog.Handler using a jsonlog Handler.
// This allows jsonlog to be used as a backend for log/slog.
type SlogHandler struct {
	handler Handler
	level   core.Level
	name    string
	attrs   []core.Field
	group   string
}

// NewSlogHandler creates a new slog.Handler adapter wrapping the given Handler.
func NewSlogHandler(h Handler, level core.Level) *SlogHandler {
	return &SlogHandler{
		handler: h,
		level:   level,
	}
}

// Named returns a copy of the handler whose events carry the given
// logger name.
func (s *SlogHandler) Named(name string) *SlogHandler {
	c := *s
	c.name = name
	return &c
}

// Enabled reports whether the handler handles records at the given level.
func (s *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return slogLevelToCore(level) >= s.level
}

// Handle converts a slog.Record to a core.Event and passes it to the
// wrapped handler. The first error-valued record attribute becomes the
// event's exception; a valid span in ctx adds trace_id and span_id.
func (s *SlogHandler) Handle(ctx context.Context, record slog.Record) error {
	e := core.GetEvent()
	defer core.PutEvent(e)

	if !record.Time.IsZero() {
		e.Time = record.Time
	}
	e.Level = slogLevelToCore(record.Level)
	e.Logger = s.name
	e.Message = record.Message
	e.Caller = core.CallerFromPC(record.PC)

	// Add pre-configured attrs
	if len(s.attrs) > 0 {
		e.Extras = append(e.Extras, s.attrs...)
	}

	// Add record attrs
	record.Attrs(func(a slog.Attr) bool {
		if v := a.Value.Resolve(); v.Kind() == slog.KindAny && e.Err == nil {
			if err, ok := v.Any().(error); ok {
				e.Err = err
				return true
			}
		}
		e.Extras = appendAttr(e.Extras, s.group, a)
		return true
	})

	if ctx != nil {
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			e.Extras = append(e.Extras,
				core.Field{Key: TraceIDKey, Type: core.StringType, Str: sc.TraceID().String()},
				core.Field{Key: SpanIDKey, Type: core.StringType, Str: sc.SpanID().String()},
			)
		}
	}

	return s.handler.Handle(e)
}

// WithAttrs returns a new SlogHandler with additional attributes.
func (s *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return s
	}
	newAttrs := make([]core.Field, len(s.attrs), len(s.attrs)+len(attrs))
	copy(newAttrs, s.attrs)
	for _, a := range attrs {
		newAttrs = appendAttr(newAttrs, s.group, a)
	}
	c := *s
	c.attrs = newAttrs
	return &c
}

// WithGroup returns a new SlogHandler with the given group name.
func (s *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return s
	}
	c := *s
	c.group = joinKey(s.group, name)
	return &c
}

// slogLevelToCore converts a slog.Level to a core.Level.
func slogLevelToCore(level slog.Level) core.Level {
	switch {
	case level >= slog.LevelError:
		return core.ErrorLevel
	case level >= slog.LevelWarn:
		return core.WarnLevel
	case level >= slog.LevelInfo:
		return core.InfoLevel
	default:
		return core.DebugLevel
	}
}

func joinKey(group, key string) string {
	if group == "" {
		return key
	}
	return group + "." + key
}

// appendAttr converts a slog.Attr to fields, prepending the group prefix
// if present. Groups are flattened into dotted keys; empty attributes
// are dropped as slog requires.
func appendAttr(fields []core.Field, group string, a slog.Attr) []core.Field {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return fields
	}

	if a.Value.Kind() == slog.KindGroup {
		prefix := group
		if a.Key != "" {
			prefix = joinKey(group, a.Key)
		}
		for _, ga := range a.Value.Group() {
			fields = appendAttr(fields, prefix, ga)
		}
		return fields
	}

	key := joinKey(group, a.Key)
	switch a.Value.Kind() {
	case slog.KindString:
		return append(fields, core.Field{Key: key, Type: core.StringType, Str: a.Value.String()})
	case slog.KindInt64:
		return append(fields, core.Field{Key: key, Type: core.Int64Type, Int64: a.Value.Int64()})
	case slog.KindUint64:
		return append(fields, core.Field{Key: key, Type: core.Uint64Type, Int64: int64(a.Value.Uint64())})
	case slog.KindFloat64:
		return append(fields, core.Field{Key: key, Type: core.Float64Type, Float64: a.Value.Float64()})
	case slog.KindBool:
		val := int64(0)
		if a.Value.Bool() {
			val = 1
		}
		return append(fields, core.Field{Key: key, Type: core.BoolType, Int64: val})
	case slog.KindTime:
		return append(fields, core.Field{Key: key, Type: core.TimeType, Int64: a.Value.Time().UnixNano()})
	case slog.KindDuration:
		return append(fields, core.Field{Key: key, Type: core.DurationType, Int64: int64(a.Value.Duration())})
	default:
		if err, ok := a.Value.Any().(error); ok {
			return append(fields, core.Field{Key: key, Type: core.ErrorType, Str: err.Error()})
		}
		return append(fields, core.Field{Key: key, Type: core.AnyType, Any: a.Value.Any()})
	}
}
