package handler

import (
	"path/filepath"
	"sort"

	"go.uber.org/zap/zapcore"

	"github.com/philipp01105/jsonlog/core"
)

// ZapCore is a zapcore.Core that hands zap entries to a jsonlog
// Handler, so a *zap.Logger can be rendered by jsonlog formatters.
//
//	logger := zap.New(handler.NewZapCore(h, zapcore.InfoLevel))
type ZapCore struct {
	zapcore.LevelEnabler
	handler Handler
	fields  []core.Field
	err     error
}

// NewZapCore creates a zapcore.Core writing to h.
func NewZapCore(h Handler, enab zapcore.LevelEnabler) *ZapCore {
	return &ZapCore{LevelEnabler: enab, handler: h}
}

// With returns a copy of the core with fields added to every entry.
func (c *ZapCore) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.fields = make([]core.Field, len(c.fields), len(c.fields)+len(fields))
	copy(clone.fields, c.fields)
	clone.fields, clone.err = appendZapFields(clone.fields, c.err, fields)
	return &clone
}

// Check adds the core to ce when the entry's level is enabled.
func (c *ZapCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

// Write converts the entry into a core.Event. The first error field
// becomes the event's exception and the entry stack its stack info.
func (c *ZapCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	e := core.GetEvent()
	defer core.PutEvent(e)

	if !ent.Time.IsZero() {
		e.Time = ent.Time
	}
	e.Level = zapLevelToCore(ent.Level)
	e.Logger = ent.LoggerName
	e.Message = ent.Message
	if ent.Caller.Defined {
		e.Caller = core.CallerInfo{
			File:      ent.Caller.File,
			ShortFile: filepath.Base(ent.Caller.File),
			Line:      ent.Caller.Line,
			Function:  ent.Caller.Function,
			Defined:   true,
		}
	}
	e.Stack = ent.Stack
	e.Extras = append(e.Extras, c.fields...)
	e.Extras, e.Err = appendZapFields(e.Extras, c.err, fields)

	return c.handler.Handle(e)
}

// Sync flushes the handler when it supports it.
func (c *ZapCore) Sync() error {
	if s, ok := c.handler.(interface{ Sync() error }); ok {
		return s.Sync()
	}
	return nil
}

// appendZapFields encodes each zap field on its own so that field order
// survives. Namespaces are not supported and encode as empty objects.
func appendZapFields(dst []core.Field, err error, fields []zapcore.Field) ([]core.Field, error) {
	for _, f := range fields {
		if f.Type == zapcore.ErrorType && err == nil {
			if fe, ok := f.Interface.(error); ok {
				err = fe
				continue
			}
		}
		enc := zapcore.NewMapObjectEncoder()
		f.AddTo(enc)
		switch len(enc.Fields) {
		case 0:
		case 1:
			for k, v := range enc.Fields {
				dst = append(dst, core.FieldOf(k, v))
			}
		default:
			keys := make([]string, 0, len(enc.Fields))
			for k := range enc.Fields {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				dst = append(dst, core.FieldOf(k, enc.Fields[k]))
			}
		}
	}
	return dst, err
}

func zapLevelToCore(level zapcore.Level) core.Level {
	switch {
	case level >= zapcore.FatalLevel:
		return core.FatalLevel
	case level >= zapcore.DPanicLevel:
		return core.PanicLevel
	case level >= zapcore.ErrorLevel:
		return core.ErrorLevel
	case level >= zapcore.WarnLevel:
		return core.WarnLevel
	case level >= zapcore.InfoLevel:
		return core.InfoLevel
	default:
		return core.DebugLevel
	}
}
