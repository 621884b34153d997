package formatter

import (
	"bytes"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/philipp01105/jsonlog/core"
)

// TextOptions configure the plain-text formatter.
type TextOptions struct {
	// IncludeCaller adds [file:line] after the level
	IncludeCaller bool `mapstructure:"include_caller"`
	// TimestampFormat is a Go reference layout (default time.RFC3339)
	TimestampFormat string `mapstructure:"timestamp_format"`
	// Location converts timestamps before rendering
	Location *time.Location `mapstructure:"-"`
}

// TextFormatter renders events as human-readable lines:
//
//	2024-01-02T15:04:05Z [INFO] api: [main.go:12] message key=value
//
// Values containing spaces, quotes or '=' are quoted. It never fails,
// which makes it the usual fallback for a JSON formatter.
type TextFormatter struct {
	opts TextOptions
}

// NewTextFormatter creates a text formatter.
func NewTextFormatter(opts TextOptions) *TextFormatter {
	if opts.TimestampFormat == "" {
		opts.TimestampFormat = time.RFC3339
	}
	return &TextFormatter{opts: opts}
}

// Format renders e, newline included.
func (f *TextFormatter) Format(e *core.Event) ([]byte, error) {
	return formatCopy(func(buf *bytes.Buffer) error {
		f.render(e, buf)
		return nil
	})
}

// FormatTo renders e into w with one Write call.
func (f *TextFormatter) FormatTo(e *core.Event, w io.Writer) error {
	buf := getBuffer()
	defer putBuffer(buf)

	f.render(e, buf)
	_, err := w.Write(buf.Bytes())
	return err
}

func (f *TextFormatter) render(e *core.Event, buf *bytes.Buffer) {
	ts := e.Time
	if f.opts.Location != nil {
		ts = ts.In(f.opts.Location)
	}
	buf.Write(ts.AppendFormat(buf.AvailableBuffer(), f.opts.TimestampFormat))

	buf.WriteString(" [")
	buf.WriteString(e.Level.String())
	buf.WriteString("] ")

	if e.Logger != "" {
		buf.WriteString(e.Logger)
		buf.WriteString(": ")
	}
	if f.opts.IncludeCaller && e.Caller.Defined {
		buf.WriteByte('[')
		buf.WriteString(e.Caller.ShortFile)
		buf.WriteByte(':')
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), int64(e.Caller.Line), 10))
		buf.WriteString("] ")
	}

	buf.WriteString(messageString(normalizeMessage(e.Message, e.Args)))

	for _, field := range e.Extras {
		writePair(buf, field.Key, field.StringValue())
	}
	if e.Err != nil {
		writePair(buf, "error", e.Err.Error())
	}
	if e.Stack != "" {
		buf.WriteByte('\n')
		buf.WriteString(strings.TrimSuffix(e.Stack, "\n"))
	}
	buf.WriteByte('\n')
}

func writePair(buf *bytes.Buffer, key, val string) {
	buf.WriteByte(' ')
	buf.WriteString(key)
	buf.WriteByte('=')
	if val == "" || strings.ContainsAny(val, " \t\n\"=") {
		buf.Write(strconv.AppendQuote(buf.AvailableBuffer(), val))
		return
	}
	buf.WriteString(val)
}
