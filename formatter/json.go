package formatter

import (
	"bytes"
	"io"
	"time"

	"github.com/philipp01105/jsonlog/core"
)

// Options configure a JSONFormatter. The zero value renders
// DefaultFormat with the percent style and drops undeclared extras.
type Options struct {
	// Format is the format specification, see ParseFormatSpec.
	Format any
	// DateFormat renders asctime. Patterns containing '%' are strftime
	// patterns, anything else a Go reference layout.
	DateFormat string
	// Location converts timestamps before rendering asctime.
	Location *time.Location
	// Style selects the template grammar: "%", "{" or "$".
	Style string
	// Attributes are custom attribute rules, evaluated in order before
	// the rules declared inline in Format.
	Attributes []Attribute
	// MixExtra adds extras not named in Format to the output.
	MixExtra bool
	// MixExtraPosition is none, head, tail (the default) or mix.
	MixExtraPosition string
	// ExceptionRenderer renders Event.Err. Defaults to
	// DefaultExceptionRenderer.
	ExceptionRenderer ExceptionRenderer
	// Encoder controls serialization.
	Encoder EncoderOptions
}

// JSONFormatter renders an Event as one JSON object whose keys follow a
// format specification. It is immutable and safe for concurrent use.
type JSONFormatter struct {
	spec   *FormatSpec
	engine TemplateEngine
	fields []compiledField
	rules  []namedRule
	norm   normalizer
	policy MergePolicy
	enc    *encoder
}

// NewJSONFormatter validates opts and compiles the format
// specification. Every configuration problem is reported here as a
// *ConfigurationError.
func NewJSONFormatter(opts Options) (*JSONFormatter, error) {
	engine, err := ParseStyle(opts.Style)
	if err != nil {
		return nil, err
	}
	spec, err := ParseFormatSpec(opts.Format)
	if err != nil {
		return nil, err
	}
	fields, inline, err := compileFields(spec, engine)
	if err != nil {
		return nil, err
	}
	rules, err := compileRules(opts.Attributes)
	if err != nil {
		return nil, err
	}
	rules = append(rules, inline...)

	policy, err := ParseMergePolicy(opts.MixExtraPosition)
	if err != nil {
		return nil, err
	}
	if !opts.MixExtra {
		policy = MergeNone
	}

	dates, err := newTimeFormat(opts.DateFormat, opts.Location)
	if err != nil {
		return nil, err
	}
	enc, err := newEncoder(opts.Encoder)
	if err != nil {
		return nil, err
	}

	renderExc := opts.ExceptionRenderer
	if renderExc == nil {
		renderExc = DefaultExceptionRenderer
	}

	return &JSONFormatter{
		spec:   spec,
		engine: engine,
		fields: fields,
		rules:  rules,
		norm: normalizer{
			dates:     dates,
			needTime:  len(rules) > 0 || usesTimestamp(fields),
			renderExc: renderExc,
		},
		policy: policy,
		enc:    enc,
	}, nil
}

// Spec returns the compiled format specification.
func (f *JSONFormatter) Spec() *FormatSpec { return f.spec }

// Style returns the template engine.
func (f *JSONFormatter) Style() TemplateEngine { return f.engine }

// Policy returns the effective extra merge policy.
func (f *JSONFormatter) Policy() MergePolicy { return f.policy }

// Format renders e as a JSON object without a trailing newline. On error
// nothing is returned.
func (f *JSONFormatter) Format(e *core.Event) ([]byte, error) {
	return formatCopy(func(buf *bytes.Buffer) error { return f.formatToBuffer(e, buf) })
}

// FormatTo renders e followed by a newline and writes it to w in a
// single Write call. Nothing is written on error.
func (f *JSONFormatter) FormatTo(e *core.Event, w io.Writer) error {
	buf := getBuffer()
	defer putBuffer(buf)

	if err := f.formatToBuffer(e, buf); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}

func (f *JSONFormatter) formatToBuffer(e *core.Event, buf *bytes.Buffer) error {
	attrs := f.norm.attributes(e)
	if err := applyRules(f.rules, attrs); err != nil {
		return err
	}
	s := Snapshot{m: attrs}

	declared := make([]member, 0, len(f.fields))
	for _, fld := range f.fields {
		var v any
		switch fld.kind {
		case fieldStatic:
			v = fld.static
		case fieldRule:
			v = attrs[fld.key]
		default:
			native, ok := attrs[fld.ref]
			if ok {
				v = native
				break
			}
			out, err := fld.tmpl.Render(s)
			if err != nil {
				return err
			}
			v = out
		}
		declared = append(declared, member{key: fld.key, val: v})
	}

	var extras []member
	if f.policy != MergeNone {
		extras = collectExtras(e, f.spec)
	}
	return f.enc.encodeObject(buf, f.policy.merge(declared, extras))
}
