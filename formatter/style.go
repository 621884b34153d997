package formatter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/philipp01105/jsonlog/core"
)

// TemplateEngine renders field templates in one grammar. Engines are
// stateless and safe for concurrent use.
type TemplateEngine interface {
	// Name returns the style selector of the grammar ("%", "{" or "$").
	Name() string
	// Compile parses tmpl once so it can be rendered many times.
	Compile(tmpl string) (*Template, error)
	// Render compiles tmpl and renders it against s.
	Render(tmpl string, s Snapshot) (string, error)
	// UsesTimestamp reports whether tmpl references asctime.
	UsesTimestamp(tmpl string) bool
}

// The three template grammars.
var (
	// Percent renders %(name)s templates.
	Percent TemplateEngine = &engine{name: "%", compile: compilePercent}
	// Brace renders {name} templates.
	Brace TemplateEngine = &engine{name: "{", compile: compileBrace}
	// Dollar renders $name and ${name} templates.
	Dollar TemplateEngine = &engine{name: "$", compile: compileDollar}
)

// ParseStyle returns the engine for a style selector. The empty
// selector means Percent.
func ParseStyle(style string) (TemplateEngine, error) {
	switch strings.ToLower(strings.TrimSpace(style)) {
	case "", "%", "percent":
		return Percent, nil
	case "{", "brace", "str.format":
		return Brace, nil
	case "$", "dollar", "template":
		return Dollar, nil
	default:
		return nil, configErr("Style", "unknown style %q, must be one of %%, {, $", style)
	}
}

type engine struct {
	name    string
	compile func(string) (*Template, error)
}

func (e *engine) Name() string { return e.name }

func (e *engine) Compile(tmpl string) (*Template, error) {
	t, err := e.compile(tmpl)
	if err != nil {
		return nil, configErr("template", "%q: %v", tmpl, err)
	}
	return t, nil
}

func (e *engine) Render(tmpl string, s Snapshot) (string, error) {
	t, err := e.Compile(tmpl)
	if err != nil {
		return "", err
	}
	return t.Render(s)
}

func (e *engine) UsesTimestamp(tmpl string) bool {
	t, err := e.compile(tmpl)
	return err == nil && t.UsesTimestamp()
}

// Template is a compiled field template. It is immutable.
type Template struct {
	src    string
	segs   []segment
	fields []string
}

// segment is either literal text or a reference rendered by conv.
type segment struct {
	lit   string
	field string
	conv  func(v any) (string, error)
}

func (t *Template) addLiteral(s string) {
	if s == "" {
		return
	}
	if n := len(t.segs); n > 0 && t.segs[n-1].conv == nil {
		t.segs[n-1].lit += s
		return
	}
	t.segs = append(t.segs, segment{lit: s})
}

func (t *Template) addField(name string, conv func(any) (string, error)) {
	t.segs = append(t.segs, segment{field: name, conv: conv})
	for _, f := range t.fields {
		if f == name {
			return
		}
	}
	t.fields = append(t.fields, name)
}

// String returns the template source.
func (t *Template) String() string { return t.src }

// Fields returns the attribute names referenced by the template.
func (t *Template) Fields() []string {
	out := make([]string, len(t.fields))
	copy(out, t.fields)
	return out
}

// UsesTimestamp reports whether the template references asctime.
func (t *Template) UsesTimestamp() bool {
	for _, f := range t.fields {
		if f == core.AttrAscTime {
			return true
		}
	}
	return false
}

// Render substitutes every reference with the matching attribute.
func (t *Template) Render(s Snapshot) (string, error) {
	if len(t.segs) == 1 && t.segs[0].conv == nil {
		return t.segs[0].lit, nil
	}
	var b strings.Builder
	b.Grow(len(t.src) + 16)
	for _, seg := range t.segs {
		if seg.conv == nil {
			b.WriteString(seg.lit)
			continue
		}
		v, ok := s.Lookup(seg.field)
		if !ok {
			return "", &MissingFieldError{Template: t.src, Field: seg.field}
		}
		out, err := seg.conv(v)
		if err != nil {
			return "", fmt.Errorf("template %q: attribute %q: %w", t.src, seg.field, err)
		}
		b.WriteString(out)
	}
	return b.String(), nil
}

// valueString is the string form used by the s conversion of every
// grammar.
func valueString(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case []byte:
		return string(val)
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return formatFloat(val)
	case float32:
		return formatFloat(float64(val))
	case error:
		return val.Error()
	case fmt.Stringer:
		return val.String()
	case *core.OrderedMap:
		b, err := val.MarshalJSON()
		if err != nil {
			return fmt.Sprint(val.Keys())
		}
		return string(b)
	default:
		return fmt.Sprint(v)
	}
}

// formatFloat prints f without exponent for ordinary magnitudes.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	if abs := math.Abs(f); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// reprString is the r conversion: strings are quoted, everything else
// uses its string form.
func reprString(v any, ascii bool) string {
	s, ok := v.(string)
	if !ok {
		return valueString(v)
	}
	if ascii {
		return strconv.QuoteToASCII(s)
	}
	return strconv.Quote(s)
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float32:
		return int64(n), true
	case float64:
		return int64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	if i, ok := toInt(v); ok {
		return float64(i), true
	}
	return 0, false
}
