package formatter

import (
	"bytes"
	"encoding"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	gojson "github.com/goccy/go-json"

	"github.com/philipp01105/jsonlog/core"
)

// maxDepth bounds nesting so that cycles fail even when the circular
// reference check is disabled.
const maxDepth = 1000

var (
	errCircular = errors.New("circular reference detected")
	errDepth    = errors.New("maximum nesting depth exceeded")
)

// EncoderOptions control JSON serialization of the output object.
type EncoderOptions struct {
	// EnsureASCII escapes every non-ASCII character as \uXXXX.
	EnsureASCII bool `mapstructure:"ensure_ascii"`
	// SkipCircularCheck disables detection of reference cycles. Cycles
	// then fail on the nesting depth limit instead.
	SkipCircularCheck bool `mapstructure:"skip_circular_check"`
	// AllowNaN emits NaN, Infinity and -Infinity instead of failing.
	AllowNaN bool `mapstructure:"allow_nan"`
	// Indent is the number of spaces per nesting level. Zero keeps the
	// object on one line.
	Indent int `mapstructure:"indent" validate:"gte=0,lte=16"`
	// ItemSeparator defaults to ",".
	ItemSeparator string `mapstructure:"item_separator"`
	// KeySeparator defaults to ":" and to ": " when indenting.
	KeySeparator string `mapstructure:"key_separator"`
	// SortKeys sorts the keys of every object, the top level included.
	SortKeys bool `mapstructure:"sort_keys"`
	// SkipKeys drops map entries whose key has no JSON form instead of
	// failing.
	SkipKeys bool `mapstructure:"skip_keys"`
	// EscapeHTML escapes <, > and & inside strings.
	EscapeHTML bool `mapstructure:"escape_html"`
	// Default converts values with no JSON form (funcs, channels,
	// complex numbers) into encodable ones.
	Default func(v any) (any, error) `mapstructure:"-"`
	// Options are passed to github.com/goccy/go-json when encoding
	// structs and values with custom marshalers.
	Options []gojson.EncodeOptionFunc `mapstructure:"-"`
}

// encoder is an immutable, validated EncoderOptions.
type encoder struct {
	EncoderOptions
	itemSep string
	keySep  string
}

func newEncoder(o EncoderOptions) (*encoder, error) {
	if o.Indent < 0 {
		return nil, configErr("Encoder.Indent", "must not be negative, got %d", o.Indent)
	}
	enc := &encoder{EncoderOptions: o, itemSep: o.ItemSeparator, keySep: o.KeySeparator}
	if enc.itemSep == "" {
		enc.itemSep = ","
	}
	if enc.keySep == "" {
		enc.keySep = ":"
		if o.Indent > 0 {
			enc.keySep = ": "
		}
	}
	if strings.TrimSpace(enc.itemSep) != "," {
		return nil, configErr("Encoder.ItemSeparator", "%q must contain a comma", enc.itemSep)
	}
	if strings.TrimSpace(enc.keySep) != ":" {
		return nil, configErr("Encoder.KeySeparator", "%q must contain a colon", enc.keySep)
	}
	if len(o.Options) > 0 {
		o.Options = append([]gojson.EncodeOptionFunc(nil), o.Options...)
		enc.Options = o.Options
	}
	return enc, nil
}

// encodeState carries per-call bookkeeping.
type encodeState struct {
	*encoder
	buf  *bytes.Buffer
	seen map[uintptr]struct{}
}

// encodeObject writes members as the top-level JSON object. An error is
// reported as a SerializationError naming the member.
func (enc *encoder) encodeObject(buf *bytes.Buffer, members []member) error {
	if enc.SortKeys {
		sortMembers(members)
	}
	st := &encodeState{encoder: enc, buf: buf}
	buf.WriteByte('{')
	for i, m := range members {
		if i > 0 {
			buf.WriteString(enc.itemSep)
		}
		st.newline(1)
		st.writeString(m.key)
		buf.WriteString(enc.keySep)
		if err := st.value(m.val, 1); err != nil {
			return &SerializationError{Key: m.key, Err: err}
		}
	}
	if len(members) > 0 {
		st.newline(0)
	}
	buf.WriteByte('}')
	return nil
}

func (st *encodeState) newline(depth int) {
	if st.Indent <= 0 {
		return
	}
	st.buf.WriteByte('\n')
	for i := 0; i < depth*st.Indent; i++ {
		st.buf.WriteByte(' ')
	}
}

func (st *encodeState) enter(ptr uintptr) error {
	if st.SkipCircularCheck || ptr == 0 {
		return nil
	}
	if _, ok := st.seen[ptr]; ok {
		return errCircular
	}
	if st.seen == nil {
		st.seen = make(map[uintptr]struct{})
	}
	st.seen[ptr] = struct{}{}
	return nil
}

func (st *encodeState) leave(ptr uintptr) {
	if st.seen != nil {
		delete(st.seen, ptr)
	}
}

func (st *encodeState) value(v any, depth int) error {
	if depth > maxDepth {
		return errDepth
	}
	buf := st.buf
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case string:
		st.writeString(val)
	case bool:
		buf.Write(strconv.AppendBool(buf.AvailableBuffer(), val))
	case int:
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), int64(val), 10))
	case int64:
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), val, 10))
	case int32:
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), int64(val), 10))
	case uint64:
		buf.Write(strconv.AppendUint(buf.AvailableBuffer(), val, 10))
	case float64:
		return st.writeFloat(val, 64)
	case float32:
		return st.writeFloat(float64(val), 32)
	case json.Number:
		if val == "" {
			val = "0"
		}
		buf.WriteString(string(val))
	case []byte:
		buf.WriteByte('"')
		buf.WriteString(base64.StdEncoding.EncodeToString(val))
		buf.WriteByte('"')
	case time.Time:
		buf.WriteByte('"')
		buf.Write(val.AppendFormat(buf.AvailableBuffer(), time.RFC3339Nano))
		buf.WriteByte('"')
	case *core.OrderedMap:
		if val == nil {
			buf.WriteString("null")
			return nil
		}
		return st.orderedMap(val, depth)
	case []any:
		return st.slice(reflect.ValueOf(val), depth)
	case map[string]any:
		return st.mapValue(reflect.ValueOf(val), depth)
	case json.Marshaler, encoding.TextMarshaler:
		return st.marshal(v, depth)
	case error:
		st.writeString(val.Error())
	default:
		return st.reflectValue(reflect.ValueOf(v), depth)
	}
	return nil
}

func (st *encodeState) reflectValue(rv reflect.Value, depth int) error {
	buf := st.buf
	switch rv.Kind() {
	case reflect.String:
		st.writeString(rv.String())
	case reflect.Bool:
		buf.Write(strconv.AppendBool(buf.AvailableBuffer(), rv.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		buf.Write(strconv.AppendUint(buf.AvailableBuffer(), rv.Uint(), 10))
	case reflect.Float32:
		return st.writeFloat(rv.Float(), 32)
	case reflect.Float64:
		return st.writeFloat(rv.Float(), 64)
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			buf.WriteString("null")
			return nil
		}
		if rv.Kind() == reflect.Pointer {
			ptr := rv.Pointer()
			if err := st.enter(ptr); err != nil {
				return err
			}
			defer st.leave(ptr)
		}
		return st.value(rv.Elem().Interface(), depth+1)
	case reflect.Slice:
		if rv.IsNil() {
			buf.WriteString("null")
			return nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			buf.WriteByte('"')
			buf.WriteString(base64.StdEncoding.EncodeToString(rv.Bytes()))
			buf.WriteByte('"')
			return nil
		}
		return st.slice(rv, depth)
	case reflect.Array:
		return st.slice(rv, depth)
	case reflect.Map:
		if rv.IsNil() {
			buf.WriteString("null")
			return nil
		}
		return st.mapValue(rv, depth)
	case reflect.Struct:
		return st.marshal(rv.Interface(), depth)
	default:
		return st.fallback(rv.Interface(), depth)
	}
	return nil
}

// fallback hands values with no JSON form to Options.Default.
func (st *encodeState) fallback(v any, depth int) error {
	if st.Default == nil {
		return fmt.Errorf("value of type %T is not JSON serializable", v)
	}
	out, err := st.Default(v)
	if err != nil {
		return err
	}
	return st.value(out, depth+1)
}

func (st *encodeState) writeFloat(f float64, bits int) error {
	switch {
	case math.IsNaN(f):
		if !st.AllowNaN {
			return errors.New("out of range float value NaN")
		}
		st.buf.WriteString("NaN")
		return nil
	case math.IsInf(f, 1):
		if !st.AllowNaN {
			return errors.New("out of range float value +Inf")
		}
		st.buf.WriteString("Infinity")
		return nil
	case math.IsInf(f, -1):
		if !st.AllowNaN {
			return errors.New("out of range float value -Inf")
		}
		st.buf.WriteString("-Infinity")
		return nil
	}

	format := byte('f')
	if abs := math.Abs(f); abs != 0 {
		if bits == 64 && (abs < 1e-6 || abs >= 1e21) || bits == 32 && (float32(abs) < 1e-6 || float32(abs) >= 1e21) {
			format = 'e'
		}
	}
	b := strconv.AppendFloat(st.buf.AvailableBuffer(), f, format, -1, bits)
	if format == 'e' {
		// clean up e-09 to e-9
		if n := len(b); n >= 4 && b[n-4] == 'e' && b[n-3] == '-' && b[n-2] == '0' {
			b[n-2] = b[n-1]
			b = b[:n-1]
		}
	}
	st.buf.Write(b)
	return nil
}

func (st *encodeState) slice(rv reflect.Value, depth int) error {
	if rv.Kind() == reflect.Slice {
		ptr := rv.Pointer()
		if err := st.enter(ptr); err != nil {
			return err
		}
		defer st.leave(ptr)
	}
	n := rv.Len()
	if n == 0 {
		st.buf.WriteString("[]")
		return nil
	}
	st.buf.WriteByte('[')
	for i := 0; i < n; i++ {
		if i > 0 {
			st.buf.WriteString(st.itemSep)
		}
		st.newline(depth + 1)
		if err := st.value(rv.Index(i).Interface(), depth+1); err != nil {
			return err
		}
	}
	st.newline(depth)
	st.buf.WriteByte(']')
	return nil
}

func (st *encodeState) orderedMap(m *core.OrderedMap, depth int) error {
	ptr := reflect.ValueOf(m).Pointer()
	if err := st.enter(ptr); err != nil {
		return err
	}
	defer st.leave(ptr)

	keys := m.Keys()
	if st.SortKeys {
		sort.Strings(keys)
	}
	return st.object(keys, func(k string) any { v, _ := m.Get(k); return v }, depth)
}

func (st *encodeState) mapValue(rv reflect.Value, depth int) error {
	ptr := rv.Pointer()
	if err := st.enter(ptr); err != nil {
		return err
	}
	defer st.leave(ptr)

	keys := make([]string, 0, rv.Len())
	values := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k, ok, err := mapKey(iter.Key())
		if err != nil {
			return err
		}
		if !ok {
			if st.SkipKeys {
				continue
			}
			return fmt.Errorf("map key of type %s is not supported", iter.Key().Type())
		}
		keys = append(keys, k)
		values[k] = iter.Value().Interface()
	}
	sort.Strings(keys)
	return st.object(keys, func(k string) any { return values[k] }, depth)
}

func (st *encodeState) object(keys []string, get func(string) any, depth int) error {
	if len(keys) == 0 {
		st.buf.WriteString("{}")
		return nil
	}
	st.buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			st.buf.WriteString(st.itemSep)
		}
		st.newline(depth + 1)
		st.writeString(k)
		st.buf.WriteString(st.keySep)
		if err := st.value(get(k), depth+1); err != nil {
			return err
		}
	}
	st.newline(depth)
	st.buf.WriteByte('}')
	return nil
}

// mapKey renders a map key the way Python renders str, int, float and
// bool keys.
func mapKey(k reflect.Value) (string, bool, error) {
	if k.Kind() == reflect.Interface {
		if k.IsNil() {
			return "null", true, nil
		}
		k = k.Elem()
	}
	if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
		b, err := tm.MarshalText()
		if err != nil {
			return "", false, err
		}
		return string(b), true, nil
	}
	switch k.Kind() {
	case reflect.String:
		return k.String(), true, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), true, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10), true, nil
	case reflect.Float32, reflect.Float64:
		return formatFloat(k.Float()), true, nil
	case reflect.Bool:
		return strconv.FormatBool(k.Bool()), true, nil
	}
	return "", false, nil
}

// marshal encodes structs and custom marshalers with go-json and
// re-emits the result with this encoder's separators, indentation and
// escaping.
func (st *encodeState) marshal(v any, depth int) error {
	data, err := gojson.MarshalWithOption(v, st.Options...)
	if err != nil {
		return err
	}
	return st.reformat(data, depth)
}

func (st *encodeState) reformat(data []byte, depth int) error {
	level := depth
	for i := 0; i < len(data); {
		switch c := data[i]; c {
		case ' ', '\t', '\n', '\r':
			i++
		case '{', '[':
			j := skipSpace(data, i+1)
			if j < len(data) && (data[j] == '}' || data[j] == ']') {
				st.buf.WriteByte(c)
				st.buf.WriteByte(data[j])
				i = j + 1
				continue
			}
			st.buf.WriteByte(c)
			level++
			st.newline(level)
			i++
		case '}', ']':
			level--
			st.newline(level)
			st.buf.WriteByte(c)
			i++
		case ',':
			st.buf.WriteString(st.itemSep)
			st.newline(level)
			i++
		case ':':
			st.buf.WriteString(st.keySep)
			i++
		case '"':
			end := stringEnd(data, i)
			if end < 0 {
				return errors.New("unterminated string in marshaler output")
			}
			var s string
			if err := gojson.Unmarshal(data[i:end], &s); err != nil {
				return err
			}
			st.writeString(s)
			i = end
		default:
			j := i
			for j < len(data) && strings.IndexByte(",:]} \t\r\n", data[j]) < 0 {
				j++
			}
			st.buf.Write(data[i:j])
			i = j
		}
	}
	return nil
}

func skipSpace(data []byte, i int) int {
	for i < len(data) && (data[i] == ' ' || data[i] == '\t' || data[i] == '\n' || data[i] == '\r') {
		i++
	}
	return i
}

// stringEnd returns the index just past the closing quote of the string
// starting at data[i].
func stringEnd(data []byte, i int) int {
	for j := i + 1; j < len(data); j++ {
		switch data[j] {
		case '\\':
			j++
		case '"':
			return j + 1
		}
	}
	return -1
}

const hexChars = "0123456789abcdef"

// writeString writes s as a quoted JSON string.
func (st *encodeState) writeString(s string) {
	buf := st.buf
	buf.WriteByte('"')
	start := 0
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			if c >= 0x20 && c != '"' && c != '\\' && (!st.EscapeHTML || (c != '<' && c != '>' && c != '&')) {
				i++
				continue
			}
			buf.WriteString(s[start:i])
			switch c {
			case '"':
				buf.WriteString(`\"`)
			case '\\':
				buf.WriteString(`\\`)
			case '\n':
				buf.WriteString(`\n`)
			case '\r':
				buf.WriteString(`\r`)
			case '\t':
				buf.WriteString(`\t`)
			case '\b':
				buf.WriteString(`\b`)
			case '\f':
				buf.WriteString(`\f`)
			default:
				buf.WriteString(`\u00`)
				buf.WriteByte(hexChars[c>>4])
				buf.WriteByte(hexChars[c&0x0f])
			}
			i++
			start = i
			continue
		}

		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			buf.WriteString(s[start:i])
			buf.WriteString(`\ufffd`)
		case r == '\u2028' || r == '\u2029' || st.EnsureASCII:
			buf.WriteString(s[start:i])
			writeRuneEscape(buf, r)
		default:
			i += size
			continue
		}
		i += size
		start = i
	}
	buf.WriteString(s[start:])
	buf.WriteByte('"')
}

func writeRuneEscape(buf *bytes.Buffer, r rune) {
	if r > 0xFFFF {
		r -= 0x10000
		writeRuneEscape(buf, 0xD800+(r>>10))
		writeRuneEscape(buf, 0xDC00+(r&0x3FF))
		return
	}
	buf.WriteString(`\u`)
	buf.WriteByte(hexChars[(r>>12)&0xF])
	buf.WriteByte(hexChars[(r>>8)&0xF])
	buf.WriteByte(hexChars[(r>>4)&0xF])
	buf.WriteByte(hexChars[r&0xF])
}
