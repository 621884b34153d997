package formatter

import (
	"fmt"
	"reflect"

	"github.com/philipp01105/jsonlog/core"
)

// DefaultFormat is the format specification used when none is given.
const DefaultFormat = `{"levelname":"levelname","name":"name","message":"message"}`

// FieldSpec is one output key and its field reference. Ref is a string
// (attribute name or template), a static literal (number, bool, nil,
// nested object or array) or an attribute rule.
type FieldSpec struct {
	Key string
	Ref any
}

// FormatSpec is an ordered list of output fields.
type FormatSpec struct {
	fields []FieldSpec
	index  map[string]int
}

// Fields returns a copy of the fields in output order.
func (s *FormatSpec) Fields() []FieldSpec {
	out := make([]FieldSpec, len(s.fields))
	copy(out, s.fields)
	return out
}

// Keys returns the output keys in order.
func (s *FormatSpec) Keys() []string {
	keys := make([]string, len(s.fields))
	for i, f := range s.fields {
		keys[i] = f.Key
	}
	return keys
}

// Len returns the number of fields.
func (s *FormatSpec) Len() int { return len(s.fields) }

// Has reports whether key is declared.
func (s *FormatSpec) Has(key string) bool {
	_, ok := s.index[key]
	return ok
}

// Ref returns the reference declared for key.
func (s *FormatSpec) Ref(key string) (any, bool) {
	i, ok := s.index[key]
	if !ok {
		return nil, false
	}
	return s.fields[i].Ref, true
}

func (s *FormatSpec) set(key string, ref any) {
	if i, ok := s.index[key]; ok {
		s.fields[i].Ref = ref
		return
	}
	s.index[key] = len(s.fields)
	s.fields = append(s.fields, FieldSpec{Key: key, Ref: ref})
}

func newFormatSpec(n int) *FormatSpec {
	return &FormatSpec{fields: make([]FieldSpec, 0, n), index: make(map[string]int, n)}
}

// ParseFormatSpec builds a FormatSpec from JSON text (string or []byte),
// a *core.OrderedMap, a []FieldSpec, a []any of single-key maps or an
// existing *FormatSpec. nil and "" yield DefaultFormat. Plain Go maps are
// rejected because they carry no key order. A repeated key keeps its
// first position and its last value.
func ParseFormatSpec(v any) (*FormatSpec, error) {
	switch val := v.(type) {
	case nil:
		return ParseFormatSpec(DefaultFormat)
	case *FormatSpec:
		if val == nil {
			return ParseFormatSpec(DefaultFormat)
		}
		return val, nil
	case string:
		if val == "" {
			return ParseFormatSpec(DefaultFormat)
		}
		return parseFormatJSON([]byte(val))
	case []byte:
		if len(val) == 0 {
			return ParseFormatSpec(DefaultFormat)
		}
		return parseFormatJSON(val)
	case *core.OrderedMap:
		if val == nil {
			return nil, configErr("Format", "nil *core.OrderedMap")
		}
		return fromOrderedMap(val), nil
	case []FieldSpec:
		s := newFormatSpec(len(val))
		for _, f := range val {
			s.set(f.Key, f.Ref)
		}
		return s, nil
	case []any:
		return fromList(val)
	}

	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Map {
		return nil, configErr("Format", "%T has no key order; use JSON text, *core.OrderedMap or []FieldSpec", v)
	}
	return nil, configErr("Format", "unsupported format specification type %T", v)
}

func parseFormatJSON(data []byte) (*FormatSpec, error) {
	m := core.NewOrderedMap()
	if err := m.UnmarshalJSON(data); err != nil {
		return nil, &ConfigurationError{Field: "Format", Reason: "malformed JSON format specification", Err: err}
	}
	return fromOrderedMap(m), nil
}

func fromOrderedMap(m *core.OrderedMap) *FormatSpec {
	s := newFormatSpec(m.Len())
	m.Range(func(k string, v any) bool {
		s.set(k, v)
		return true
	})
	return s
}

// fromList accepts the list form produced by YAML loaders:
// [{"level": "levelname"}, {"msg": "message"}].
func fromList(list []any) (*FormatSpec, error) {
	s := newFormatSpec(len(list))
	for i, item := range list {
		switch e := item.(type) {
		case FieldSpec:
			s.set(e.Key, e.Ref)
		case *core.OrderedMap:
			if e.Len() != 1 {
				return nil, configErr(fmt.Sprintf("Format[%d]", i), "list entries must have exactly one key, got %d", e.Len())
			}
			e.Range(func(k string, v any) bool {
				s.set(k, v)
				return false
			})
		case map[string]any:
			if len(e) != 1 {
				return nil, configErr(fmt.Sprintf("Format[%d]", i), "list entries must have exactly one key, got %d", len(e))
			}
			for k, v := range e {
				s.set(k, v)
			}
		default:
			return nil, configErr(fmt.Sprintf("Format[%d]", i), "unsupported list entry %T", item)
		}
	}
	return s, nil
}

type fieldKind uint8

const (
	fieldTemplate fieldKind = iota
	fieldStatic
	fieldRule
)

// compiledField is a FormatSpec entry prepared for rendering.
type compiledField struct {
	key    string
	kind   fieldKind
	ref    string
	tmpl   *Template
	static any
}

// compileFields compiles templates with engine and extracts inline
// rules, which are returned in spec order.
func compileFields(spec *FormatSpec, engine TemplateEngine) ([]compiledField, []namedRule, error) {
	fields := make([]compiledField, 0, spec.Len())
	var rules []namedRule
	for _, f := range spec.fields {
		cf := compiledField{key: f.Key}
		switch ref := f.Ref.(type) {
		case string:
			t, err := engine.Compile(ref)
			if err != nil {
				if ce, ok := err.(*ConfigurationError); ok {
					ce.Field = "Format[" + f.Key + "]"
				}
				return nil, nil, err
			}
			cf.kind, cf.ref, cf.tmpl = fieldTemplate, ref, t
		default:
			if isRule(f.Ref) {
				rule, err := NewRule(f.Ref)
				if err != nil {
					return nil, nil, &ConfigurationError{Field: "Format[" + f.Key + "]", Reason: "invalid rule", Err: err}
				}
				cf.kind = fieldRule
				rules = append(rules, namedRule{name: f.Key, rule: rule})
			} else {
				cf.kind, cf.static = fieldStatic, f.Ref
			}
		}
		fields = append(fields, cf)
	}
	return fields, rules, nil
}

func isRule(v any) bool {
	switch v.(type) {
	case AttributeRule, *AttributeRule:
		return true
	}
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Func
}

// usesTimestamp reports whether any field needs asctime.
func usesTimestamp(fields []compiledField) bool {
	for _, f := range fields {
		if f.kind == fieldTemplate && (f.ref == core.AttrAscTime || f.tmpl.UsesTimestamp()) {
			return true
		}
	}
	return false
}
