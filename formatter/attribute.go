package formatter

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
)

// Snapshot is the read-only view of a record's attributes handed to
// attribute rules and templates. A new Snapshot is built for every
// formatting call.
type Snapshot struct {
	m map[string]any
}

// NewSnapshot returns a Snapshot over a copy of attrs.
func NewSnapshot(attrs map[string]any) Snapshot {
	m := make(map[string]any, len(attrs))
	for k, v := range attrs {
		m[k] = v
	}
	return Snapshot{m: m}
}

// Get returns the named attribute, or nil.
func (s Snapshot) Get(name string) any { return s.m[name] }

// Lookup returns the named attribute and whether it exists.
func (s Snapshot) Lookup(name string) (any, bool) {
	v, ok := s.m[name]
	return v, ok
}

// Has reports whether the attribute exists.
func (s Snapshot) Has(name string) bool {
	_, ok := s.m[name]
	return ok
}

// String returns the attribute in its template string form, or "" when
// it does not exist.
func (s Snapshot) String(name string) string {
	v, ok := s.m[name]
	if !ok {
		return ""
	}
	return valueString(v)
}

// Len returns the number of attributes.
func (s Snapshot) Len() int { return len(s.m) }

// Keys returns the attribute names in sorted order.
func (s Snapshot) Keys() []string {
	keys := make([]string, 0, len(s.m))
	for k := range s.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Map returns a copy of the attributes.
func (s Snapshot) Map() map[string]any {
	m := make(map[string]any, len(s.m))
	for k, v := range s.m {
		m[k] = v
	}
	return m
}

// AttributeRule computes an attribute value. It is built with NoArgRule
// or SnapshotRule (or one of the helpers on top of them) and is
// immutable.
type AttributeRule struct {
	fn func(Snapshot) (any, error)
}

// NoArgRule wraps a rule that ignores the record.
func NoArgRule(fn func() (any, error)) AttributeRule {
	if fn == nil {
		return AttributeRule{}
	}
	return AttributeRule{fn: func(Snapshot) (any, error) { return fn() }}
}

// SnapshotRule wraps a rule that reads the record's attributes.
func SnapshotRule(fn func(Snapshot) (any, error)) AttributeRule {
	return AttributeRule{fn: fn}
}

// IsZero reports whether the rule has no function.
func (r AttributeRule) IsZero() bool { return r.fn == nil }

// Eval runs the rule. A panic inside the rule is returned as an error.
func (r AttributeRule) Eval(s Snapshot) (v any, err error) {
	if r.fn == nil {
		return nil, errors.New("empty rule")
	}
	defer func() {
		if p := recover(); p != nil {
			if e, ok := p.(error); ok {
				err = fmt.Errorf("panic: %w", e)
				return
			}
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return r.fn(s)
}

// Attribute names a rule in the Options.Attributes table.
type Attribute struct {
	Name string
	// Rule is an AttributeRule or a function of one of the forms
	// func() T, func() (T, error), func(Snapshot) T,
	// func(Snapshot) (T, error), func(map[string]any) T and
	// func(map[string]any) (T, error).
	Rule any
}

// namedRule is a validated rule bound to its output attribute.
type namedRule struct {
	name string
	rule AttributeRule
}

var (
	snapshotType = reflect.TypeOf(Snapshot{})
	attrMapType  = reflect.TypeOf(map[string]any(nil))
	errorType    = reflect.TypeOf((*error)(nil)).Elem()
)

// NewRule converts a supported function value into an AttributeRule.
func NewRule(rule any) (AttributeRule, error) {
	if rv := reflect.ValueOf(rule); rv.Kind() == reflect.Func && rv.IsNil() {
		return AttributeRule{}, errors.New("rule is nil")
	}
	switch fn := rule.(type) {
	case nil:
		return AttributeRule{}, errors.New("rule is nil")
	case AttributeRule:
		if fn.IsZero() {
			return AttributeRule{}, errors.New("rule is empty")
		}
		return fn, nil
	case *AttributeRule:
		if fn == nil || fn.IsZero() {
			return AttributeRule{}, errors.New("rule is empty")
		}
		return *fn, nil
	case func() (any, error):
		return NoArgRule(fn), nil
	case func() any:
		return NoArgRule(func() (any, error) { return fn(), nil }), nil
	case func(Snapshot) (any, error):
		return SnapshotRule(fn), nil
	case func(Snapshot) any:
		return SnapshotRule(func(s Snapshot) (any, error) { return fn(s), nil }), nil
	}
	return reflectRule(rule)
}

// reflectRule adapts typed functions such as func() string or
// func(Snapshot) (int, error).
func reflectRule(rule any) (AttributeRule, error) {
	v := reflect.ValueOf(rule)
	t := v.Type()
	if t.Kind() != reflect.Func {
		return AttributeRule{}, fmt.Errorf("%T is not callable", rule)
	}
	if v.IsNil() {
		return AttributeRule{}, errors.New("rule is nil")
	}
	if t.IsVariadic() || t.NumIn() > 1 {
		return AttributeRule{}, fmt.Errorf("%s takes positional parameters; rules accept no argument or the attribute snapshot", t)
	}
	switch t.NumOut() {
	case 1:
	case 2:
		if t.Out(1) != errorType {
			return AttributeRule{}, fmt.Errorf("%s: second result must be error", t)
		}
	default:
		return AttributeRule{}, fmt.Errorf("%s must return a value and an optional error", t)
	}

	var argOf func(Snapshot) []reflect.Value
	switch {
	case t.NumIn() == 0:
		argOf = func(Snapshot) []reflect.Value { return nil }
	case t.In(0) == snapshotType:
		argOf = func(s Snapshot) []reflect.Value { return []reflect.Value{reflect.ValueOf(s)} }
	case t.In(0) == attrMapType:
		argOf = func(s Snapshot) []reflect.Value { return []reflect.Value{reflect.ValueOf(s.Map())} }
	default:
		return AttributeRule{}, fmt.Errorf("%s takes positional parameters; rules accept no argument or the attribute snapshot", t)
	}

	return SnapshotRule(func(s Snapshot) (any, error) {
		out := v.Call(argOf(s))
		if len(out) == 2 && !out[1].IsNil() {
			return nil, out[1].Interface().(error)
		}
		return out[0].Interface(), nil
	}), nil
}

// compileRules validates the attribute table. Names must be unique and
// non-empty.
func compileRules(attrs []Attribute) ([]namedRule, error) {
	rules := make([]namedRule, 0, len(attrs))
	seen := make(map[string]struct{}, len(attrs))
	for i, a := range attrs {
		field := fmt.Sprintf("Attributes[%d]", i)
		if a.Name == "" {
			return nil, configErr(field, "attribute name is empty")
		}
		field = "Attributes[" + a.Name + "]"
		if _, dup := seen[a.Name]; dup {
			return nil, configErr(field, "duplicate attribute name")
		}
		seen[a.Name] = struct{}{}
		rule, err := NewRule(a.Rule)
		if err != nil {
			return nil, &ConfigurationError{Field: field, Reason: "invalid rule", Err: err}
		}
		rules = append(rules, namedRule{name: a.Name, rule: rule})
	}
	return rules, nil
}

// applyRules runs each rule in order and stores its value in attrs,
// overriding any previous value.
func applyRules(rules []namedRule, attrs map[string]any) error {
	s := Snapshot{m: attrs}
	for _, r := range rules {
		v, err := r.rule.Eval(s)
		if err != nil {
			return &AttributeRuleError{Attribute: r.name, Err: err}
		}
		attrs[r.name] = v
	}
	return nil
}
