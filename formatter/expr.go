package formatter

import (
	"reflect"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"

	"github.com/philipp01105/jsonlog/core"
)

var (
	nativeMapType  = reflect.TypeOf(map[string]any(nil))
	nativeListType = reflect.TypeOf([]any(nil))
)

// ExprRule compiles a CEL expression into a rule. The expression sees
// every standard attribute as a variable (levelname, lineno, ...) and
// the whole snapshot as the map attrs:
//
//	levelno >= 40 ? "page" : "ignore"
//	attrs.user + "@" + name
func ExprRule(expr string) (AttributeRule, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return AttributeRule{}, configErr("expr", "expression is empty")
	}

	opts := make([]cel.EnvOption, 0, len(core.StandardAttributes)+1)
	for _, name := range core.StandardAttributes {
		opts = append(opts, cel.Variable(name, cel.DynType))
	}
	opts = append(opts, cel.Variable("attrs", cel.MapType(cel.StringType, cel.DynType)))
	env, err := cel.NewEnv(opts...)
	if err != nil {
		return AttributeRule{}, &ConfigurationError{Field: "expr", Reason: "cannot build environment", Err: err}
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return AttributeRule{}, &ConfigurationError{Field: "expr", Reason: "parse " + expr, Err: iss.Err()}
	}
	checked, iss := env.Check(ast)
	if iss != nil && iss.Err() != nil {
		return AttributeRule{}, &ConfigurationError{Field: "expr", Reason: "check " + expr, Err: iss.Err()}
	}
	prog, err := env.Program(checked)
	if err != nil {
		return AttributeRule{}, &ConfigurationError{Field: "expr", Reason: "program " + expr, Err: err}
	}

	return SnapshotRule(func(s Snapshot) (any, error) {
		attrs := make(map[string]any, s.Len())
		for k, v := range s.m {
			attrs[k] = celValue(v)
		}
		vars := make(map[string]any, len(core.StandardAttributes)+1)
		for _, name := range core.StandardAttributes {
			if v, ok := attrs[name]; ok {
				vars[name] = v
			}
		}
		vars["attrs"] = attrs
		out, _, err := prog.Eval(vars)
		if err != nil {
			return nil, err
		}
		return nativeValue(out)
	}), nil
}

// celValue converts values CEL cannot adapt on its own.
func celValue(v any) any {
	switch val := v.(type) {
	case *core.OrderedMap:
		m := make(map[string]any, val.Len())
		val.Range(func(k string, v any) bool {
			m[k] = celValue(v)
			return true
		})
		return m
	case int:
		return int64(val)
	case error:
		return val.Error()
	}
	return v
}

func nativeValue(v ref.Val) (any, error) {
	switch val := v.(type) {
	case types.Null:
		return nil, nil
	case traits.Mapper:
		return val.ConvertToNative(nativeMapType)
	case traits.Lister:
		return val.ConvertToNative(nativeListType)
	}
	return v.Value(), nil
}
