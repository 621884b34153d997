package formatter

import (
	"errors"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestSnapshot(t *testing.T) {
	src := map[string]any{"b": 2, "a": "x"}
	s := NewSnapshot(src)
	src["c"] = 3

	if s.Has("c") {
		t.Error("NewSnapshot should copy its input")
	}
	if got, want := s.Keys(), []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if s.Get("b") != 2 || s.String("b") != "2" || s.String("nope") != "" {
		t.Errorf("Get/String returned unexpected values")
	}
	if _, ok := s.Lookup("nope"); ok {
		t.Error("Lookup(nope) should fail")
	}

	m := s.Map()
	m["a"] = "changed"
	if s.Get("a") != "x" {
		t.Error("Map() should return a copy")
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}

func TestNewRule_Accepted(t *testing.T) {
	snap := NewSnapshot(map[string]any{"levelname": "ERROR"})
	tests := []struct {
		name string
		rule any
		want any
	}{
		{"AttributeRule", StaticRule("static"), "static"},
		{"*AttributeRule", func() *AttributeRule { r := StaticRule(1); return &r }(), 1},
		{"func() any", func() any { return "v" }, "v"},
		{"func() (any, error)", func() (any, error) { return "v", nil }, "v"},
		{"func() string", func() string { return "typed" }, "typed"},
		{"func() (int, error)", func() (int, error) { return 7, nil }, 7},
		{"func(Snapshot) any", func(s Snapshot) any { return s.Get("levelname") }, "ERROR"},
		{"func(Snapshot) (string, error)", func(s Snapshot) (string, error) { return s.String("levelname"), nil }, "ERROR"},
		{"func(map) any", func(m map[string]any) any { return m["levelname"] }, "ERROR"},
		{"func(map) (bool, error)", func(m map[string]any) (bool, error) { return m["levelname"] == "ERROR", nil }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := NewRule(tt.rule)
			if err != nil {
				t.Fatalf("NewRule() error = %v", err)
			}
			got, err := rule.Eval(snap)
			if err != nil {
				t.Fatalf("Eval() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Eval() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestNewRule_Rejected(t *testing.T) {
	tests := []struct {
		name string
		rule any
		msg  string
	}{
		{"positional int", func(a int) int { return a }, "positional"},
		{"two snapshots", func(a, b Snapshot) any { return nil }, "positional"},
		{"variadic", func(args ...any) any { return nil }, "positional"},
		{"no result", func() {}, "must return"},
		{"bad second result", func() (int, int) { return 0, 0 }, "second result"},
		{"not callable", 42, "not callable"},
		{"nil", nil, "nil"},
		{"zero rule", AttributeRule{}, "empty"},
		{"nil func", (func() any)(nil), "nil"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRule(tt.rule)
			if err == nil {
				t.Fatal("NewRule() expected error")
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("NewRule() error = %q, want it to mention %q", err, tt.msg)
			}
		})
	}
}

func TestCompileRules(t *testing.T) {
	tests := []struct {
		name  string
		attrs []Attribute
		field string
	}{
		{"empty name", []Attribute{{Name: "", Rule: StaticRule(1)}}, "Attributes[0]"},
		{"duplicate", []Attribute{{Name: "a", Rule: StaticRule(1)}, {Name: "a", Rule: StaticRule(2)}}, "Attributes[a]"},
		{"positional", []Attribute{{Name: "status", Rule: func(level string) string { return level }}}, "Attributes[status]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileRules(tt.attrs)
			var ce *ConfigurationError
			if !errors.As(err, &ce) {
				t.Fatalf("compileRules() error = %v, want ConfigurationError", err)
			}
			if ce.Field != tt.field {
				t.Errorf("Field = %q, want %q", ce.Field, tt.field)
			}
		})
	}
}

func TestApplyRules_Order(t *testing.T) {
	rules, err := compileRules([]Attribute{
		{Name: "first", Rule: func(s Snapshot) any { return s.Has("second") }},
		{Name: "second", Rule: func(s Snapshot) any { return s.Get("first") }},
		{Name: "levelname", Rule: func(s Snapshot) any { return strings.ToLower(s.String("levelname")) }},
	})
	if err != nil {
		t.Fatalf("compileRules() error = %v", err)
	}

	attrs := map[string]any{"levelname": "INFO"}
	if err := applyRules(rules, attrs); err != nil {
		t.Fatalf("applyRules() error = %v", err)
	}
	if attrs["first"] != false {
		t.Errorf("first = %v, a rule must not see later rules", attrs["first"])
	}
	if attrs["second"] != false {
		t.Errorf("second = %v, want the value of first", attrs["second"])
	}
	if attrs["levelname"] != "info" {
		t.Errorf("levelname = %v, want override", attrs["levelname"])
	}
}

func TestApplyRules_Failures(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name string
		rule any
		is   error
	}{
		{"error", func() (any, error) { return nil, boom }, boom},
		{"panic", func() any { panic("kaput") }, nil},
		{"panic error", func() any { panic(boom) }, boom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules, err := compileRules([]Attribute{{Name: "status", Rule: tt.rule}})
			if err != nil {
				t.Fatalf("compileRules() error = %v", err)
			}
			err = applyRules(rules, map[string]any{})

			var re *AttributeRuleError
			if !errors.As(err, &re) {
				t.Fatalf("applyRules() error = %v, want AttributeRuleError", err)
			}
			if re.Attribute != "status" {
				t.Errorf("Attribute = %q, want status", re.Attribute)
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("error %v does not wrap %v", err, tt.is)
			}
			if !errors.Is(err, ErrAttributeRule) {
				t.Error("errors.Is(err, ErrAttributeRule) = false")
			}
		})
	}
}

func TestBuiltinRules(t *testing.T) {
	id1, err := UUIDRule().Eval(Snapshot{})
	if err != nil {
		t.Fatalf("UUIDRule() error = %v", err)
	}
	id2, _ := UUIDRule().Eval(Snapshot{})
	if _, err := uuid.Parse(id1.(string)); err != nil {
		t.Errorf("UUIDRule() = %v, not a UUID: %v", id1, err)
	}
	if id1 == id2 {
		t.Error("UUIDRule() returned the same id twice")
	}

	want, err := os.Hostname()
	if err != nil {
		t.Skipf("os.Hostname() error = %v", err)
	}
	if got, _ := HostnameRule().Eval(Snapshot{}); got != want {
		t.Errorf("HostnameRule() = %v, want %v", got, want)
	}
}

func TestExprRule(t *testing.T) {
	snap := NewSnapshot(map[string]any{
		"levelno":   40,
		"levelname": "ERROR",
		"name":      "app",
		"user":      "bob",
	})

	tests := []struct {
		expr string
		want any
	}{
		{`levelno >= 40 ? "page" : "ignore"`, "page"},
		{`attrs.user + "@" + name`, "bob@app"},
		{`levelname == "ERROR" || levelname == "FATAL"`, true},
		{`levelno * 2`, int64(80)},
		{`{"who": attrs.user}`, map[string]any{"who": "bob"}},
		{`null`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			rule, err := ExprRule(tt.expr)
			if err != nil {
				t.Fatalf("ExprRule() error = %v", err)
			}
			got, err := rule.Eval(snap)
			if err != nil {
				t.Fatalf("Eval() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Eval() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestExprRule_Errors(t *testing.T) {
	for _, expr := range []string{"", "levelno >=", "unknown_var + 1"} {
		if _, err := ExprRule(expr); !errors.Is(err, ErrConfiguration) {
			t.Errorf("ExprRule(%q) error = %v, want ConfigurationError", expr, err)
		}
	}

	rule, err := ExprRule(`exc_text + "!"`)
	if err != nil {
		t.Fatalf("ExprRule() error = %v", err)
	}
	if _, err := rule.Eval(NewSnapshot(map[string]any{})); err == nil {
		t.Error("Eval() expected an error for an absent attribute")
	}
}
