package formatter

import (
	"errors"
	"reflect"
	"testing"
)

func testSnapshot() Snapshot {
	return NewSnapshot(map[string]any{
		"name":    "app",
		"levelno": 20,
		"ratio":   0.5,
		"count":   255,
		"letter":  65,
		"neg":     -5,
		"pi":      3.14159,
		"whole":   2.0,
		"big":     1234567,
		"word":    "hello",
		"flag":    true,
		"nothing": nil,
		"asctime": "2026-02-18 13:00:00,123",
	})
}

func TestParseStyle(t *testing.T) {
	tests := []struct {
		in   string
		want TemplateEngine
	}{
		{"", Percent},
		{"%", Percent},
		{"percent", Percent},
		{"{", Brace},
		{"Brace", Brace},
		{"$", Dollar},
		{"dollar", Dollar},
	}
	for _, tt := range tests {
		got, err := ParseStyle(tt.in)
		if err != nil {
			t.Fatalf("ParseStyle(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseStyle(%q) = %s, want %s", tt.in, got.Name(), tt.want.Name())
		}
	}

	_, err := ParseStyle("#")
	var ce *ConfigurationError
	if !errors.As(err, &ce) || ce.Field != "Style" {
		t.Errorf("ParseStyle(#) error = %v, want ConfigurationError on Style", err)
	}
}

func TestPercent_Render(t *testing.T) {
	tests := []struct {
		tmpl string
		want string
	}{
		{"%(name)s", "app"},
		{"%(levelno)s", "20"},
		{"%(levelno)d", "20"},
		{"%(levelno)5d|", "   20|"},
		{"%(levelno)-5d|", "20   |"},
		{"%(levelno)05d", "00020"},
		{"%(levelno)+d", "+20"},
		{"%(count)x", "ff"},
		{"%(count)#x", "0xff"},
		{"%(count)X", "FF"},
		{"%(count)#o", "0o377"},
		{"%(letter)c", "A"},
		{"%(pi).2f", "3.14"},
		{"%(pi)e", "3.141590e+00"},
		{"%(pi)g", "3.14159"},
		{"%(ratio)s", "0.5"},
		{"%(word).3s", "hel"},
		{"%(word)8s", "   hello"},
		{"%(word)-8s|", "hello   |"},
		{"%(word)r", `"hello"`},
		{"%(flag)s", "true"},
		{"%(nothing)s", "null"},
		{"100%% %(name)s", "100% app"},
		{"[%(levelno)d] %(name)s: %(word)s", "[20] app: hello"},
		{"plain text", "plain text"},
		{"", ""},
	}

	s := testSnapshot()
	for _, tt := range tests {
		t.Run(tt.tmpl, func(t *testing.T) {
			got, err := Percent.Render(tt.tmpl, s)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBrace_Render(t *testing.T) {
	tests := []struct {
		tmpl string
		want string
	}{
		{"{name}", "app"},
		{"{levelno}", "20"},
		{"{levelno:5}", "   20"},
		{"{levelno:<5}|", "20   |"},
		{"{levelno:^6}", "  20  "},
		{"{levelno:05}", "00020"},
		{"{levelno:+d}", "+20"},
		{"{neg:05}", "-0005"},
		{"{count:x}", "ff"},
		{"{count:#x}", "0xff"},
		{"{count:#b}", "0b11111111"},
		{"{big:,}", "1,234,567"},
		{"{big:_d}", "1_234_567"},
		{"{pi}", "3.14159"},
		{"{pi:.2f}", "3.14"},
		{"{pi:.3}", "3.14"},
		{"{whole}", "2.0"},
		{"{ratio:%}", "50.000000%"},
		{"{ratio:.1%}", "50.0%"},
		{"{word!r}", `"hello"`},
		{"{word:*>8}", "***hello"},
		{"{word:8}|", "hello   |"},
		{"{word:.2}", "he"},
		{"{flag}", "true"},
		{"{{literal}} {name}", "{literal} app"},
		{"{name}-{levelno}", "app-20"},
	}

	s := testSnapshot()
	for _, tt := range tests {
		t.Run(tt.tmpl, func(t *testing.T) {
			got, err := Brace.Render(tt.tmpl, s)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDollar_Render(t *testing.T) {
	tests := []struct {
		tmpl string
		want string
	}{
		{"$name", "app"},
		{"${name}x", "appx"},
		{"$$5", "$5"},
		{"$name-$levelno", "app-20"},
		{"${flag}", "true"},
		{"no refs", "no refs"},
	}

	s := testSnapshot()
	for _, tt := range tests {
		t.Run(tt.tmpl, func(t *testing.T) {
			got, err := Dollar.Render(tt.tmpl, s)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompile_Malformed(t *testing.T) {
	tests := []struct {
		engine TemplateEngine
		tmpl   string
	}{
		{Percent, "%(name)"},
		{Percent, "%(name"},
		{Percent, "%(name)q"},
		{Percent, "%s"},
		{Percent, "%(name)*d"},
		{Percent, "trailing %"},
		{Brace, "{name"},
		{Brace, "name}"},
		{Brace, "{}"},
		{Brace, "{a.b}"},
		{Brace, "{name!x}"},
		{Brace, "{name:q}"},
		{Brace, "{a:{b}}"},
		{Dollar, "$"},
		{Dollar, "$1"},
		{Dollar, "${bad"},
		{Dollar, "${1x}"},
	}

	for _, tt := range tests {
		t.Run(tt.engine.Name()+" "+tt.tmpl, func(t *testing.T) {
			_, err := tt.engine.Compile(tt.tmpl)
			if !errors.Is(err, ErrConfiguration) {
				t.Errorf("Compile(%q) error = %v, want ConfigurationError", tt.tmpl, err)
			}
		})
	}
}

func TestTemplate_MissingField(t *testing.T) {
	for _, engine := range []TemplateEngine{Percent, Brace, Dollar} {
		tmpl := map[string]string{"%": "%(user)s", "{": "{user}", "$": "$user"}[engine.Name()]
		_, err := engine.Render(tmpl, testSnapshot())

		var mf *MissingFieldError
		if !errors.As(err, &mf) {
			t.Fatalf("%s: Render() error = %v, want MissingFieldError", engine.Name(), err)
		}
		if mf.Field != "user" || mf.Template != tmpl {
			t.Errorf("%s: MissingFieldError = %+v", engine.Name(), mf)
		}
	}
}

func TestTemplate_UsesTimestamp(t *testing.T) {
	tests := []struct {
		engine TemplateEngine
		tmpl   string
		want   bool
	}{
		{Percent, "%(asctime)s %(message)s", true},
		{Percent, "%(message)s", false},
		{Percent, "asctime", false},
		{Percent, "%(asctime", false},
		{Brace, "{asctime:>30}", true},
		{Brace, "{message}", false},
		{Dollar, "${asctime}", true},
		{Dollar, "$asctime", true},
		{Dollar, "$message", false},
	}
	for _, tt := range tests {
		if got := tt.engine.UsesTimestamp(tt.tmpl); got != tt.want {
			t.Errorf("%s UsesTimestamp(%q) = %v, want %v", tt.engine.Name(), tt.tmpl, got, tt.want)
		}
	}
}

func TestTemplate_Fields(t *testing.T) {
	tmpl, err := Percent.Compile("%(a)s %(b)d %(a)s")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if got, want := tmpl.Fields(), []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Fields() = %v, want %v", got, want)
	}
	if tmpl.String() != "%(a)s %(b)d %(a)s" {
		t.Errorf("String() = %q", tmpl.String())
	}
}

func TestPercentSubstitute(t *testing.T) {
	tests := []struct {
		format string
		args   []any
		want   string
	}{
		{"%s and %s", []any{"a", "b"}, "a and b"},
		{"%d%%", []any{50}, "50%"},
		{"%5.1f", []any{3.14159}, "  3.1"},
		{"%*d", []any{4, 7}, "   7"},
		{"%-*d|", []any{4, 7}, "7   |"},
		{"%.*f", []any{2, 3.14159}, "3.14"},
		{"%(user)s logged in", []any{map[string]any{"user": "bob"}}, "bob logged in"},
		{"%s", []any{map[string]any{"user": "bob"}}, "map[user:bob]"},
		{"%r", []any{"quoted"}, `"quoted"`},
		{"%s", []any{nil}, "null"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			got, err := percentSubstitute(tt.format, tt.args)
			if err != nil {
				t.Fatalf("percentSubstitute() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("percentSubstitute() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPercentSubstitute_Errors(t *testing.T) {
	tests := []struct {
		format string
		args   []any
	}{
		{"%s %s", []any{"a"}},
		{"%s", []any{"a", "b"}},
		{"%(user)s", []any{"a", "b"}},
		{"%d", []any{"text"}},
		{"%(missing)s", []any{map[string]any{"user": "bob"}}},
	}
	for _, tt := range tests {
		if _, err := percentSubstitute(tt.format, tt.args); err == nil {
			t.Errorf("percentSubstitute(%q, %v) expected error", tt.format, tt.args)
		}
	}

	_, err := percentSubstitute("%v", []any{1})
	if !errors.Is(err, errUnsupportedVerb) {
		t.Errorf("percentSubstitute(%%v) error = %v, want errUnsupportedVerb", err)
	}
}

func BenchmarkPercentRender(b *testing.B) {
	tmpl, err := Percent.Compile("%(asctime)s [%(levelname)s] %(name)s: %(message)s")
	if err != nil {
		b.Fatal(err)
	}
	s := NewSnapshot(map[string]any{
		"asctime":   "2026-02-18 13:00:00,123",
		"levelname": "INFO",
		"name":      "app",
		"message":   "request handled",
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = tmpl.Render(s)
	}
}
