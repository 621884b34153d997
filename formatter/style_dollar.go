package formatter

import (
	"fmt"
	"strings"
)

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// compileDollar parses $name, ${name} and $$ references.
func compileDollar(tmpl string) (*Template, error) {
	t := &Template{src: tmpl}
	var lit strings.Builder
	str := func(v any) (string, error) { return valueString(v), nil }

	for i := 0; i < len(tmpl); {
		c := tmpl[i]
		if c != '$' {
			lit.WriteByte(c)
			i++
			continue
		}
		if i+1 >= len(tmpl) {
			return nil, fmt.Errorf("invalid placeholder at index %d", i)
		}
		switch next := tmpl[i+1]; {
		case next == '$':
			lit.WriteByte('$')
			i += 2
		case next == '{':
			end := strings.IndexByte(tmpl[i+2:], '}')
			if end < 0 {
				return nil, fmt.Errorf("invalid placeholder at index %d", i)
			}
			name := tmpl[i+2 : i+2+end]
			if !validIdent(name) {
				return nil, fmt.Errorf("invalid placeholder %q at index %d", name, i)
			}
			t.addLiteral(lit.String())
			lit.Reset()
			t.addField(name, str)
			i += end + 3
		case isIdentStart(next):
			j := i + 1
			for j < len(tmpl) && isIdentChar(tmpl[j]) {
				j++
			}
			t.addLiteral(lit.String())
			lit.Reset()
			t.addField(tmpl[i+1:j], str)
			i = j
		default:
			return nil, fmt.Errorf("invalid placeholder at index %d", i)
		}
	}
	t.addLiteral(lit.String())
	return t, nil
}

func validIdent(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentChar(s[i]) {
			return false
		}
	}
	return true
}
