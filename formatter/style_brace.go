package formatter

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// braceSpec is the parsed [[fill]align][sign][#][0][width][grouping][.precision][type]
// part of a {name:spec} reference.
type braceSpec struct {
	fill  rune
	align byte
	sign  byte
	alt   bool
	width int
	group byte
	prec  int
	typ   byte
	conv  byte
}

func compileBrace(tmpl string) (*Template, error) {
	t := &Template{src: tmpl}
	var lit strings.Builder
	for i := 0; i < len(tmpl); {
		c := tmpl[i]
		switch {
		case c == '{' && i+1 < len(tmpl) && tmpl[i+1] == '{':
			lit.WriteByte('{')
			i += 2
		case c == '}' && i+1 < len(tmpl) && tmpl[i+1] == '}':
			lit.WriteByte('}')
			i += 2
		case c == '}':
			return nil, errors.New("single '}' encountered in format string")
		case c == '{':
			end := strings.IndexByte(tmpl[i:], '}')
			if end < 0 {
				return nil, errors.New("expected '}' before end of string")
			}
			body := tmpl[i+1 : i+end]
			if strings.IndexByte(body, '{') >= 0 {
				return nil, errors.New("nested replacement fields are not supported")
			}
			name, spec, err := parseBraceField(body)
			if err != nil {
				return nil, err
			}
			t.addLiteral(lit.String())
			lit.Reset()
			t.addField(name, spec.format)
			i += end + 1
		default:
			lit.WriteByte(c)
			i++
		}
	}
	t.addLiteral(lit.String())
	return t, nil
}

func parseBraceField(body string) (string, *braceSpec, error) {
	name, rest := body, ""
	if i := strings.IndexAny(body, "!:"); i >= 0 {
		name, rest = body[:i], body[i:]
	}
	if name == "" {
		return "", nil, errors.New("positional replacement fields are not supported")
	}
	if strings.ContainsAny(name, ".[") {
		return "", nil, fmt.Errorf("attribute or index access in %q is not supported", name)
	}

	spec := &braceSpec{width: noValue, prec: noValue}
	if strings.HasPrefix(rest, "!") {
		if len(rest) < 2 || strings.IndexByte("rsa", rest[1]) < 0 {
			return "", nil, errors.New("unknown conversion specifier")
		}
		spec.conv = rest[1]
		rest = rest[2:]
		if rest != "" && rest[0] != ':' {
			return "", nil, errors.New("expected ':' after conversion specifier")
		}
	}
	if strings.HasPrefix(rest, ":") {
		if err := spec.parse(rest[1:]); err != nil {
			return "", nil, err
		}
	}
	return name, spec, nil
}

func isAlign(c byte) bool { return c == '<' || c == '>' || c == '^' || c == '=' }

func (s *braceSpec) parse(spec string) error {
	i := 0
	if r, size := utf8.DecodeRuneInString(spec); size > 0 && size < len(spec) && isAlign(spec[size]) {
		s.fill, s.align = r, spec[size]
		i = size + 1
	} else if len(spec) > 0 && isAlign(spec[0]) {
		s.align = spec[0]
		i = 1
	}
	if i < len(spec) && (spec[i] == '+' || spec[i] == '-' || spec[i] == ' ') {
		s.sign = spec[i]
		i++
	}
	if i < len(spec) && spec[i] == '#' {
		s.alt = true
		i++
	}
	if i < len(spec) && spec[i] == '0' {
		if s.fill == 0 {
			s.fill = '0'
		}
		if s.align == 0 {
			s.align = '='
		}
		i++
	}
	s.width, i = scanCount(spec, i)
	if s.width == starValue {
		return errors.New("invalid format spec")
	}
	if i < len(spec) && (spec[i] == ',' || spec[i] == '_') {
		s.group = spec[i]
		i++
	}
	if i < len(spec) && spec[i] == '.' {
		s.prec, i = scanCount(spec, i+1)
		if s.prec < 0 {
			return errors.New("format specifier missing precision")
		}
	}
	if i < len(spec) {
		s.typ = spec[i]
		i++
		if strings.IndexByte("sbcdoxXneEfFgG%", s.typ) < 0 {
			return fmt.Errorf("unknown format code '%c'", s.typ)
		}
	}
	if i != len(spec) {
		return errors.New("invalid format specifier")
	}
	return nil
}

// format renders v the way str.format renders a replacement field.
func (s *braceSpec) format(v any) (string, error) {
	switch s.conv {
	case 'r':
		v = reprString(v, false)
	case 's':
		v = valueString(v)
	case 'a':
		v = reprString(v, true)
	}

	switch s.typ {
	case 0, 's':
		if str, ok := v.(string); ok || s.typ == 's' {
			if !ok {
				str = valueString(v)
			}
			if s.prec >= 0 {
				str = truncateRunes(str, s.prec)
			}
			return s.justify(str, "", '<'), nil
		}
		if _, isBool := v.(bool); isBool {
			return s.justify(valueString(v), "", '<'), nil
		}
		if n, ok := v.(float64); ok || isFloat32(v) {
			if !ok {
				n, _ = toFloat(v)
			}
			return s.formatFloat(n)
		}
		if _, ok := toInt(v); ok {
			return s.formatInt(v)
		}
		return s.justify(valueString(v), "", '<'), nil

	case 'c':
		n, ok := toInt(v)
		if !ok {
			return "", fmt.Errorf("unknown format code 'c' for %T", v)
		}
		return s.justify(string(rune(n)), "", '<'), nil

	case 'b', 'd', 'o', 'x', 'X', 'n':
		if f, ok := v.(float64); ok && f != math.Trunc(f) {
			return "", fmt.Errorf("unknown format code '%c' for float", s.typ)
		}
		return s.formatInt(v)

	default:
		f, ok := toFloat(v)
		if !ok {
			return "", fmt.Errorf("unknown format code '%c' for %T", s.typ, v)
		}
		return s.formatFloat(f)
	}
}

func isFloat32(v any) bool {
	_, ok := v.(float32)
	return ok
}

func (s *braceSpec) formatInt(v any) (string, error) {
	n, ok := toInt(v)
	if !ok {
		return "", fmt.Errorf("unknown format code '%c' for %T", s.typ, v)
	}
	neg := n < 0
	u := uint64(n)
	if neg {
		u = uint64(-n)
	}

	var digits, prefix string
	switch s.typ {
	case 'b':
		digits, prefix = strconv.FormatUint(u, 2), "0b"
	case 'o':
		digits, prefix = strconv.FormatUint(u, 8), "0o"
	case 'x':
		digits, prefix = strconv.FormatUint(u, 16), "0x"
	case 'X':
		digits, prefix = strings.ToUpper(strconv.FormatUint(u, 16)), "0X"
	default:
		digits = strconv.FormatUint(u, 10)
	}
	if s.group != 0 {
		every := 3
		if s.typ == 'b' || s.typ == 'o' || s.typ == 'x' || s.typ == 'X' {
			every = 4
		}
		digits = group(digits, s.group, every)
	}
	if !s.alt {
		prefix = ""
	}
	return s.justify(digits, s.signOf(neg)+prefix, '>'), nil
}

func (s *braceSpec) formatFloat(f float64) (string, error) {
	neg := math.Signbit(f) && !math.IsNaN(f)
	f = math.Abs(f)

	var body string
	switch {
	case math.IsNaN(f):
		body = "nan"
	case math.IsInf(f, 0):
		body = "inf"
	default:
		prec := s.prec
		switch s.typ {
		case 0:
			if prec < 0 {
				body = formatFloat(f)
				if !strings.ContainsAny(body, ".en") {
					body += ".0"
				}
			} else {
				body = strconv.FormatFloat(f, 'g', max(prec, 1), 64)
			}
		case 'e', 'E', 'f', 'F':
			if prec < 0 {
				prec = 6
			}
			body = strconv.FormatFloat(f, lowerVerb(s.typ), prec, 64)
		case '%':
			if prec < 0 {
				prec = 6
			}
			body = strconv.FormatFloat(f*100, 'f', prec, 64) + "%"
		default:
			if prec < 0 {
				prec = 6
			}
			body = strconv.FormatFloat(f, 'g', max(prec, 1), 64)
		}
	}
	if s.typ >= 'A' && s.typ <= 'Z' {
		body = strings.ToUpper(body)
	}
	if s.group != 0 {
		intPart, frac := body, ""
		if i := strings.IndexAny(body, ".e%"); i >= 0 {
			intPart, frac = body[:i], body[i:]
		}
		body = group(intPart, s.group, 3) + frac
	}
	return s.justify(body, s.signOf(neg), '>'), nil
}

func lowerVerb(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

func (s *braceSpec) signOf(neg bool) string {
	switch {
	case neg:
		return "-"
	case s.sign == '+':
		return "+"
	case s.sign == ' ':
		return " "
	}
	return ""
}

// justify pads sign+body to the spec width. def is the alignment used
// when the spec has none.
func (s *braceSpec) justify(body, sign string, def byte) string {
	fill := s.fill
	if fill == 0 {
		fill = ' '
	}
	align := s.align
	if align == 0 {
		align = def
	}
	n := s.width - utf8.RuneCountInString(sign) - utf8.RuneCountInString(body)
	if n <= 0 {
		return sign + body
	}
	padding := func(k int) string { return strings.Repeat(string(fill), k) }
	switch align {
	case '<':
		return sign + body + padding(n)
	case '^':
		return padding(n/2) + sign + body + padding(n-n/2)
	case '=':
		return sign + padding(n) + body
	default:
		return padding(n) + sign + body
	}
}

func group(digits string, sep byte, every int) string {
	if len(digits) <= every {
		return digits
	}
	var b strings.Builder
	head := len(digits) % every
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += every {
		if b.Len() > 0 {
			b.WriteByte(sep)
		}
		b.WriteString(digits[i : i+every])
	}
	return b.String()
}
