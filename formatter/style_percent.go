package formatter

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/philipp01105/jsonlog/core"
)

const (
	noValue   = -1
	starValue = -2
)

// errUnsupportedVerb marks a conversion the percent grammar does not
// know. Message substitution falls back to fmt for those.
var errUnsupportedVerb = errors.New("unsupported format character")

// percentDirective is one %[(name)][flags][width][.precision]verb.
type percentDirective struct {
	name  string
	named bool
	flags string
	width int
	prec  int
	verb  byte
}

type percentPiece struct {
	lit string
	dir *percentDirective
}

// scanPercent splits s into literal text and directives.
func scanPercent(s string) ([]percentPiece, error) {
	var (
		pieces []percentPiece
		lit    strings.Builder
	)
	flush := func() {
		if lit.Len() > 0 {
			pieces = append(pieces, percentPiece{lit: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(s); {
		c := s[i]
		if c != '%' {
			lit.WriteByte(c)
			i++
			continue
		}
		i++
		if i >= len(s) {
			return nil, errors.New("incomplete format")
		}
		d := &percentDirective{width: noValue, prec: noValue}

		if s[i] == '(' {
			depth, start := 1, i+1
			i++
			for i < len(s) && depth > 0 {
				switch s[i] {
				case '(':
					depth++
				case ')':
					depth--
				}
				i++
			}
			if depth > 0 {
				return nil, errors.New("incomplete format key")
			}
			d.name, d.named = s[start:i-1], true
		}

		for i < len(s) && strings.IndexByte("#0- +", s[i]) >= 0 {
			if strings.IndexByte(d.flags, s[i]) < 0 {
				d.flags += string(s[i])
			}
			i++
		}
		d.width, i = scanCount(s, i)
		if i < len(s) && s[i] == '.' {
			d.prec, i = scanCount(s, i+1)
			if d.prec == noValue {
				d.prec = 0
			}
		}
		for i < len(s) && strings.IndexByte("hlL", s[i]) >= 0 {
			i++
		}
		if i >= len(s) {
			return nil, errors.New("incomplete format")
		}

		d.verb = s[i]
		i++
		if d.verb == '%' && !d.named {
			lit.WriteByte('%')
			continue
		}
		if strings.IndexByte("diouxXeEfFgGcrsa%", d.verb) < 0 {
			return nil, fmt.Errorf("%w '%c' (0x%x) at index %d", errUnsupportedVerb, d.verb, d.verb, i-1)
		}
		flush()
		pieces = append(pieces, percentPiece{dir: d})
	}
	flush()
	return pieces, nil
}

func scanCount(s string, i int) (int, int) {
	if i < len(s) && s[i] == '*' {
		return starValue, i + 1
	}
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == start {
		return noValue, i
	}
	n, err := strconv.Atoi(s[start:i])
	if err != nil {
		return noValue, i
	}
	return n, i
}

func compilePercent(tmpl string) (*Template, error) {
	pieces, err := scanPercent(tmpl)
	if err != nil {
		return nil, err
	}
	t := &Template{src: tmpl}
	for _, p := range pieces {
		if p.dir == nil {
			t.addLiteral(p.lit)
			continue
		}
		d := p.dir
		if !d.named {
			return nil, errors.New("format requires a mapping")
		}
		if d.width == starValue || d.prec == starValue {
			return nil, errors.New("* wants int")
		}
		if d.verb == '%' {
			t.addLiteral("%")
			continue
		}
		t.addField(d.name, d.format)
	}
	return t, nil
}

// percentSubstitute applies args to a message format. A single map
// argument supplies named directives.
func percentSubstitute(format string, args []any) (string, error) {
	pieces, err := scanPercent(format)
	if err != nil {
		return "", err
	}

	var mapping func(string) (any, bool)
	if len(args) == 1 {
		mapping = mappingOf(args[0])
	}

	var (
		b    strings.Builder
		next int
	)
	take := func() (any, error) {
		if next >= len(args) {
			return nil, errors.New("not enough arguments for format string")
		}
		v := args[next]
		next++
		return v, nil
	}

	for _, p := range pieces {
		if p.dir == nil {
			b.WriteString(p.lit)
			continue
		}
		d := *p.dir
		if d.named {
			if mapping == nil {
				return "", errors.New("format requires a mapping")
			}
			if d.verb == '%' {
				b.WriteByte('%')
				continue
			}
			v, ok := mapping(d.name)
			if !ok {
				return "", fmt.Errorf("missing key %q", d.name)
			}
			out, err := d.format(v)
			if err != nil {
				return "", err
			}
			b.WriteString(out)
			continue
		}

		if d.width == starValue {
			v, err := take()
			if err != nil {
				return "", err
			}
			w, ok := v.(int)
			if !ok {
				return "", errors.New("* wants int")
			}
			if w < 0 {
				d.flags += "-"
				w = -w
			}
			d.width = w
		}
		if d.prec == starValue {
			v, err := take()
			if err != nil {
				return "", err
			}
			p, ok := v.(int)
			if !ok {
				return "", errors.New("* wants int")
			}
			d.prec = max(p, 0)
		}
		v, err := take()
		if err != nil {
			return "", err
		}
		out, err := d.format(v)
		if err != nil {
			return "", err
		}
		b.WriteString(out)
	}

	if mapping == nil && next < len(args) {
		return "", errors.New("not all arguments converted during string formatting")
	}
	return b.String(), nil
}

// format renders v according to the directive.
func (d *percentDirective) format(v any) (string, error) {
	left := strings.IndexByte(d.flags, '-') >= 0
	switch d.verb {
	case 's', 'r', 'a':
		var s string
		switch d.verb {
		case 's':
			s = valueString(v)
		case 'r':
			s = reprString(v, false)
		default:
			s = reprString(v, true)
		}
		if d.prec >= 0 {
			s = truncateRunes(s, d.prec)
		}
		return pad(s, d.width, ' ', left), nil

	case 'c':
		var s string
		switch val := v.(type) {
		case string:
			if utf8.RuneCountInString(val) != 1 {
				return "", errors.New("%c requires int or char")
			}
			s = val
		default:
			n, ok := toInt(v)
			if !ok {
				return "", errors.New("%c requires int or char")
			}
			s = string(rune(n))
		}
		return pad(s, d.width, ' ', left), nil

	case 'd', 'i', 'u', 'o', 'x', 'X':
		n, ok := toInt(v)
		if !ok {
			return "", fmt.Errorf("%%%c format: a number is required, not %T", d.verb, v)
		}
		verb, flags := d.verb, d.flags
		switch verb {
		case 'i', 'u':
			verb = 'd'
		case 'o':
			if strings.IndexByte(flags, '#') >= 0 {
				verb, flags = 'O', strings.ReplaceAll(flags, "#", "")
			}
		}
		return fmt.Sprintf(d.spec(flags, verb), n), nil

	default:
		f, ok := toFloat(v)
		if !ok {
			return "", fmt.Errorf("must be real number, not %T", v)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			s := formatFloat(f)
			if d.verb >= 'A' && d.verb <= 'Z' {
				s = strings.ToUpper(s)
			}
			return pad(s, d.width, ' ', left), nil
		}
		prec := d.prec
		if prec == noValue && (d.verb == 'g' || d.verb == 'G') {
			prec = 6
		}
		dd := *d
		dd.prec = prec
		return fmt.Sprintf(dd.spec(d.flags, d.verb), f), nil
	}
}

func (d *percentDirective) spec(flags string, verb byte) string {
	var b strings.Builder
	b.WriteByte('%')
	b.WriteString(flags)
	if d.width >= 0 {
		b.WriteString(strconv.Itoa(d.width))
	}
	if d.prec >= 0 {
		b.WriteByte('.')
		b.WriteString(strconv.Itoa(d.prec))
	}
	b.WriteByte(verb)
	return b.String()
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func pad(s string, width int, fill rune, left bool) string {
	n := width - utf8.RuneCountInString(s)
	if n <= 0 {
		return s
	}
	padding := strings.Repeat(string(fill), n)
	if left {
		return s + padding
	}
	return padding + s
}

// mappingOf returns a name lookup when v is a map-like argument.
func mappingOf(v any) func(string) (any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return func(k string) (any, bool) { val, ok := m[k]; return val, ok }
	case map[string]string:
		return func(k string) (any, bool) { val, ok := m[k]; return val, ok }
	case *core.OrderedMap:
		return m.Get
	case Snapshot:
		return m.Lookup
	}
	return nil
}
