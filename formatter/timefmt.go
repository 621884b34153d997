package formatter

import (
	"strconv"
	"strings"
	"time"

	"github.com/lestrrat-go/strftime"
)

// DefaultDateFormat renders asctime as "2024-01-02 15:04:05,123".
const DefaultDateFormat = "2006-01-02 15:04:05,000"

// microseconds implements the %f directive (zero-padded microseconds).
var microseconds = strftime.AppendFunc(func(b []byte, t time.Time) []byte {
	us := t.Nanosecond() / int(time.Microsecond)
	s := strconv.Itoa(us)
	for i := len(s); i < 6; i++ {
		b = append(b, '0')
	}
	return append(b, s...)
})

// timeFormat renders asctime. A pattern containing '%' is a strftime
// pattern, anything else a Go reference layout.
type timeFormat struct {
	layout string
	sf     *strftime.Strftime
	loc    *time.Location
}

func newTimeFormat(pattern string, loc *time.Location) (*timeFormat, error) {
	if pattern == "" {
		pattern = DefaultDateFormat
	}
	tf := &timeFormat{layout: pattern, loc: loc}
	if strings.Contains(pattern, "%") {
		sf, err := strftime.New(pattern,
			strftime.WithMilliseconds('L'),
			strftime.WithSpecification('f', microseconds),
		)
		if err != nil {
			return nil, &ConfigurationError{Field: "DateFormat", Reason: "invalid strftime pattern " + strconv.Quote(pattern), Err: err}
		}
		tf.sf = sf
	}
	return tf, nil
}

func (f *timeFormat) format(t time.Time) string {
	if f.loc != nil {
		t = t.In(f.loc)
	}
	if f.sf != nil {
		return f.sf.FormatString(t)
	}
	return t.Format(f.layout)
}
