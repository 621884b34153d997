package formatter

import (
	"bytes"
	"io"
	"sync"

	"github.com/philipp01105/jsonlog/core"
)

// Formatter turns an event into one line of output.
type Formatter interface {
	// Format renders e. The JSON formatter omits the trailing newline,
	// the text formatter includes it.
	Format(e *core.Event) ([]byte, error)
}

// WriterFormatter is implemented by formatters that can render straight
// into a writer. Handlers prefer it: the line, newline included, is
// written with a single Write call and nothing is written on error.
type WriterFormatter interface {
	FormatTo(e *core.Event, w io.Writer) error
}

// maxPooledBuffer caps the capacity of buffers returned to the pool so
// that one huge record does not pin memory.
const maxPooledBuffer = 64 << 10

var bufferPool = sync.Pool{
	New: func() any {
		b := new(bytes.Buffer)
		b.Grow(512)
		return b
	},
}

func getBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() <= maxPooledBuffer {
		bufferPool.Put(buf)
	}
}

// formatCopy runs render on a pooled buffer and returns a copy of the
// result, or nil on error.
func formatCopy(render func(*bytes.Buffer) error) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)
	if err := render(buf); err != nil {
		return nil, err
	}
	return bytes.Clone(buf.Bytes()), nil
}
