package handler

import (
	"errors"

	"github.com/philipp01105/jsonlog/formatter"
)

var errHandlerClosed = errors.New("handler: closed")

// isFormatError reports whether err came from a formatter rather than
// the writer.
func isFormatError(err error) bool {
	return errors.Is(err, formatter.ErrMissingField) ||
		errors.Is(err, formatter.ErrAttributeRule) ||
		errors.Is(err, formatter.ErrSerialization)
}
