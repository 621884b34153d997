// Package formatter turns events into bytes.
//
// JSONFormatter is the main formatter. It is configured with a format
// specification, an ordered mapping from output key to field
// reference:
//
//	{"level": "levelname", "when": "asctime", "msg": "%(name)s: %(message)s"}
//
// A reference equal to an attribute name copies that attribute with its
// native type. Any other string is a template rendered in the selected
// style: Percent (%(name)s), Brace ({name}) or Dollar ($name).
// Numbers, booleans, null and nested objects are emitted as given, and
// functions are attribute rules whose result becomes the value.
//
// Each Format call builds a fresh attribute Snapshot from the event:
// the standard attributes (see core.StandardAttributes), then extras,
// then the custom attribute rules in order. Extras that the
// specification does not name are placed by the MergePolicy. The ordered
// result is serialized according to EncoderOptions.
//
// All configuration problems are reported by NewJSONFormatter as
// *ConfigurationError. Format returns *MissingFieldError,
// *AttributeRuleError or *SerializationError and never partial output.
//
// TextFormatter renders the plain logfmt-like layout and never fails.
// Both formatters use a pooled bytes.Buffer internally; buffers larger
// than 64 KiB are not returned to the pool.
package formatter
