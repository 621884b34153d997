package formatter

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by the error types below through errors.Is.
var (
	ErrConfiguration = errors.New("jsonlog: invalid configuration")
	ErrMissingField  = errors.New("jsonlog: missing field")
	ErrAttributeRule = errors.New("jsonlog: attribute rule failed")
	ErrSerialization = errors.New("jsonlog: serialization failed")
)

// ConfigurationError reports an invalid formatter configuration. It is
// only ever returned by constructors.
type ConfigurationError struct {
	// Field names the offending option, e.g. "Style" or "Attributes[status]".
	Field  string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	msg := "jsonlog: invalid " + e.Field + ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Is matches ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

func configErr(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// MissingFieldError reports a template that references an attribute the
// record does not have.
type MissingFieldError struct {
	Template string
	Field    string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("jsonlog: template %q references missing attribute %q", e.Template, e.Field)
}

// Is matches ErrMissingField.
func (e *MissingFieldError) Is(target error) bool { return target == ErrMissingField }

// AttributeRuleError wraps the failure of a custom attribute rule.
type AttributeRuleError struct {
	Attribute string
	Err       error
}

func (e *AttributeRuleError) Error() string {
	return fmt.Sprintf("jsonlog: attribute rule %q: %v", e.Attribute, e.Err)
}

func (e *AttributeRuleError) Unwrap() error { return e.Err }

// Is matches ErrAttributeRule.
func (e *AttributeRuleError) Is(target error) bool { return target == ErrAttributeRule }

// SerializationError reports an output value that cannot be encoded.
type SerializationError struct {
	// Key is the top-level output key holding the value.
	Key string
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("jsonlog: cannot serialize key %q: %v", e.Key, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// Is matches ErrSerialization.
func (e *SerializationError) Is(target error) bool { return target == ErrSerialization }
