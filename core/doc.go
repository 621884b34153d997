// Package core defines the shared types used across jsonlog.
//
// It provides the Level type for severity, the Event type that
// represents a single log event, the Field type for typed structured
// key-value pairs, and OrderedMap, the insertion-ordered map used for
// format specifications and ordered JSON objects.
//
// Events are read-only for formatters. A handler chain may pass the
// same Event to several formatters, and none of them may write
// per-call state back onto it. Event objects can be pooled via
// GetEvent and PutEvent once every handler has returned.
//
// The standard attribute names (name, levelname, message, asctime, ...)
// exposed to format specifications are listed in StandardAttributes.
package core
