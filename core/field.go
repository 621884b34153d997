package core

import (
	"fmt"
	"strconv"
	"time"
)

// FieldType tells which member of a Field holds its value.
type FieldType uint8

const (
	StringType   FieldType = iota // Str
	IntType                       // Int64, reported as int
	Int64Type                     // Int64
	Uint64Type                    // Int64 holding the bits of a uint64
	Float64Type                   // Float64
	BoolType                      // Int64, 1 for true
	TimeType                      // Int64, Unix nanoseconds
	DurationType                  // Int64, nanoseconds
	ErrorType                     // Str, the error message
	AnyType                       // Any
)

// Field is one extra key/value pair attached to an Event. Scalar values
// are stored unboxed so that building a Field does not allocate.
type Field struct {
	Key     string
	Type    FieldType
	Int64   int64
	Float64 float64
	Str     string
	Any     any
}

// StringValue renders the value the way the text formatter prints it.
func (f Field) StringValue() string {
	switch f.Type {
	case StringType, ErrorType:
		return f.Str
	case IntType, Int64Type:
		return strconv.FormatInt(f.Int64, 10)
	case Uint64Type:
		return strconv.FormatUint(uint64(f.Int64), 10)
	case Float64Type:
		return strconv.FormatFloat(f.Float64, 'f', -1, 64)
	case BoolType:
		return strconv.FormatBool(f.Int64 == 1)
	case TimeType:
		return time.Unix(0, f.Int64).Format(time.RFC3339Nano)
	case DurationType:
		return time.Duration(f.Int64).String()
	case AnyType:
		if f.Any == nil {
			return "null"
		}
		return fmt.Sprint(f.Any)
	}
	return ""
}

// Value returns the field's value as a native Go value so that it keeps
// its JSON type when serialized. Times are reported in RFC 3339 form and
// durations as nanoseconds.
func (f Field) Value() any {
	switch f.Type {
	case StringType, ErrorType:
		return f.Str
	case IntType:
		return int(f.Int64)
	case Int64Type, DurationType:
		return f.Int64
	case Uint64Type:
		return uint64(f.Int64)
	case Float64Type:
		return f.Float64
	case BoolType:
		return f.Int64 == 1
	case TimeType:
		return time.Unix(0, f.Int64).Format(time.RFC3339Nano)
	default:
		return f.Any
	}
}

// FieldOf builds a Field for an arbitrary value, choosing the most
// specific FieldType.
func FieldOf(key string, v any) Field {
	f := Field{Key: key}
	switch val := v.(type) {
	case string:
		f.Type, f.Str = StringType, val
	case int:
		f.Type, f.Int64 = IntType, int64(val)
	case int32:
		f.Type, f.Int64 = Int64Type, int64(val)
	case int64:
		f.Type, f.Int64 = Int64Type, val
	case uint:
		f.Type, f.Int64 = Uint64Type, int64(val)
	case uint32:
		f.Type, f.Int64 = Uint64Type, int64(val)
	case uint64:
		f.Type, f.Int64 = Uint64Type, int64(val)
	case float32:
		f.Type, f.Float64 = Float64Type, float64(val)
	case float64:
		f.Type, f.Float64 = Float64Type, val
	case bool:
		f.Type = BoolType
		if val {
			f.Int64 = 1
		}
	case time.Time:
		f.Type, f.Int64 = TimeType, val.UnixNano()
	case time.Duration:
		f.Type, f.Int64 = DurationType, int64(val)
	case error:
		f.Type, f.Str = ErrorType, val.Error()
	default:
		f.Type, f.Any = AnyType, v
	}
	return f
}
