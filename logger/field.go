package logger

import (
	"fmt"
	"time"

	"github.com/philipp01105/jsonlog/core"
)

// Field constructors. Each keeps its JSON type in formatted output:
// Int renders as a number, Bool as true/false, Object as a nested object.
// Scalar constructors do not allocate.

func String(key, val string) core.Field {
	return core.Field{Key: key, Type: core.StringType, Str: val}
}

func Int(key string, val int) core.Field {
	return core.Field{Key: key, Type: core.IntType, Int64: int64(val)}
}

func Int64(key string, val int64) core.Field {
	return core.Field{Key: key, Type: core.Int64Type, Int64: val}
}

func Uint64(key string, val uint64) core.Field {
	return core.Field{Key: key, Type: core.Uint64Type, Int64: int64(val)}
}

func Float64(key string, val float64) core.Field {
	return core.Field{Key: key, Type: core.Float64Type, Float64: val}
}

func Bool(key string, val bool) core.Field {
	f := core.Field{Key: key, Type: core.BoolType}
	if val {
		f.Int64 = 1
	}
	return f
}

// Time renders in RFC 3339 form with nanoseconds.
func Time(key string, val time.Time) core.Field {
	return core.Field{Key: key, Type: core.TimeType, Int64: val.UnixNano()}
}

// Duration renders as integer nanoseconds.
func Duration(key string, val time.Duration) core.Field {
	return core.Field{Key: key, Type: core.DurationType, Int64: int64(val)}
}

// Err adds the message of err under "error". Use Logger.Exception to
// attach the error itself so that it is rendered into exc_text.
func Err(err error) core.Field {
	f := core.Field{Key: "error", Type: core.ErrorType}
	if err != nil {
		f.Str = err.Error()
	}
	return f
}

func Strings(key string, val []string) core.Field {
	return core.Field{Key: key, Type: core.AnyType, Any: val}
}

// Stringer calls val.String() immediately.
func Stringer(key string, val fmt.Stringer) core.Field {
	return core.Field{Key: key, Type: core.StringType, Str: val.String()}
}

// Object creates a nested object from alternating keys and values,
// keeping their order. A trailing key without a value is dropped.
func Object(key string, kv ...any) core.Field {
	m := core.NewOrderedMap()
	for i := 0; i+1 < len(kv); i += 2 {
		m.Set(fmt.Sprint(kv[i]), kv[i+1])
	}
	return core.Field{Key: key, Type: core.AnyType, Any: m}
}

// Any picks the most specific field type for val.
func Any(key string, val any) core.Field {
	return core.FieldOf(key, val)
}
