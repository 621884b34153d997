package main

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/philipp01105/jsonlog/core"
	"github.com/philipp01105/jsonlog/logger"
)

// decodeEvent parses one NDJSON input line into a pooled event. Keys
// other than the recognized ones become extras in input order.
func decodeEvent(line []byte, now func() time.Time) (*core.Event, error) {
	m := core.NewOrderedMap()
	if err := json.Unmarshal(line, m); err != nil {
		return nil, fmt.Errorf("invalid event: %w", err)
	}

	e := core.GetEvent()
	e.Time = now()
	e.Level = logger.InfoLevel

	var err error
	m.Range(func(key string, v any) bool {
		switch key {
		case "time":
			e.Time, err = parseTime(v)
		case "level":
			e.Level, err = parseLevel(v)
		case "logger":
			e.Logger, err = str(key, v)
		case "message":
			e.Message = v
		case "args":
			list, ok := v.([]any)
			if !ok && v != nil {
				err = fmt.Errorf("args: expected array, got %T", v)
			}
			e.Args = list
		case "error":
			var s string
			if s, err = str(key, v); err == nil && s != "" {
				e.Err = errors.New(s)
			}
		case "stack":
			e.Stack, err = str(key, v)
		case "caller":
			e.Caller, err = parseCaller(v)
		case "extra":
			extra, ok := v.(*core.OrderedMap)
			if !ok {
				err = fmt.Errorf("extra: expected object, got %T", v)
				break
			}
			extra.Range(func(k string, v any) bool {
				e.Extras = append(e.Extras, core.FieldOf(k, v))
				return true
			})
		default:
			e.Extras = append(e.Extras, core.FieldOf(key, v))
		}
		return err == nil
	})
	if err != nil {
		core.PutEvent(e)
		return nil, err
	}
	return e, nil
}

// parseTime accepts RFC 3339 strings and Unix seconds.
func parseTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case string:
		ts, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, fmt.Errorf("time: %w", err)
		}
		return ts, nil
	case int64:
		return time.Unix(t, 0), nil
	case float64:
		sec, frac := math.Modf(t)
		return time.Unix(int64(sec), int64(frac*1e9)), nil
	default:
		return time.Time{}, fmt.Errorf("time: expected string or number, got %T", v)
	}
}

// parseLevel accepts level names and numbers (10 for debug, 20 for
// info, ...).
func parseLevel(v any) (core.Level, error) {
	var s string
	switch l := v.(type) {
	case string:
		s = l
	case int64:
		s = fmt.Sprint(l)
	default:
		return logger.InfoLevel, fmt.Errorf("level: expected string or number, got %T", v)
	}
	level, ok := logger.LookupLevel(s)
	if !ok {
		return level, fmt.Errorf("level: unknown level %q", s)
	}
	return level, nil
}

func parseCaller(v any) (core.CallerInfo, error) {
	m, ok := v.(*core.OrderedMap)
	if !ok {
		return core.CallerInfo{}, fmt.Errorf("caller: expected object, got %T", v)
	}
	var c core.CallerInfo
	if f, ok := m.Get("file"); ok {
		c.File, _ = f.(string)
		c.ShortFile = filepath.Base(c.File)
	}
	if l, ok := m.Get("line"); ok {
		n, _ := l.(int64)
		c.Line = int(n)
	}
	if fn, ok := m.Get("function"); ok {
		c.Function, _ = fn.(string)
	}
	c.Defined = c.File != "" || c.Function != ""
	return c, nil
}

func str(key string, v any) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	default:
		return "", fmt.Errorf("%s: expected string, got %T", key, v)
	}
}
