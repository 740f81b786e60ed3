package devices

import (
	"fmt"
	"strconv"
)

// BaseTypes is the set of types OSC callbacks can be bound for.
type BaseTypes interface {
	int64 | float64 | string | bool
}

// Args is what a typed OSC callback receives: the segments captured by "@" in the bound pattern and
// the message's first argument converted to T.
type Args[T BaseTypes] struct {
	Captures []string
	Value    T
}

// Callback[T] defines a function bound to an event such that it runs each time its event occurs.
type Callback[T BaseTypes] func(Args[T]) error

// convert interprets an OSC argument as T. Conversions are best-effort: numbers convert between each
// other, strings are parsed, and numbers render to strings.
func convert[T BaseTypes](arg any) (T, error) {
	var zero T
	var out any
	switch any(zero).(type) {
	case int64:
		v, err := toInt(arg)
		out = v
		if err != nil {
			return zero, err
		}
	case float64:
		v, err := toFloat(arg)
		out = v
		if err != nil {
			return zero, err
		}
	case string:
		out = toString(arg)
	case bool:
		v, err := toBool(arg)
		out = v
		if err != nil {
			return zero, err
		}
	}
	return out.(T), nil
}

func toInt(arg any) (int64, error) {
	switch v := arg.(type) {
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float32:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case string:
		i, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot interpret %q as int: %w", v, err)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("cannot interpret %T as int", arg)
	}
}

func toFloat(arg any) (float64, error) {
	switch v := arg.(type) {
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot interpret %q as float: %w", v, err)
		}
		return f, nil
	default:
		i, err := toInt(arg)
		if err != nil {
			return 0, fmt.Errorf("cannot interpret %T as float", arg)
		}
		return float64(i), nil
	}
}

func toString(arg any) string {
	switch v := arg.(type) {
	case nil:
		return ""
	case string:
		return v
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func toBool(arg any) (bool, error) {
	switch v := arg.(type) {
	case bool:
		return v, nil
	case string:
		return v == "true", nil
	default:
		f, err := toFloat(arg)
		if err != nil {
			return false, fmt.Errorf("cannot interpret %T as bool", arg)
		}
		return f > 0, nil
	}
}
