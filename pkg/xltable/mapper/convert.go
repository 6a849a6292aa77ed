package mapper

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Converter turns a resolved cell value into a field value.
type Converter[V any] func(string) (V, error)

func unsupported(value, target string) error {
	return fmt.Errorf("%w: %q to %s", ErrUnsupportedConversion, value, target)
}

// Text stores the value unchanged.
func Text(s string) (string, error) {
	return s, nil
}

// Int parses a base-10 integer. Whole decimals such as "30.0" are accepted.
func Int(s string) (int, error) {
	n, err := Int64(s)
	if err != nil {
		return 0, unsupported(s, "int")
	}
	if int64(int(n)) != n {
		return 0, unsupported(s, "int")
	}
	return int(n), nil
}

// Int64 parses a base-10 integer.
func Int64(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.Equal(decimal.NewFromInt(d.IntPart())) {
		return 0, unsupported(s, "int64")
	}
	return d.IntPart(), nil
}

// Uint parses a non-negative base-10 integer.
func Uint(s string) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, unsupported(s, "uint64")
	}
	return n, nil
}

// Float parses a floating point number.
func Float(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, unsupported(s, "float64")
	}
	return f, nil
}

// Bool accepts the resolved forms TRUE and FALSE as well as anything
// strconv.ParseBool does.
func Bool(s string) (bool, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, unsupported(s, "bool")
	}
	return b, nil
}

// Decimal parses an exact decimal number.
func Decimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, unsupported(s, "decimal")
	}
	return d, nil
}

// DefaultTimeLayouts are tried by Time when no layouts are given. The first
// matches the resolver's default date rendering.
var DefaultTimeLayouts = []string{
	"2006/1/2 15:04:05",
	"2006/1/2",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Time returns a converter parsing the first of layouts that matches.
func Time(layouts ...string) Converter[time.Time] {
	if len(layouts) == 0 {
		layouts = DefaultTimeLayouts
	}
	return func(s string) (time.Time, error) {
		s = strings.TrimSpace(s)
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, unsupported(s, "time")
	}
}

// Optional wraps conv for pointer fields: an empty value yields nil, anything
// else is converted and stored behind a new pointer.
func Optional[V any](conv Converter[V]) Converter[*V] {
	return func(s string) (*V, error) {
		if s == "" {
			return nil, nil
		}
		v, err := conv(s)
		if err != nil {
			return nil, err
		}
		return &v, nil
	}
}
