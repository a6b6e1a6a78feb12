package envschema

import (
	"fmt"
	"math"
	"slices"
)

// Config is the immutable result of a successful validation pass.
// It holds the resolved value of every declared variable that had a raw
// value or a default. Safe for concurrent reads.
type Config struct {
	schema  Schema
	values  map[string]Value
	sources map[string]string
	unused  []string
}

// Get returns the resolved value for key.
// It returns ErrUndeclaredKey when key is not part of the schema and
// ErrNotSet when key is declared but resolved to nothing (optional, no
// raw value, no default).
func (c *Config) Get(key string) (Value, error) {
	if _, declared := c.schema[key]; !declared {
		return Value{}, lookupError(ErrUndeclaredKey, key)
	}
	v, ok := c.values[key]
	if !ok {
		return Value{}, lookupError(ErrNotSet, key)
	}
	return v, nil
}

// Lookup returns the resolved value for key and whether it was resolved.
// Undeclared keys report false.
func (c *Config) Lookup(key string) (Value, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Has reports whether key resolved to a value.
func (c *Config) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// Declared reports whether key is part of the schema.
func (c *Config) Declared(key string) bool {
	_, ok := c.schema[key]
	return ok
}

// String returns the value of a String variable.
func (c *Config) String(key string) (string, error) {
	return Get[string](c, key)
}

// Number returns the value of a Number variable.
func (c *Config) Number(key string) (float64, error) {
	return Get[float64](c, key)
}

// Int returns the value of a Number variable that holds an integer.
func (c *Config) Int(key string) (int, error) {
	return Get[int](c, key)
}

// Bool returns the value of a Boolean variable.
func (c *Config) Bool(key string) (bool, error) {
	return Get[bool](c, key)
}

// Strings returns a copy of the items of an Array variable.
func (c *Config) Strings(key string) ([]string, error) {
	return Get[[]string](c, key)
}

// All returns a copy of every resolved value keyed by variable name.
// Values never expose their backing storage, so the copy is fully detached.
func (c *Config) All() map[string]Value {
	out := make(map[string]Value, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// Map returns every resolved value as plain Go values (string, float64, bool, []string).
func (c *Config) Map() map[string]any {
	out := make(map[string]any, len(c.values))
	for k, v := range c.values {
		out[k] = v.Interface()
	}
	return out
}

// Keys returns the names of resolved variables in sorted order.
func (c *Config) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Unused returns the undeclared, non-ambient variables found during validation.
func (c *Config) Unused() []string {
	return slices.Clone(c.unused)
}

// Schema returns a copy of the schema the config was validated against.
func (c *Config) Schema() Schema {
	out := make(Schema, len(c.schema))
	for k, d := range c.schema {
		out[k] = d
	}
	return out
}

// Get returns the value of key converted to T. Supported targets are
// string, float64, int, int64, bool, []string and Value. A stored kind
// that does not fit T yields ErrTypeMismatch; it never panics.
func Get[T any](c *Config, key string) (T, error) {
	var zero T
	v, err := c.Get(key)
	if err != nil {
		return zero, err
	}

	var out any
	switch any(zero).(type) {
	case Value:
		out = v
	case string:
		if v.Kind() != String {
			return zero, mismatch(key, v.Kind(), "string")
		}
		out = v.Str()
	case float64:
		if v.Kind() != Number {
			return zero, mismatch(key, v.Kind(), "float64")
		}
		out = v.Num()
	case int:
		n, ok := integral(v)
		if !ok || n < math.MinInt || n > math.MaxInt {
			return zero, mismatch(key, v.Kind(), "int")
		}
		out = int(n)
	case int64:
		n, ok := integral(v)
		if !ok {
			return zero, mismatch(key, v.Kind(), "int64")
		}
		out = n
	case bool:
		if v.Kind() != Boolean {
			return zero, mismatch(key, v.Kind(), "bool")
		}
		out = v.Bool()
	case []string:
		if v.Kind() != Array {
			return zero, mismatch(key, v.Kind(), "[]string")
		}
		out = v.Strings()
	default:
		return zero, fmt.Errorf("%w: unsupported target type %T for %q", ErrTypeMismatch, zero, key)
	}

	return out.(T), nil
}

func integral(v Value) (int64, bool) {
	if v.Kind() != Number {
		return 0, false
	}
	n := v.Num()
	if math.IsInf(n, 0) || n != math.Trunc(n) || n < math.MinInt64 || n >= math.MaxInt64 {
		return 0, false
	}
	return int64(n), true
}

func mismatch(key string, got Kind, want string) error {
	return fmt.Errorf("%w: %q holds a %s, not %s", ErrTypeMismatch, key, got, want)
}
