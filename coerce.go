package envschema

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

// CoercionError reports a raw string that cannot be converted to its declared kind.
type CoercionError struct {
	Raw    string
	Kind   Kind
	Reason string
}

func (e *CoercionError) Error() string {
	if !e.Kind.Valid() {
		return fmt.Sprintf("unsupported type: %s", e.Kind)
	}
	if e.Reason != "" {
		return fmt.Sprintf("value %q cannot be parsed as a %s: %s", e.Raw, e.Kind, e.Reason)
	}
	return fmt.Sprintf("value %q cannot be parsed as a %s", e.Raw, e.Kind)
}

// Is matches ErrCoercion.
func (e *CoercionError) Is(target error) bool {
	return target == ErrCoercion
}

// Coerce converts a raw environment string into a Value of the given kind.
//
//   - String: returned unchanged.
//   - Number: decimal syntax with optional fraction and exponent, the
//     unsigned integer prefixes 0x, 0o and 0b, or [+-]Infinity, after
//     trimming surrounding whitespace. Empty input, NaN, digit separators
//     and Go-only spellings such as "inf" are rejected. Decimals too large
//     for a float64 become ±Infinity.
//   - Boolean: "true" or "false" after lower-casing; nothing else.
//   - Array: split on commas, each element trimmed. Empty elements are kept,
//     so "a," yields ["a", ""] and "" yields [""].
func Coerce(raw string, kind Kind) (Value, error) {
	switch kind {
	case String:
		return StringValue(raw), nil

	case Number:
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			return Value{}, &CoercionError{Raw: raw, Kind: kind, Reason: "empty value"}
		}
		n, ok := parseNumber(trimmed)
		if !ok {
			return Value{}, &CoercionError{Raw: raw, Kind: kind}
		}
		return NumberValue(n), nil

	case Boolean:
		switch strings.ToLower(raw) {
		case "true":
			return BoolValue(true), nil
		case "false":
			return BoolValue(false), nil
		}
		return Value{}, &CoercionError{Raw: raw, Kind: kind}

	case Array:
		parts := strings.Split(raw, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return Value{kind: Array, arr: parts}, nil

	default:
		return Value{}, &CoercionError{Raw: raw, Kind: kind}
	}
}

var decimalNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// parseNumber accepts the numeric literal forms an environment value may
// take. s is already trimmed and non-empty.
func parseNumber(s string) (float64, bool) {
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}

	if len(s) > 2 && s[0] == '0' && strings.ContainsRune("xXoObB", rune(s[1])) {
		if strings.Contains(s, "_") {
			return 0, false
		}
		i, ok := new(big.Int).SetString(s, 0)
		if !ok {
			return 0, false
		}
		f, _ := new(big.Float).SetInt(i).Float64()
		return f, true
	}

	if !decimalNumber.MatchString(s) {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return n, true
}

// TypeMatches reports whether an already-typed Go value satisfies kind
// without any coercion. It is used to check descriptor defaults.
func TypeMatches(v any, kind Kind) bool {
	_, ok := ValueOf(v, kind)
	return ok
}

// ValueOf converts a typed Go value into a Value of the given kind.
// Numbers accept every Go integer and float type (NaN excluded); arrays
// accept []string or []any holding only strings. A Value of the same
// kind is returned as is.
func ValueOf(v any, kind Kind) (Value, bool) {
	if val, ok := v.(Value); ok {
		if val.kind == Number && math.IsNaN(val.num) {
			return Value{}, false
		}
		return val, val.kind == kind && kind.Valid()
	}

	switch kind {
	case String:
		if s, ok := v.(string); ok {
			return StringValue(s), true
		}

	case Number:
		n, ok := toFloat(v)
		if ok && !math.IsNaN(n) {
			return NumberValue(n), true
		}

	case Boolean:
		if b, ok := v.(bool); ok {
			return BoolValue(b), true
		}

	case Array:
		switch items := v.(type) {
		case []string:
			return ArrayValue(items), true
		case []any:
			strs := make([]string, 0, len(items))
			for _, item := range items {
				s, ok := item.(string)
				if !ok {
					return Value{}, false
				}
				strs = append(strs, s)
			}
			return ArrayValue(strs), true
		}
	}

	return Value{}, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
