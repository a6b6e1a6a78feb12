package envschema

import (
	"regexp"
	"slices"
	"unicode/utf8"
)

// NumberFunc adapts a predicate over float64. Non-number values fail.
func NumberFunc(fn func(n float64) bool) Validator {
	return ValidatorFunc(func(v Value) bool {
		return v.Kind() == Number && fn(v.Num())
	})
}

// StringFunc adapts a predicate over string. Non-string values fail.
func StringFunc(fn func(s string) bool) Validator {
	return ValidatorFunc(func(v Value) bool {
		return v.Kind() == String && fn(v.Str())
	})
}

// BoolFunc adapts a predicate over bool. Non-boolean values fail.
func BoolFunc(fn func(b bool) bool) Validator {
	return ValidatorFunc(func(v Value) bool {
		return v.Kind() == Boolean && fn(v.Bool())
	})
}

// ArrayFunc adapts a predicate over []string. Non-array values fail.
func ArrayFunc(fn func(items []string) bool) Validator {
	return ValidatorFunc(func(v Value) bool {
		return v.Kind() == Array && fn(v.Strings())
	})
}

// Min accepts numbers greater than or equal to min.
func Min(min float64) Validator {
	return NumberFunc(func(n float64) bool { return n >= min })
}

// Max accepts numbers less than or equal to max.
func Max(max float64) Validator {
	return NumberFunc(func(n float64) bool { return n <= max })
}

// Between accepts numbers in the closed interval [min, max].
func Between(min, max float64) Validator {
	return NumberFunc(func(n float64) bool { return n >= min && n <= max })
}

// MinLen accepts strings with at least n characters, or arrays with at least n items.
func MinLen(n int) Validator {
	return ValidatorFunc(func(v Value) bool {
		l, ok := length(v)
		return ok && l >= n
	})
}

// MaxLen accepts strings with at most n characters, or arrays with at most n items.
func MaxLen(n int) Validator {
	return ValidatorFunc(func(v Value) bool {
		l, ok := length(v)
		return ok && l <= n
	})
}

// OneOf accepts strings in the allowed set. For arrays every item must be allowed.
func OneOf(allowed ...string) Validator {
	return Each(func(s string) bool {
		return slices.Contains(allowed, s)
	})
}

// Match accepts strings matching re. For arrays every item must match.
func Match(re *regexp.Regexp) Validator {
	return Each(re.MatchString)
}

// Each applies fn to a string value, or to every item of an array value.
// Other kinds fail.
func Each(fn func(s string) bool) Validator {
	return ValidatorFunc(func(v Value) bool {
		switch v.Kind() {
		case String:
			return fn(v.Str())
		case Array:
			for _, item := range v.arr {
				if !fn(item) {
					return false
				}
			}
			return true
		default:
			return false
		}
	})
}

// All accepts a value only when every validator accepts it. Nil validators are skipped.
func All(validators ...Validator) Validator {
	return ValidatorFunc(func(v Value) bool {
		for _, validator := range validators {
			if validator != nil && !validator.Valid(v) {
				return false
			}
		}
		return true
	})
}

func length(v Value) (int, bool) {
	switch v.Kind() {
	case String:
		return utf8.RuneCountInString(v.Str()), true
	case Array:
		return len(v.arr), true
	default:
		return 0, false
	}
}
