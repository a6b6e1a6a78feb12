package envschema

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Kind is the declared type of an environment variable.
type Kind int

// Supported kinds. The zero Kind is invalid so that a Descriptor
// without a Type fails coercion instead of silently becoming a string.
const (
	String Kind = iota + 1
	Number
	Boolean
	Array
)

var kindNames = map[Kind]string{
	String:  "string",
	Number:  "number",
	Boolean: "boolean",
	Array:   "array",
}

// String returns the schema name of the kind ("string", "number", ...).
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Valid reports whether k is one of the four supported kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind converts a schema type name into a Kind. Matching is case-insensitive.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "string":
		return String, nil
	case "number":
		return Number, nil
	case "boolean", "bool":
		return Boolean, nil
	case "array":
		return Array, nil
	default:
		return 0, fmt.Errorf("envschema: unsupported type %q (supported: string, number, boolean, array)", name)
	}
}

// Value is a typed environment value. It holds exactly one of a string,
// a number, a boolean or an ordered list of strings, selected by Kind.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	arr  []string
}

// StringValue wraps s as a String value.
func StringValue(s string) Value { return Value{kind: String, str: s} }

// NumberValue wraps n as a Number value.
func NumberValue(n float64) Value { return Value{kind: Number, num: n} }

// BoolValue wraps b as a Boolean value.
func BoolValue(b bool) Value { return Value{kind: Boolean, b: b} }

// ArrayValue wraps a copy of items as an Array value.
func ArrayValue(items []string) Value {
	return Value{kind: Array, arr: slices.Clone(nonNil(items))}
}

// Kind returns the variant held by v. The zero Value has an invalid kind.
func (v Value) Kind() Kind { return v.kind }

// Str returns the string held by a String value, or "" for other kinds.
func (v Value) Str() string { return v.str }

// Num returns the number held by a Number value, or 0 for other kinds.
func (v Value) Num() float64 { return v.num }

// Bool returns the boolean held by a Boolean value, or false for other kinds.
func (v Value) Bool() bool { return v.b }

// Strings returns a copy of the items held by an Array value, or nil for other kinds.
func (v Value) Strings() []string {
	if v.kind != Array {
		return nil
	}
	return slices.Clone(v.arr)
}

// Interface returns the value as string, float64, bool or []string.
func (v Value) Interface() any {
	switch v.kind {
	case String:
		return v.str
	case Number:
		return v.num
	case Boolean:
		return v.b
	case Array:
		return v.Strings()
	default:
		return nil
	}
}

// String formats the value for display.
func (v Value) String() string {
	switch v.kind {
	case String:
		return v.str
	case Number:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case Boolean:
		return strconv.FormatBool(v.b)
	case Array:
		return "[" + strings.Join(v.arr, ", ") + "]"
	default:
		return "<invalid>"
	}
}

// Equal reports whether v and other hold the same kind and contents.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case String:
		return v.str == other.str
	case Number:
		return v.num == other.num
	case Boolean:
		return v.b == other.b
	case Array:
		return slices.Equal(v.arr, other.arr)
	default:
		return true
	}
}

// Descriptor declares the expected shape of a single environment variable.
type Descriptor struct {
	// Type is the kind the raw string is coerced to.
	Type Kind

	// Required fails validation when the variable is absent and has no Default.
	Required bool

	// Default is used when the variable is absent. Nil means no default.
	// It must satisfy TypeMatches for Type.
	Default any

	// Description is informational only.
	Description string

	// Validate is applied to coerced raw values (not to defaults).
	Validate Validator

	// Secret redacts the value in dumps, snapshots and CLI output.
	Secret bool
}

// Schema maps variable names to their descriptors. Names are case-sensitive.
type Schema map[string]Descriptor

// Keys returns the schema's variable names in sorted order.
// Validation walks the schema in this order.
func (s Schema) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Validator is a predicate over a coerced value.
type Validator interface {
	// Valid reports whether v is acceptable.
	Valid(v Value) bool
}

// ValidatorFunc is a function adapter for Validator interface.
type ValidatorFunc func(v Value) bool

func (f ValidatorFunc) Valid(v Value) bool {
	return f(v)
}

// Source provides raw environment values (process environment, .env files, fixtures).
type Source interface {
	// Name identifies the source in provenance and errors (e.g., "env", "file:.env").
	Name() string

	// Load returns a snapshot of name→raw value. Missing optional sources return an empty map.
	Load(ctx context.Context) (map[string]string, error)
}

// Env is a static Source backed by a map. Useful for tests and for
// callers that already hold a snapshot of their environment.
type Env map[string]string

// Name returns "static".
func (e Env) Name() string { return "static" }

// Load returns a copy of the map.
func (e Env) Load(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out, nil
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
