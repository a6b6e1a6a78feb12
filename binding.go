package envschema

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/Azhovan/envschema/internal/normalize"
)

// ErrInvalidTarget is returned by SchemaOf and Bind for values that are not
// (pointers to) structs, or for struct fields that cannot hold any Kind.
var ErrInvalidTarget = errors.New("envschema: invalid binding target")

// tagConfig holds parsed directives from a struct field's `conf` tag.
type tagConfig struct {
	env        string   // Variable name (env:VAR_NAME)
	prefix     string   // Name prefix for nested structs (prefix:database)
	defValue   string   // Raw default, coerced like an environment value (default:value)
	min        string   // Minimum value, or minimum length for strings and arrays (min:N)
	max        string   // Maximum value, or maximum length for strings and arrays (max:M)
	oneof      []string // Allowed values (oneof:a,b,c)
	required   bool     // Variable is required (required or required:true)
	secret     bool     // Variable is secret (secret or secret:true)
	hasDefault bool     // Whether a default directive was present
}

// parseTag parses a `conf` struct tag into a structured tagConfig.
// Tag format: "directive1:value1,directive2:value2,..."
// Boolean directives can omit `:true` (e.g., "required" == "required:true")
func parseTag(tag string) tagConfig {
	cfg := tagConfig{}

	if tag == "" {
		return cfg
	}

	// oneof values contain commas, so directives are split by hand
	directives := splitDirectives(tag)

	for _, directive := range directives {
		directive = strings.TrimSpace(directive)
		if directive == "" {
			continue
		}

		name, value, _ := strings.Cut(directive, ":")
		name = strings.TrimSpace(name)

		switch name {
		case "env":
			cfg.env = strings.TrimSpace(value)
		case "prefix":
			cfg.prefix = strings.TrimSpace(value)
		case "default":
			cfg.defValue = value
			cfg.hasDefault = true
		case "min":
			cfg.min = strings.TrimSpace(value)
		case "max":
			cfg.max = strings.TrimSpace(value)
		case "oneof":
			if value != "" {
				cfg.oneof = strings.Split(value, ",")
				for i := range cfg.oneof {
					cfg.oneof[i] = strings.TrimSpace(cfg.oneof[i])
				}
			}
		case "required":
			cfg.required = value != "false"
		case "secret":
			cfg.secret = value != "false"
		}
	}

	return cfg
}

// splitDirectives splits a tag string into individual directives.
// A comma inside a oneof or default value only ends the directive when a
// known directive name follows it.
func splitDirectives(tag string) []string {
	var directives []string
	var current strings.Builder
	inList := false

	for i := 0; i < len(tag); i++ {
		ch := tag[i]

		if !inList && current.Len() == 0 {
			rest := strings.TrimLeft(tag[i:], " ")
			if strings.HasPrefix(rest, "oneof:") || strings.HasPrefix(rest, "default:") {
				inList = true
			}
		}

		if ch != ',' {
			current.WriteByte(ch)
			continue
		}

		if inList && !startsWithDirective(tag[i+1:]) {
			current.WriteByte(ch)
			continue
		}

		inList = false
		directives = append(directives, current.String())
		current.Reset()
	}

	if current.Len() > 0 {
		directives = append(directives, current.String())
	}

	return directives
}

// startsWithDirective checks if a string starts with a known directive name.
func startsWithDirective(s string) bool {
	s = strings.TrimSpace(s)
	directives := []string{"env:", "prefix:", "default:", "min:", "max:", "oneof:", "required", "secret"}
	for _, d := range directives {
		if strings.HasPrefix(s, d) {
			return true
		}
	}
	return false
}

// boundField is a struct field mapped to a variable.
type boundField struct {
	index []int
	field reflect.StructField
	key   string
	tag   tagConfig
}

// structFields walks t and returns every bindable field with its variable name.
// Untagged fields take their name from the Go field name (MaxConns → MAX_CONNS).
// Nested structs contribute their fields under an optional prefix.
// Fields tagged `conf:"-"` and unexported fields are skipped.
func structFields(t reflect.Type, prefix string, parent []int) ([]boundField, error) {
	var fields []boundField

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		raw := f.Tag.Get("conf")
		if raw == "-" {
			continue
		}
		tc := parseTag(raw)
		index := append(append([]int{}, parent...), i)

		if f.Type.Kind() == reflect.Struct {
			nested := prefix
			if tc.prefix != "" {
				nested = prefix + normalize.EnvName(tc.prefix) + "_"
			} else if !f.Anonymous {
				nested = prefix + normalize.FieldEnvName(f.Name) + "_"
			}
			inner, err := structFields(f.Type, nested, index)
			if err != nil {
				return nil, err
			}
			fields = append(fields, inner...)
			continue
		}

		key := tc.env
		if key == "" {
			key = normalize.FieldEnvName(f.Name)
		}
		fields = append(fields, boundField{
			index: index,
			field: f,
			key:   prefix + key,
			tag:   tc,
		})
	}

	return fields, nil
}

func structType(v any) (reflect.Type, error) {
	t := reflect.TypeOf(v)
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %T is not a struct", ErrInvalidTarget, v)
	}
	return t, nil
}

// kindOf maps a Go field type to the Kind that can populate it.
func kindOf(t reflect.Type) (Kind, bool) {
	switch t.Kind() {
	case reflect.String:
		return String, true
	case reflect.Bool:
		return Boolean, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return Number, true
	case reflect.Slice:
		if t.Elem().Kind() == reflect.String {
			return Array, true
		}
	}
	return 0, false
}

// SchemaOf derives a Schema from the `conf` tags of a struct (or pointer to struct).
//
//	type AppEnv struct {
//	    Port     int      `conf:"default:3000,min:1000,max:65535"`
//	    APIKey   string   `conf:"required,secret,min:32"`
//	    LogLevel string   `conf:"default:info,oneof:debug,info,warn,error"`
//	    Origins  []string `conf:"env:ALLOWED_ORIGINS,default:http://localhost:3000"`
//	    Database struct {
//	        URL string `conf:"required"`
//	    } `conf:"prefix:db"`
//	}
//
// Defaults are written the way they would appear in the environment and
// coerced with Coerce. min and max bound numbers, and bound the length of
// strings and arrays. A `desc` tag sets the description.
func SchemaOf(v any) (Schema, error) {
	t, err := structType(v)
	if err != nil {
		return nil, err
	}
	fields, err := structFields(t, "", nil)
	if err != nil {
		return nil, err
	}

	schema := make(Schema, len(fields))
	for _, bf := range fields {
		if _, dup := schema[bf.key]; dup {
			return nil, fmt.Errorf("%w: variable %s is bound to more than one field", ErrInvalidTarget, bf.key)
		}
		d, err := descriptorFor(bf)
		if err != nil {
			return nil, fmt.Errorf("%w: field %s (%s): %v", ErrInvalidTarget, bf.field.Name, bf.key, err)
		}
		schema[bf.key] = d
	}
	return schema, nil
}

func descriptorFor(bf boundField) (Descriptor, error) {
	kind, ok := kindOf(bf.field.Type)
	if !ok {
		return Descriptor{}, fmt.Errorf("unsupported field type %s", bf.field.Type)
	}

	d := Descriptor{
		Type:        kind,
		Required:    bf.tag.required,
		Secret:      bf.tag.secret,
		Description: bf.field.Tag.Get("desc"),
	}

	if bf.tag.hasDefault {
		def, err := Coerce(bf.tag.defValue, kind)
		if err != nil {
			return Descriptor{}, fmt.Errorf("default: %w", err)
		}
		d.Default = def
	}

	var validators []Validator
	for _, bound := range []struct {
		raw   string
		isMin bool
	}{{bf.tag.min, true}, {bf.tag.max, false}} {
		if bound.raw == "" {
			continue
		}
		n, err := strconv.ParseFloat(bound.raw, 64)
		if err != nil {
			return Descriptor{}, fmt.Errorf("invalid bound %q", bound.raw)
		}
		switch {
		case kind == Number && bound.isMin:
			validators = append(validators, Min(n))
		case kind == Number:
			validators = append(validators, Max(n))
		case kind == Boolean:
			return Descriptor{}, errors.New("min and max do not apply to booleans")
		case bound.isMin:
			validators = append(validators, MinLen(int(n)))
		default:
			validators = append(validators, MaxLen(int(n)))
		}
	}
	if len(bf.tag.oneof) > 0 {
		if kind != String && kind != Array {
			return Descriptor{}, errors.New("oneof only applies to strings and arrays")
		}
		validators = append(validators, OneOf(bf.tag.oneof...))
	}

	switch len(validators) {
	case 0:
	case 1:
		d.Validate = validators[0]
	default:
		d.Validate = All(validators...)
	}
	return d, nil
}

// Bind copies resolved values from cfg into the struct dst points to,
// using the same field-to-variable mapping as SchemaOf. Fields whose
// variable resolved to nothing are left untouched. Every bound variable
// must be declared in cfg's schema.
func Bind(cfg *Config, dst any) error {
	if cfg == nil {
		return ErrNilConfig
	}
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: Bind needs a non-nil pointer to a struct, got %T", ErrInvalidTarget, dst)
	}
	fields, err := structFields(rv.Elem().Type(), "", nil)
	if err != nil {
		return err
	}

	target := rv.Elem()
	for _, bf := range fields {
		v, err := cfg.Get(bf.key)
		if errors.Is(err, ErrNotSet) {
			continue
		}
		if err != nil {
			return err
		}
		if err := setField(target.FieldByIndex(bf.index), v); err != nil {
			return fmt.Errorf("%w: %s into field %s: %v", ErrTypeMismatch, bf.key, bf.field.Name, err)
		}
	}
	return nil
}

func setField(field reflect.Value, v Value) error {
	kind, ok := kindOf(field.Type())
	if !ok {
		return fmt.Errorf("unsupported field type %s", field.Type())
	}
	if kind != v.Kind() {
		return fmt.Errorf("value is a %s, field holds a %s", v.Kind(), kind)
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(v.Str())
	case reflect.Bool:
		field.SetBool(v.Bool())
	case reflect.Float32, reflect.Float64:
		if field.OverflowFloat(v.Num()) {
			return fmt.Errorf("%v overflows %s", v.Num(), field.Type())
		}
		field.SetFloat(v.Num())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := v.Num()
		if n != math.Trunc(n) || math.IsInf(n, 0) || n < math.MinInt64 || n >= math.MaxInt64 || field.OverflowInt(int64(n)) {
			return fmt.Errorf("%v does not fit %s", n, field.Type())
		}
		field.SetInt(int64(n))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n := v.Num()
		if n != math.Trunc(n) || n < 0 || math.IsInf(n, 0) || n >= math.MaxUint64 || field.OverflowUint(uint64(n)) {
			return fmt.Errorf("%v does not fit %s", n, field.Type())
		}
		field.SetUint(uint64(n))
	case reflect.Slice:
		items := v.Strings()
		slice := reflect.MakeSlice(field.Type(), len(items), len(items))
		for i, item := range items {
			slice.Index(i).SetString(item)
		}
		field.Set(slice)
	}
	return nil
}
