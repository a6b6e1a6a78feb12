package schemafile

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/Azhovan/envschema"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Supported formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
	FormatTOML = "toml"
)

// ErrInvalidSchema is wrapped by every error describing a malformed document.
var ErrInvalidSchema = errors.New("schemafile: invalid schema")

// variableNameRegex validates variable names: letters, digits, underscores, not starting with a digit
var variableNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var knownFields = []string{
	"type", "required", "default", "description", "secret",
	"min", "max", "minLength", "maxLength", "oneOf", "pattern",
}

// Load reads and parses the schema document at path.
// The format is inferred from the extension; unknown extensions are read as YAML.
func Load(path string) (envschema.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}

	schema, err := Parse(data, InferFormat(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return schema, nil
}

// InferFormat maps a file extension to a document format, defaulting to YAML.
func InferFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".toml":
		return FormatTOML
	default:
		return FormatYAML
	}
}

// Parse decodes a schema document in the given format.
func Parse(data []byte, format string) (envschema.Schema, error) {
	var doc map[string]any
	switch strings.ToLower(format) {
	case FormatYAML, "yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid TOML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported schema format: %q (supported: yaml, json, toml)", format)
	}

	rawVars, ok := doc["variables"]
	if !ok {
		return nil, fmt.Errorf("%w: missing top-level 'variables'", ErrInvalidSchema)
	}
	vars, ok := asMap(rawVars)
	if !ok {
		return nil, fmt.Errorf("%w: 'variables' must be a mapping", ErrInvalidSchema)
	}

	schema := make(envschema.Schema, len(vars))
	for _, name := range slices.Sorted(maps.Keys(vars)) {
		raw := vars[name]
		if !variableNameRegex.MatchString(name) {
			return nil, fmt.Errorf("%w: variable name '%s' contains invalid characters", ErrInvalidSchema, name)
		}
		entry, ok := asMap(raw)
		if !ok {
			return nil, fmt.Errorf("%w: variable '%s' must be a mapping", ErrInvalidSchema, name)
		}
		d, err := parseDescriptor(entry)
		if err != nil {
			return nil, fmt.Errorf("%w: variable '%s': %v", ErrInvalidSchema, name, err)
		}
		schema[name] = d
	}

	return schema, nil
}

func parseDescriptor(entry map[string]any) (envschema.Descriptor, error) {
	var d envschema.Descriptor

	for key := range entry {
		if !slices.Contains(knownFields, key) {
			return d, fmt.Errorf("unknown field '%s'", key)
		}
	}

	typeName, ok := entry["type"].(string)
	if !ok {
		return d, errors.New("missing required field 'type'")
	}
	kind, err := envschema.ParseKind(typeName)
	if err != nil {
		return d, err
	}
	d.Type = kind

	if d.Required, err = boolField(entry, "required"); err != nil {
		return d, err
	}
	if d.Secret, err = boolField(entry, "secret"); err != nil {
		return d, err
	}
	if raw, ok := entry["description"]; ok {
		if d.Description, ok = raw.(string); !ok {
			return d, errors.New("'description' must be a string")
		}
	}

	if raw, ok := entry["default"]; ok && raw != nil {
		def, ok := envschema.ValueOf(raw, kind)
		if !ok {
			return d, fmt.Errorf("default %v (%T) does not match type %s", raw, raw, kind)
		}
		d.Default = def
	}

	validators, err := constraints(entry, kind)
	if err != nil {
		return d, err
	}
	switch len(validators) {
	case 0:
	case 1:
		d.Validate = validators[0]
	default:
		d.Validate = envschema.All(validators...)
	}

	return d, nil
}

// constraints translates constraint fields into predicates, rejecting
// constraints that cannot apply to kind.
func constraints(entry map[string]any, kind envschema.Kind) ([]envschema.Validator, error) {
	var validators []envschema.Validator

	for _, key := range []string{"min", "max"} {
		raw, ok := entry[key]
		if !ok {
			continue
		}
		if kind != envschema.Number {
			return nil, fmt.Errorf("'%s' only applies to number variables", key)
		}
		n, ok := number(raw)
		if !ok {
			return nil, fmt.Errorf("'%s' must be a number", key)
		}
		if key == "min" {
			validators = append(validators, envschema.Min(n))
		} else {
			validators = append(validators, envschema.Max(n))
		}
	}

	for _, key := range []string{"minLength", "maxLength"} {
		raw, ok := entry[key]
		if !ok {
			continue
		}
		if kind != envschema.String && kind != envschema.Array {
			return nil, fmt.Errorf("'%s' only applies to string and array variables", key)
		}
		n, ok := number(raw)
		if !ok || n < 0 || n != math.Trunc(n) {
			return nil, fmt.Errorf("'%s' must be a non-negative integer", key)
		}
		if key == "minLength" {
			validators = append(validators, envschema.MinLen(int(n)))
		} else {
			validators = append(validators, envschema.MaxLen(int(n)))
		}
	}

	if raw, ok := entry["oneOf"]; ok {
		if kind != envschema.String && kind != envschema.Array {
			return nil, errors.New("'oneOf' only applies to string and array variables")
		}
		allowed, ok := stringList(raw)
		if !ok || len(allowed) == 0 {
			return nil, errors.New("'oneOf' must be a non-empty list of strings")
		}
		validators = append(validators, envschema.OneOf(allowed...))
	}

	if raw, ok := entry["pattern"]; ok {
		if kind != envschema.String && kind != envschema.Array {
			return nil, errors.New("'pattern' only applies to string and array variables")
		}
		expr, ok := raw.(string)
		if !ok {
			return nil, errors.New("'pattern' must be a string")
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}
		validators = append(validators, envschema.Match(re))
	}

	return validators, nil
}

func boolField(entry map[string]any, key string) (bool, error) {
	raw, ok := entry[key]
	if !ok || raw == nil {
		return false, nil
	}
	b, ok := raw.(bool)
	if !ok {
		return false, fmt.Errorf("'%s' must be a boolean", key)
	}
	return b, nil
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			s, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[s] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func stringList(v any) ([]string, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
