package sourcefile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Azhovan/envschema/internal/normalize"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Supported formats.
const (
	FormatDotenv = "dotenv"
	FormatYAML   = "yaml"
	FormatJSON   = "json"
	FormatTOML   = "toml"
)

// Options configures file source behavior.
type Options struct {
	// Format: "dotenv", "yaml", "json" or "toml". Inferred from the file name if empty.
	Format string

	// Required: if true, missing files cause an error. Default: false (returns empty map).
	Required bool
}

// Source reads a single file once per Load.
type Source struct {
	path string
	opts Options
}

// New creates a file-based environment source.
func New(path string, opts Options) *Source {
	return &Source{
		path: path,
		opts: opts,
	}
}

// Name returns a human-readable identifier for this source.
func (s *Source) Name() string {
	return "file:" + filepath.Base(s.path)
}

// Load reads and parses the file. The process environment is never modified.
func (s *Source) Load(ctx context.Context) (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			if s.opts.Required {
				return nil, fmt.Errorf("required env file not found: %s: %w", s.path, err)
			}
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("read env file %s: %w", s.path, err)
	}

	format := strings.ToLower(s.opts.Format)
	if format == "" {
		format = InferFormat(s.path)
	}

	return Parse(data, format)
}

// Parse decodes data in the given format into a flat name→value map.
func Parse(data []byte, format string) (map[string]string, error) {
	if format == FormatDotenv {
		values, err := godotenv.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("parse dotenv: %w", err)
		}
		return values, nil
	}

	var raw map[string]any
	switch format {
	case FormatYAML, "yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse YAML: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse JSON: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse TOML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported file format: %q (supported: dotenv, yaml, json, toml)", format)
	}

	result := make(map[string]string)
	if err := flatten("", raw, result); err != nil {
		return nil, err
	}
	return result, nil
}

// flatten walks nested maps, joining keys into environment names.
func flatten(prefix string, value any, result map[string]string) error {
	switch v := value.(type) {
	case map[string]any:
		for key, val := range v {
			if err := flatten(normalize.JoinEnv(prefix, key), val, result); err != nil {
				return err
			}
		}
	case map[any]any:
		for key, val := range v {
			keyStr, ok := key.(string)
			if !ok {
				continue
			}
			if err := flatten(normalize.JoinEnv(prefix, keyStr), val, result); err != nil {
				return err
			}
		}
	case nil:
		// Null values are treated as absent.
	default:
		if prefix == "" {
			return nil
		}
		s, err := stringify(v)
		if err != nil {
			return fmt.Errorf("%s: %w", prefix, err)
		}
		result[prefix] = s
	}
	return nil
}

// stringify renders a decoded scalar or list the way it would appear in an environment variable.
func stringify(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case time.Time:
		return v.Format(time.RFC3339), nil
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			switch item.(type) {
			case map[string]any, map[any]any, []any:
				return "", fmt.Errorf("nested values in lists are not supported")
			}
			s, err := stringify(item)
			if err != nil {
				return "", err
			}
			items = append(items, s)
		}
		return strings.Join(items, ","), nil
	default:
		return fmt.Sprint(v), nil
	}
}

// InferFormat guesses the format from a file name. Names like ".env",
// ".env.local" and "app.env", and names without an extension, are dotenv.
func InferFormat(path string) string {
	base := strings.ToLower(filepath.Base(path))
	if strings.HasPrefix(base, ".env") {
		return FormatDotenv
	}

	switch filepath.Ext(base) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	case ".toml":
		return FormatTOML
	case ".env", "":
		return FormatDotenv
	default:
		return ""
	}
}
