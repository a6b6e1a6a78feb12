package envschema

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// Redacted replaces secret values in dumps and snapshots.
const Redacted = "***redacted***"

// DumpOption configures dump behavior using the functional options pattern.
type DumpOption func(*dumpConfig)

// dumpConfig holds options for DumpEffective.
type dumpConfig struct {
	withSources bool   // Include source attribution for each variable
	asJSON      bool   // Output as JSON instead of text format
	indent      string // Indentation for JSON output (default: "  ")
	showUnset   bool   // List declared variables that resolved to nothing
}

// WithSources includes source attribution for each variable in the output.
func WithSources() DumpOption {
	return func(cfg *dumpConfig) {
		cfg.withSources = true
	}
}

// AsJSON outputs configuration as JSON instead of text format.
func AsJSON() DumpOption {
	return func(cfg *dumpConfig) {
		cfg.asJSON = true
	}
}

// WithIndent sets the indentation for JSON output.
// Default is two spaces ("  "). An empty indent produces compact JSON.
func WithIndent(indent string) DumpOption {
	return func(cfg *dumpConfig) {
		cfg.indent = indent
	}
}

// WithUnset lists declared variables without a value as "<not set>" (text)
// or null (JSON).
func WithUnset() DumpOption {
	return func(cfg *dumpConfig) {
		cfg.showUnset = true
	}
}

// DumpEffective writes a human-readable representation of the configuration.
// Secret variables are redacted as "***redacted***". Variables are sorted by name.
func DumpEffective(w io.Writer, cfg *Config, opts ...DumpOption) error {
	if cfg == nil {
		return ErrNilConfig
	}

	config := dumpConfig{
		indent: "  ",
	}
	for _, opt := range opts {
		opt(&config)
	}

	if config.asJSON {
		return dumpAsJSON(w, cfg, config)
	}
	return dumpAsText(w, cfg, config)
}

// dumpAsText outputs one "KEY: value" line per variable.
func dumpAsText(w io.Writer, cfg *Config, config dumpConfig) error {
	for _, key := range dumpKeys(cfg, config) {
		line := fmt.Sprintf("%s: %s", key, displayValue(cfg, key))
		if source, ok := cfg.sources[key]; ok && config.withSources {
			line += fmt.Sprintf(" (source: %s)", source)
		}
		line += "\n"

		if _, err := io.WriteString(w, line); err != nil {
			return fmt.Errorf("write error: %w", err)
		}
	}

	return nil
}

// jsonEntry is the per-variable JSON shape when sources are requested.
type jsonEntry struct {
	Value  any    `json:"value"`
	Source string `json:"source,omitempty"`
}

// dumpAsJSON outputs configuration as a JSON object keyed by variable name.
func dumpAsJSON(w io.Writer, cfg *Config, config dumpConfig) error {
	result := make(map[string]any)
	for _, key := range dumpKeys(cfg, config) {
		value := exportValue(cfg, key)
		if config.withSources {
			result[key] = jsonEntry{Value: value, Source: cfg.sources[key]}
			continue
		}
		result[key] = value
	}

	var data []byte
	var err error
	if config.indent != "" {
		data, err = json.MarshalIndent(result, "", config.indent)
	} else {
		data, err = json.Marshal(result)
	}
	if err != nil {
		return fmt.Errorf("json marshal error: %w", err)
	}

	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write error: %w", err)
	}

	return nil
}

func dumpKeys(cfg *Config, config dumpConfig) []string {
	if config.showUnset {
		return cfg.schema.Keys()
	}
	return cfg.Keys()
}

// displayValue formats a variable for text output, redacting secrets.
func displayValue(cfg *Config, key string) string {
	v, ok := cfg.values[key]
	if !ok {
		return "<not set>"
	}
	if cfg.schema[key].Secret {
		return Redacted
	}
	if v.Kind() == String {
		return strconv.Quote(v.Str())
	}
	return v.String()
}

// exportValue returns the plain value for JSON and snapshots, redacting secrets.
// Unset variables export as nil.
func exportValue(cfg *Config, key string) any {
	v, ok := cfg.values[key]
	if !ok {
		return nil
	}
	if cfg.schema[key].Secret {
		return Redacted
	}
	return v.Interface()
}
