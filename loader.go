package envschema

import (
	"context"
	"fmt"
	"slices"

	"github.com/Azhovan/envschema/internal/normalize"
	"github.com/sirupsen/logrus"
)

// Loader validates a Schema against a merged snapshot of its sources.
// Sources are read in order and later sources override earlier ones.
// A Loader may be reused; every Load takes a fresh snapshot.
type Loader struct {
	schema     Schema
	sources    []Source
	ignore     []string
	log        logrus.FieldLogger
	collectAll bool
}

// NewLoader creates a Loader for schema with no sources and fail-fast validation.
// The schema is copied; later changes to the caller's map are not observed.
func NewLoader(schema Schema) *Loader {
	copied := make(Schema, len(schema))
	for k, d := range schema {
		copied[k] = d
	}
	return &Loader{
		schema:  copied,
		sources: make([]Source, 0),
		log:     logrus.StandardLogger(),
	}
}

// WithSource adds a source. Sources are processed in order (later override earlier).
func (l *Loader) WithSource(src Source) *Loader {
	l.sources = append(l.sources, src)
	return l
}

// WithLogger sets the logger used for unused-variable warnings. Nil restores the standard logger.
func (l *Loader) WithLogger(log logrus.FieldLogger) *Loader {
	if log == nil {
		log = logrus.StandardLogger()
	}
	l.log = log
	return l
}

// Ignore exempts variables starting with any of prefixes (case-insensitive)
// from unused-variable warnings, in addition to the built-in ambient list.
func (l *Loader) Ignore(prefixes ...string) *Loader {
	l.ignore = append(l.ignore, prefixes...)
	return l
}

// CollectAll controls whether Load reports every failing variable (true)
// or stops at the first one in key order (false, the default).
func (l *Loader) CollectAll(all bool) *Loader {
	l.collectAll = all
	return l
}

// Load snapshots all sources, validates every schema entry and returns the
// resulting Config. On failure no Config is returned: source failures yield
// a *LoadError, schema failures a *ValidationError.
func (l *Loader) Load(ctx context.Context) (*Config, error) {
	// Step 1: Snapshot and merge sources
	raw := make(map[string]string)
	origin := make(map[string]string)

	for _, source := range l.sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := source.Load(ctx)
		if err != nil {
			return nil, &LoadError{Source: source.Name(), Err: err}
		}

		l.log.WithFields(logrus.Fields{
			"source": source.Name(),
			"count":  len(data),
		}).Debug("Loaded environment source")

		for key, value := range data {
			raw[key] = value
			origin[key] = source.Name()
		}
	}

	// Step 2: Resolve every declared variable
	cfg := &Config{
		schema:  l.schema,
		values:  make(map[string]Value),
		sources: make(map[string]string),
	}

	var fieldErrors []FieldError
	for _, key := range l.schema.Keys() {
		rawValue, present := raw[key]
		value, resolved, fe := resolve(key, l.schema[key], rawValue, present)
		if fe != nil {
			fieldErrors = append(fieldErrors, *fe)
			if !l.collectAll {
				break
			}
			continue
		}
		if !resolved {
			continue
		}

		cfg.values[key] = value
		if present {
			cfg.sources[key] = origin[key]
		} else {
			cfg.sources[key] = SourceDefault
		}
	}

	if len(fieldErrors) > 0 {
		return nil, &ValidationError{FieldErrors: fieldErrors}
	}

	// Step 3: Report undeclared application variables
	cfg.unused = l.unusedVariables(raw)
	for _, key := range cfg.unused {
		l.log.WithFields(logrus.Fields{
			"variable": key,
			"source":   origin[key],
		}).Warnf("Unused environment variable %q", key)
	}

	return cfg, nil
}

// resolve applies default, required, coercion and custom validation to one variable.
// resolved is false for optional variables with neither a raw value nor a default.
func resolve(key string, d Descriptor, raw string, present bool) (value Value, resolved bool, fe *FieldError) {
	// A default wins over the required flag.
	if !present && d.Default != nil {
		v, ok := ValueOf(d.Default, d.Type)
		if !ok {
			return Value{}, false, &FieldError{
				Key:     key,
				Code:    ErrCodeDefaultType,
				Message: fmt.Sprintf("default value %v (%T) does not match type %s", d.Default, d.Default, d.Type),
			}
		}
		return v, true, nil
	}

	if !present {
		if d.Required {
			return Value{}, false, &FieldError{
				Key:     key,
				Code:    ErrCodeRequired,
				Message: "required environment variable is missing",
			}
		}
		return Value{}, false, nil
	}

	v, err := Coerce(raw, d.Type)
	if err != nil {
		return Value{}, false, &FieldError{
			Key:     key,
			Code:    ErrCodeInvalidType,
			Message: err.Error(),
			Err:     err,
		}
	}

	if d.Validate != nil && !d.Validate.Valid(v) {
		return Value{}, false, &FieldError{
			Key:     key,
			Code:    ErrCodeCustom,
			Message: "custom validation failed",
		}
	}

	return v, true, nil
}

// unusedVariables returns raw names that are neither declared nor ambient, sorted.
func (l *Loader) unusedVariables(raw map[string]string) []string {
	var unused []string
	for key := range raw {
		if _, declared := l.schema[key]; declared {
			continue
		}
		if IsAmbient(key) || l.ignored(key) {
			continue
		}
		unused = append(unused, key)
	}
	slices.Sort(unused)
	return unused
}

func (l *Loader) ignored(key string) bool {
	for _, prefix := range l.ignore {
		if prefix != "" && normalize.HasPrefixFold(key, prefix) {
			return true
		}
	}
	return false
}
