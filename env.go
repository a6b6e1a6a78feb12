package envschema

import (
	"context"

	"github.com/Azhovan/envschema/sourceenv"
	"github.com/Azhovan/envschema/sourcefile"
	"github.com/sirupsen/logrus"
)

// Option configures Load and New.
type Option func(*options)

type options struct {
	envFile    string
	prefix     string
	environ    []string
	ignore     []string
	log        logrus.FieldLogger
	collectAll bool
}

// WithEnvFile reads supplementary variables from path (.env, YAML, JSON or TOML).
// The file must exist. Process environment values take precedence over file values.
func WithEnvFile(path string) Option {
	return func(o *options) {
		o.envFile = path
	}
}

// WithPrefix only reads process variables starting with prefix (case-insensitive)
// and strips it from their names.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithEnviron replaces os.Environ() with a fixed "KEY=value" list.
func WithEnviron(environ []string) Option {
	return func(o *options) {
		o.environ = environ
	}
}

// WithIgnore adds prefixes exempt from unused-variable warnings.
func WithIgnore(prefixes ...string) Option {
	return func(o *options) {
		o.ignore = append(o.ignore, prefixes...)
	}
}

// WithLogger sets the logger receiving unused-variable warnings.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithCollectAll reports every failing variable instead of only the first.
func WithCollectAll() Option {
	return func(o *options) {
		o.collectAll = true
	}
}

// Load validates schema against the process environment, optionally
// supplemented by an env file, and returns the resulting Config.
func Load(ctx context.Context, schema Schema, opts ...Option) (*Config, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	loader := NewLoader(schema).
		WithLogger(o.log).
		Ignore(o.ignore...).
		CollectAll(o.collectAll)

	if o.envFile != "" {
		loader.WithSource(sourcefile.New(o.envFile, sourcefile.Options{Required: true}))
	}
	loader.WithSource(sourceenv.New(sourceenv.Options{
		Prefix:  o.prefix,
		Environ: o.environ,
	}))

	return loader.Load(ctx)
}

// New is Load with a background context.
func New(schema Schema, opts ...Option) (*Config, error) {
	return Load(context.Background(), schema, opts...)
}
