// Package envschema validates environment variables against a declarative schema
// and exposes them as an immutable, typed configuration.
//
// Quick Start:
//
//	schema := envschema.Schema{
//	    "PORT":     {Type: envschema.Number, Default: 3000, Validate: envschema.Between(1000, 65535)},
//	    "API_URL":  {Type: envschema.String, Required: true},
//	    "DEBUG":    {Type: envschema.Boolean, Default: false},
//	    "FEATURES": {Type: envschema.Array, Default: []string{}},
//	}
//
//	cfg, err := envschema.Load(ctx, schema, envschema.WithEnvFile(".env"))
//	port, err := cfg.Int("PORT")
//
// Raw strings are coerced per kind: numbers use float syntax, booleans accept
// only "true"/"false" (any case), arrays split on commas with each item trimmed.
// A default wins over Required. Undeclared variables that do not look like
// OS or tooling variables (see IsAmbient) are logged as warnings.
//
// See example_test.go for detailed usage.
package envschema
