// Package sourceenv snapshots process environment variables.
//
// Names are kept exactly as found; an optional prefix is matched
// case-insensitively and stripped.
//
// Example:
//
//	source := sourceenv.New(sourceenv.Options{Prefix: "APP_"})
//	loader := envschema.NewLoader(schema).WithSource(source)
package sourceenv
