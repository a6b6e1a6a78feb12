// Package sourcefile loads supplementary environment values from a file.
//
// Supported formats are dotenv (.env, .env.local, *.env), YAML, JSON and
// TOML. Structured files are flattened into environment-style names:
// {"database": {"host": "x"}} becomes DATABASE_HOST=x and lists are joined
// with commas.
//
// Example:
//
//	source := sourcefile.New(".env", sourcefile.Options{Required: true})
//	loader := envschema.NewLoader(schema).WithSource(source)
package sourcefile
