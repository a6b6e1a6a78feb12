// Command envschema validates the process environment against a schema
// document and reports, dumps, snapshots or generates Go types from the
// result.
//
//	envschema check --schema envschema.yaml --env-file .env
//	envschema dump --format json --sources
//	envschema snapshot --out snapshots/env-{{timestamp}}.json
//	envschema gen --package config --type Env -o config/env_gen.go
package main
