// Package typegen derives Go source from an envschema.Schema: a struct
// with one typed field per variable and a loader that fills it from a
// validated *envschema.Config.
package typegen

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"go/token"
	"strings"
	"text/template"
	"unicode"

	"github.com/Azhovan/envschema"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Options controls the generated file.
type Options struct {
	// Package is the package clause of the generated file. Default: "config".
	Package string

	// TypeName names the generated struct. Default: "Env".
	TypeName string
}

// ErrNameCollision is returned when two variables map to the same field name.
var ErrNameCollision = errors.New("typegen: field name collision")

// initialisms are upper-cased as a whole when they form a word of a variable name.
var initialisms = map[string]bool{
	"API": true, "CPU": true, "DB": true, "DNS": true, "HTTP": true, "HTTPS": true,
	"ID": true, "IP": true, "JSON": true, "JWT": true, "SQL": true, "SSH": true,
	"SSL": true, "TCP": true, "TLS": true, "TTL": true, "UDP": true, "UI": true,
	"URI": true, "URL": true, "UUID": true, "XML": true,
}

type field struct {
	Name        string
	Key         string
	GoType      string
	Getter      string
	Description string
	Required    bool
}

type templateData struct {
	Package  string
	TypeName string
	Fields   []field
}

var fileTemplate = template.Must(template.New("file").Parse(`// Code generated by envschema; DO NOT EDIT.

package {{.Package}}

import "github.com/Azhovan/envschema"

// {{.TypeName}} holds the validated environment.
type {{.TypeName}} struct {
{{- range .Fields}}
	{{- if .Description}}
	// {{.Name}} is {{.Key}}: {{.Description}}
	{{- end}}
	{{.Name}} {{.GoType}} ` + "`env:\"{{.Key}}\"`" + `
{{- end}}
}

// Load{{.TypeName}} copies the values of cfg into a {{.TypeName}}.
// Variables that resolved to nothing keep their zero value.
func Load{{.TypeName}}(cfg *envschema.Config) (*{{.TypeName}}, error) {
	var out {{.TypeName}}
	{{- if .Fields}}
	var err error
	{{- end}}
{{range .Fields}}
	{{- if .Required}}
	if out.{{.Name}}, err = cfg.{{.Getter}}({{printf "%q" .Key}}); err != nil {
		return nil, err
	}
	{{- else}}
	if cfg.Has({{printf "%q" .Key}}) {
		if out.{{.Name}}, err = cfg.{{.Getter}}({{printf "%q" .Key}}); err != nil {
			return nil, err
		}
	}
	{{- end}}
{{end}}
	return &out, nil
}
`))

// Generate renders gofmt'ed Go source for schema.
func Generate(schema envschema.Schema, opts Options) ([]byte, error) {
	if opts.Package == "" {
		opts.Package = "config"
	}
	if opts.TypeName == "" {
		opts.TypeName = "Env"
	}
	if !token.IsIdentifier(opts.Package) {
		return nil, fmt.Errorf("typegen: invalid package name %q", opts.Package)
	}
	if !token.IsIdentifier(opts.TypeName) || !token.IsExported(opts.TypeName) {
		return nil, fmt.Errorf("typegen: type name %q must be an exported identifier", opts.TypeName)
	}

	data := templateData{
		Package:  opts.Package,
		TypeName: opts.TypeName,
	}

	seen := make(map[string]string)
	for _, key := range schema.Keys() {
		d := schema[key]
		goType, getter, err := goTypeOf(d.Type)
		if err != nil {
			return nil, fmt.Errorf("typegen: %s: %w", key, err)
		}

		name := FieldName(key)
		if other, ok := seen[name]; ok {
			return nil, fmt.Errorf("%w: %s and %s both map to %s", ErrNameCollision, other, key, name)
		}
		seen[name] = key

		data.Fields = append(data.Fields, field{
			Name:        name,
			Key:         key,
			GoType:      goType,
			Getter:      getter,
			Description: strings.Join(strings.Fields(d.Description), " "),
			Required:    d.Required && d.Default == nil,
		})
	}

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("typegen: render: %w", err)
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("typegen: format: %w", err)
	}
	return src, nil
}

func goTypeOf(kind envschema.Kind) (goType, getter string, err error) {
	switch kind {
	case envschema.String:
		return "string", "String", nil
	case envschema.Number:
		return "float64", "Number", nil
	case envschema.Boolean:
		return "bool", "Bool", nil
	case envschema.Array:
		return "[]string", "Strings", nil
	default:
		return "", "", fmt.Errorf("unsupported type %s", kind)
	}
}

// FieldName converts an environment variable name into an exported Go
// identifier: DATABASE_URL becomes DatabaseURL, api-key becomes APIKey.
func FieldName(key string) string {
	title := cases.Title(language.Und)

	var b strings.Builder
	words := strings.FieldsFunc(key, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, word := range words {
		upper := strings.ToUpper(word)
		if initialisms[upper] {
			b.WriteString(upper)
			continue
		}
		b.WriteString(title.String(strings.ToLower(word)))
	}

	name := b.String()
	if name == "" || !unicode.IsLetter([]rune(name)[0]) {
		name = "Var" + name
	}
	return name
}
