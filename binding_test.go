package envschema

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
)

func TestBinding_ParseTag(t *testing.T) {
	tests := []struct {
		name     string
		tag      string
		expected tagConfig
	}{
		{
			name:     "empty tag",
			tag:      "",
			expected: tagConfig{},
		},
		{
			name:     "env directive",
			tag:      "env:DB_HOST",
			expected: tagConfig{env: "DB_HOST"},
		},
		{
			name:     "prefix directive",
			tag:      "prefix:database",
			expected: tagConfig{prefix: "database"},
		},
		{
			name:     "default directive",
			tag:      "default:5432",
			expected: tagConfig{defValue: "5432", hasDefault: true},
		},
		{
			name:     "default with empty value",
			tag:      "default:",
			expected: tagConfig{defValue: "", hasDefault: true},
		},
		{
			name:     "default with colon",
			tag:      "default:http://localhost:8080",
			expected: tagConfig{defValue: "http://localhost:8080", hasDefault: true},
		},
		{
			name:     "default list keeps commas",
			tag:      "default:a,b,c",
			expected: tagConfig{defValue: "a,b,c", hasDefault: true},
		},
		{
			name:     "default list followed by directive",
			tag:      "default:a, b,required",
			expected: tagConfig{defValue: "a, b", hasDefault: true, required: true},
		},
		{
			name:     "min and max",
			tag:      "min:1,max:100",
			expected: tagConfig{min: "1", max: "100"},
		},
		{
			name:     "oneof directive",
			tag:      "oneof:dev,staging,prod",
			expected: tagConfig{oneof: []string{"dev", "staging", "prod"}},
		},
		{
			name:     "oneof with spaces",
			tag:      "oneof: dev , staging ,prod",
			expected: tagConfig{oneof: []string{"dev", "staging", "prod"}},
		},
		{
			name: "oneof followed by directives",
			tag:  "oneof:debug,info,default:info,secret",
			expected: tagConfig{
				oneof:      []string{"debug", "info"},
				defValue:   "info",
				hasDefault: true,
				secret:     true,
			},
		},
		{
			name:     "boolean directives",
			tag:      "required,secret",
			expected: tagConfig{required: true, secret: true},
		},
		{
			name:     "explicit false",
			tag:      "required:false,secret:false",
			expected: tagConfig{},
		},
		{
			name:     "unknown directives ignored",
			tag:      "foo:bar,required",
			expected: tagConfig{required: true},
		},
		{
			name: "everything",
			tag:  "env:LOG_LEVEL,required,default:info,oneof:debug,info,warn,secret",
			expected: tagConfig{
				env:        "LOG_LEVEL",
				required:   true,
				defValue:   "info",
				hasDefault: true,
				oneof:      []string{"debug", "info", "warn"},
				secret:     true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTag(tt.tag)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("parseTag(%q) = %+v, want %+v", tt.tag, got, tt.expected)
			}
		})
	}
}

func TestBinding_StartsWithDirective(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"", false},
		{"env:DB_HOST", true},
		{"prefix:database", true},
		{"default:localhost", true},
		{"min:1", true},
		{"max:100", true},
		{"oneof:dev,staging", true},
		{"required", true},
		{"secret", true},
		{"  env:TEST", true},
		{"random_text", false},
		{"staging", false},
	}

	for _, tt := range tests {
		if got := startsWithDirective(tt.input); got != tt.expected {
			t.Errorf("startsWithDirective(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

type bindDatabase struct {
	URL            string `conf:"required,secret" desc:"PostgreSQL connection string"`
	MaxConnections int    `conf:"default:20,min:1,max:100"`
	SSL            bool   `conf:"default:true"`
}

type bindConfig struct {
	NodeEnv  string       `conf:"env:NODE_ENV,required,oneof:development,production,test"`
	Port     uint16       `conf:"default:3000,min:1000"`
	Ratio    float64      `conf:"default:0.5"`
	APIKeys  []string     `conf:"secret,min:1"`
	LogLevel string       `conf:"default:info,oneof:error,warn,info,debug"`
	Database bindDatabase `conf:"prefix:db"`
	Ignored  string       `conf:"-"`
	internal string
}

func TestSchemaOf(t *testing.T) {
	schema, err := SchemaOf(&bindConfig{})
	if err != nil {
		t.Fatalf("SchemaOf failed: %v", err)
	}

	wantKeys := []string{"API_KEYS", "DB_MAX_CONNECTIONS", "DB_SSL", "DB_URL", "LOG_LEVEL", "NODE_ENV", "PORT", "RATIO"}
	if got := schema.Keys(); !reflect.DeepEqual(got, wantKeys) {
		t.Fatalf("keys = %v, want %v", got, wantKeys)
	}

	if d := schema["DB_URL"]; d.Type != String || !d.Required || !d.Secret || d.Description != "PostgreSQL connection string" {
		t.Errorf("unexpected DB_URL descriptor: %+v", d)
	}
	if d := schema["PORT"]; d.Type != Number || !reflect.DeepEqual(d.Default, NumberValue(3000)) {
		t.Errorf("unexpected PORT descriptor: %+v", d)
	}
	if d := schema["DB_SSL"]; d.Type != Boolean || !reflect.DeepEqual(d.Default, BoolValue(true)) {
		t.Errorf("unexpected DB_SSL descriptor: %+v", d)
	}
	if d := schema["API_KEYS"]; d.Type != Array || d.Validate == nil {
		t.Errorf("unexpected API_KEYS descriptor: %+v", d)
	}
	if schema["NODE_ENV"].Validate.Valid(StringValue("staging")) {
		t.Error("NODE_ENV should reject values outside oneof")
	}
	if !schema["DB_MAX_CONNECTIONS"].Validate.Valid(NumberValue(50)) || schema["DB_MAX_CONNECTIONS"].Validate.Valid(NumberValue(101)) {
		t.Error("DB_MAX_CONNECTIONS bounds not applied")
	}
}

func TestSchemaOf_Errors(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		wantErr string
	}{
		{"not a struct", 42, "is not a struct"},
		{"nil", nil, "is not a struct"},
		{"unsupported field", &struct{ Ch chan int }{}, "unsupported field type"},
		{"bad default", &struct {
			Port int `conf:"default:eighty"`
		}{}, "default"},
		{"bad bound", &struct {
			Port int `conf:"min:low"`
		}{}, "invalid bound"},
		{"bound on bool", &struct {
			On bool `conf:"min:1"`
		}{}, "do not apply to booleans"},
		{"oneof on number", &struct {
			N int `conf:"oneof:1,2"`
		}{}, "oneof only applies"},
		{"duplicate variable", &struct {
			A string `conf:"env:X"`
			B string `conf:"env:X"`
		}{}, "more than one field"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SchemaOf(tt.value)
			if !errors.Is(err, ErrInvalidTarget) {
				t.Fatalf("expected ErrInvalidTarget, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestBind(t *testing.T) {
	schema, err := SchemaOf(bindConfig{})
	if err != nil {
		t.Fatalf("SchemaOf failed: %v", err)
	}

	logger, _ := test.NewNullLogger()
	cfg, err := NewLoader(schema).
		WithSource(Env{
			"NODE_ENV": "production",
			"PORT":     "8080",
			"API_KEYS": "k1, k2",
			"DB_URL":   "postgresql://localhost/app",
		}).
		WithLogger(logger).
		Load(t.Context())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	out := bindConfig{Ignored: "keep"}
	if err := Bind(cfg, &out); err != nil {
		t.Fatalf("Bind failed: %v", err)
	}

	want := bindConfig{
		NodeEnv:  "production",
		Port:     8080,
		Ratio:    0.5,
		APIKeys:  []string{"k1", "k2"},
		LogLevel: "info",
		Database: bindDatabase{
			URL:            "postgresql://localhost/app",
			MaxConnections: 20,
			SSL:            true,
		},
		Ignored: "keep",
	}
	if !reflect.DeepEqual(out, want) {
		t.Errorf("Bind result = %+v, want %+v", out, want)
	}
}

func TestBind_Errors(t *testing.T) {
	logger, _ := test.NewNullLogger()
	cfg, err := NewLoader(Schema{
		"PORT":  {Type: Number, Default: 70000},
		"RATIO": {Type: Number, Default: 0.5},
		"NAME":  {Type: String},
	}).WithSource(Env{}).WithLogger(logger).Load(t.Context())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if err := Bind(nil, &struct{}{}); !errors.Is(err, ErrNilConfig) {
		t.Errorf("expected ErrNilConfig, got %v", err)
	}
	if err := Bind(cfg, struct{}{}); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("expected ErrInvalidTarget for non-pointer, got %v", err)
	}

	var overflow struct{ Port uint16 }
	if err := Bind(cfg, &overflow); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch for overflow, got %v", err)
	}

	var fraction struct{ Ratio int }
	if err := Bind(cfg, &fraction); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch for fraction, got %v", err)
	}

	var wrongKind struct{ Ratio string }
	if err := Bind(cfg, &wrongKind); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch for kind mismatch, got %v", err)
	}

	var undeclared struct{ Missing string }
	if err := Bind(cfg, &undeclared); !errors.Is(err, ErrUndeclaredKey) {
		t.Errorf("expected ErrUndeclaredKey, got %v", err)
	}

	unset := struct{ Name string }{Name: "untouched"}
	if err := Bind(cfg, &unset); err != nil || unset.Name != "untouched" {
		t.Errorf("unset variable should leave field alone, got %q (err=%v)", unset.Name, err)
	}
}
