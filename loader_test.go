package envschema

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSource is a Source with a fixed result for testing.
type mockSource struct {
	name string
	data map[string]string
	err  error
}

func (m *mockSource) Name() string { return m.name }

func (m *mockSource) Load(ctx context.Context) (map[string]string, error) {
	return m.data, m.err
}

func load(t *testing.T, schema Schema, raw Env) (*Config, *test.Hook, error) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	cfg, err := NewLoader(schema).WithSource(raw).WithLogger(logger).Load(context.Background())
	return cfg, hook, err
}

func warnedVariables(hook *test.Hook) []string {
	var names []string
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			names = append(names, entry.Data["variable"].(string))
		}
	}
	return names
}

func TestLoad_ParsesAllKinds(t *testing.T) {
	schema := Schema{
		"PORT":     {Type: Number, Required: true},
		"API_URL":  {Type: String, Required: true},
		"DEBUG":    {Type: Boolean, Default: false},
		"FEATURES": {Type: Array, Required: true},
	}
	raw := Env{
		"PORT":     "3000",
		"API_URL":  "http://api.example.com",
		"DEBUG":    "true",
		"FEATURES": "feature1,feature2,feature3",
	}

	cfg, _, err := load(t, schema, raw)
	require.NoError(t, err)

	port, err := cfg.Int("PORT")
	require.NoError(t, err)
	assert.Equal(t, 3000, port)

	apiURL, err := cfg.String("API_URL")
	require.NoError(t, err)
	assert.Equal(t, "http://api.example.com", apiURL)

	debug, err := cfg.Bool("DEBUG")
	require.NoError(t, err)
	assert.True(t, debug, "raw value must win over default")

	features, err := cfg.Strings("FEATURES")
	require.NoError(t, err)
	assert.Equal(t, []string{"feature1", "feature2", "feature3"}, features)
}

func TestLoad_RawValueEqualsCoercion(t *testing.T) {
	schema := Schema{
		"S": {Type: String},
		"N": {Type: Number},
		"B": {Type: Boolean},
		"A": {Type: Array},
	}
	raw := Env{"S": " spaced ", "N": "-1.5", "B": "FALSE", "A": "x, y,"}

	cfg, _, err := load(t, schema, raw)
	require.NoError(t, err)

	for key, d := range schema {
		want, err := Coerce(raw[key], d.Type)
		require.NoError(t, err)
		got, err := cfg.Get(key)
		require.NoError(t, err)
		assert.True(t, want.Equal(got), "%s: got %v, want %v", key, got, want)
	}
}

func TestLoad_UsesDefaults(t *testing.T) {
	schema := Schema{
		"PORT":     {Type: Number, Default: 3000},
		"DEBUG":    {Type: Boolean, Default: false},
		"ORIGINS":  {Type: Array, Default: []string{"http://localhost:3000"}},
		"LOGLEVEL": {Type: String, Default: "info"},
	}

	cfg, _, err := load(t, schema, Env{})
	require.NoError(t, err)

	port, err := Get[float64](cfg, "PORT")
	require.NoError(t, err)
	assert.Equal(t, float64(3000), port)

	debug, err := cfg.Bool("DEBUG")
	require.NoError(t, err)
	assert.False(t, debug)

	origins, err := cfg.Strings("ORIGINS")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://localhost:3000"}, origins)

	level, err := cfg.String("LOGLEVEL")
	require.NoError(t, err)
	assert.Equal(t, "info", level)

	source, ok := cfg.SourceOf("PORT")
	require.True(t, ok)
	assert.Equal(t, SourceDefault, source)
}

func TestLoad_DefaultWinsOverRequired(t *testing.T) {
	schema := Schema{
		"PORT": {Type: Number, Required: true, Default: 3000},
	}

	cfg, _, err := load(t, schema, Env{})
	require.NoError(t, err)

	port, err := cfg.Int("PORT")
	require.NoError(t, err)
	assert.Equal(t, 3000, port)
}

func TestLoad_DefaultSkipsCustomValidator(t *testing.T) {
	schema := Schema{
		"PORT": {Type: Number, Default: 80, Validate: Min(1024)},
	}

	cfg, _, err := load(t, schema, Env{})
	require.NoError(t, err)

	port, err := cfg.Int("PORT")
	require.NoError(t, err)
	assert.Equal(t, 80, port)
}

func TestLoad_MissingRequired(t *testing.T) {
	schema := Schema{
		"X": {Type: String, Required: true},
	}

	cfg, hook, err := load(t, schema, Env{"RANDOM_TOOL_VAR": "1"})
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, ErrMissingRequired)
	assert.Contains(t, err.Error(), "X")
	assert.Empty(t, warnedVariables(hook), "no warnings are emitted when validation fails")

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	require.Len(t, ve.FieldErrors, 1)
	assert.Equal(t, "X", ve.FieldErrors[0].Key)
	assert.Equal(t, ErrCodeRequired, ve.FieldErrors[0].Code)
}

func TestLoad_DefaultTypeMismatch(t *testing.T) {
	tests := []struct {
		name string
		d    Descriptor
	}{
		{"string default for number", Descriptor{Type: Number, Default: "3000"}},
		{"number default for boolean", Descriptor{Type: Boolean, Default: 1}},
		{"string default for array", Descriptor{Type: Array, Default: "a,b"}},
		{"bool default for string", Descriptor{Type: String, Default: true}},
		{"NaN default for number", Descriptor{Type: Number, Default: math.NaN()}},
		{"NaN Value default for number", Descriptor{Type: Number, Default: NumberValue(math.NaN())}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := load(t, Schema{"KEY": tt.d}, Env{})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDefaultTypeMismatch)
			assert.Contains(t, err.Error(), "KEY")
		})
	}
}

func TestLoad_DefaultTypeNotCheckedWhenRawPresent(t *testing.T) {
	schema := Schema{
		"PORT": {Type: Number, Default: "not-a-number"},
	}

	cfg, _, err := load(t, schema, Env{"PORT": "8080"})
	require.NoError(t, err)

	port, err := cfg.Int("PORT")
	require.NoError(t, err)
	assert.Equal(t, 8080, port)
}

func TestLoad_CoercionFailure(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		raw  string
	}{
		{"number", Number, "abc"},
		{"empty number", Number, ""},
		{"boolean", Boolean, "yes"},
		{"numeric boolean", Boolean, "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := load(t, Schema{"VALUE": {Type: tt.kind}}, Env{"VALUE": tt.raw})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrCoercion)
			assert.Contains(t, err.Error(), "VALUE")

			var ce *CoercionError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.raw, ce.Raw)
		})
	}
}

func TestLoad_CustomValidation(t *testing.T) {
	schema := Schema{
		"N": {Type: Number, Validate: ValidatorFunc(func(v Value) bool {
			return v.Num() >= 1000 && v.Num() <= 9999
		})},
	}

	_, _, err := load(t, schema, Env{"N": "999"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCustomValidation)
	assert.Contains(t, err.Error(), "N")
	assert.Contains(t, err.Error(), "custom validation failed")

	cfg, _, err := load(t, schema, Env{"N": "3000"})
	require.NoError(t, err)
	n, err := cfg.Int("N")
	require.NoError(t, err)
	assert.Equal(t, 3000, n)
}

func TestLoad_OptionalUnsetKey(t *testing.T) {
	schema := Schema{
		"OPTIONAL": {Type: String},
		"PRESENT":  {Type: String},
	}

	cfg, _, err := load(t, schema, Env{"PRESENT": "yes"})
	require.NoError(t, err)

	_, err = cfg.Get("OPTIONAL")
	assert.ErrorIs(t, err, ErrNotSet)
	assert.False(t, errors.Is(err, ErrUndeclaredKey))
	assert.False(t, cfg.Has("OPTIONAL"))
	assert.True(t, cfg.Declared("OPTIONAL"))
	assert.NotContains(t, cfg.All(), "OPTIONAL")
	assert.Equal(t, []string{"PRESENT"}, cfg.Keys())
}

func TestLoad_FailFastInKeyOrder(t *testing.T) {
	schema := Schema{
		"C_PORT": {Type: Number},
		"A_HOST": {Type: String, Required: true},
		"B_NAME": {Type: String, Required: true},
	}
	raw := Env{"C_PORT": "abc"}

	_, _, err := load(t, schema, raw)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	require.Len(t, ve.FieldErrors, 1)
	assert.Equal(t, "A_HOST", ve.FieldErrors[0].Key)

	logger, _ := test.NewNullLogger()
	_, err = NewLoader(schema).WithSource(raw).WithLogger(logger).CollectAll(true).Load(context.Background())
	require.True(t, errors.As(err, &ve))
	require.Len(t, ve.FieldErrors, 3)
	assert.Equal(t, "A_HOST", ve.FieldErrors[0].Key)
	assert.Equal(t, "B_NAME", ve.FieldErrors[1].Key)
	assert.Equal(t, "C_PORT", ve.FieldErrors[2].Key)
	assert.ErrorIs(t, err, ErrMissingRequired)
	assert.ErrorIs(t, err, ErrCoercion)
}

func TestLoad_UnusedVariableWarnings(t *testing.T) {
	schema := Schema{
		"PORT": {Type: Number, Default: 3000},
	}
	raw := Env{
		"PORT":            "8080",
		"RANDOM_TOOL_VAR": "1",
		"npm_config_foo":  "1",
		"PATH":            "/usr/bin",
		"_":               "/usr/bin/env",
		"ANOTHER_APP_VAR": "x",
	}

	cfg, hook, err := load(t, schema, raw)
	require.NoError(t, err)

	assert.Equal(t, []string{"ANOTHER_APP_VAR", "RANDOM_TOOL_VAR"}, warnedVariables(hook))
	assert.Equal(t, []string{"ANOTHER_APP_VAR", "RANDOM_TOOL_VAR"}, cfg.Unused())

	for _, entry := range hook.AllEntries() {
		if entry.Data["variable"] == "RANDOM_TOOL_VAR" {
			assert.Contains(t, entry.Message, "RANDOM_TOOL_VAR")
			assert.Equal(t, "static", entry.Data["source"])
		}
	}
}

func TestLoad_AmbientOnlyProducesNoWarnings(t *testing.T) {
	_, hook, err := load(t, Schema{}, Env{"npm_config_foo": "1", "HOME": "/root", "EDITOR": "vi"})
	require.NoError(t, err)
	assert.Empty(t, warnedVariables(hook))
}

func TestLoad_IgnorePrefixes(t *testing.T) {
	logger, hook := test.NewNullLogger()

	cfg, err := NewLoader(Schema{}).
		WithSource(Env{"KUBERNETES_SERVICE_HOST": "10.0.0.1", "REAL_VAR": "1"}).
		WithLogger(logger).
		Ignore("kubernetes_").
		Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"REAL_VAR"}, cfg.Unused())
	assert.Equal(t, []string{"REAL_VAR"}, warnedVariables(hook))
}

func TestLoad_LaterSourcesOverride(t *testing.T) {
	logger, _ := test.NewNullLogger()
	schema := Schema{
		"HOST": {Type: String},
		"PORT": {Type: Number},
	}

	cfg, err := NewLoader(schema).
		WithSource(&mockSource{name: "file:.env", data: map[string]string{"HOST": "file-host", "PORT": "1"}}).
		WithSource(&mockSource{name: "env", data: map[string]string{"PORT": "2"}}).
		WithLogger(logger).
		Load(context.Background())
	require.NoError(t, err)

	host, err := cfg.String("HOST")
	require.NoError(t, err)
	assert.Equal(t, "file-host", host)

	port, err := cfg.Int("PORT")
	require.NoError(t, err)
	assert.Equal(t, 2, port)

	assert.Equal(t, []FieldProvenance{
		{Key: "HOST", SourceName: "file:.env"},
		{Key: "PORT", SourceName: "env"},
	}, cfg.Provenance())
}

func TestLoad_SourceError(t *testing.T) {
	cause := errors.New("disk on fire")
	_, err := NewLoader(Schema{}).
		WithSource(&mockSource{name: "file:.env", err: cause}).
		Load(context.Background())

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "file:.env", le.Source)
	assert.ErrorIs(t, err, cause)

	var ve *ValidationError
	assert.False(t, errors.As(err, &ve), "load errors are distinct from validation errors")
}

func TestLoad_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(Schema{}).WithSource(Env{}).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoad_SchemaCopiedAtConstruction(t *testing.T) {
	schema := Schema{"PORT": {Type: Number, Default: 1}}
	loader := NewLoader(schema).WithSource(Env{}).WithLogger(logrus.New())

	schema["EXTRA"] = Descriptor{Type: String, Required: true}

	cfg, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, cfg.Declared("EXTRA"))
}

func TestLoad_SnapshotIsolatedFromSourceMap(t *testing.T) {
	raw := Env{"NAME": "before"}
	cfg, _, err := load(t, Schema{"NAME": {Type: String}}, raw)
	require.NoError(t, err)

	raw["NAME"] = "after"

	name, err := cfg.String("NAME")
	require.NoError(t, err)
	assert.Equal(t, "before", name)
}

func TestLoad_Idempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	schema := Schema{
		"PORT":     {Type: Number, Default: 3000},
		"NAME":     {Type: String},
		"FEATURES": {Type: Array, Default: []string{}},
	}

	properties.Property("identical inputs yield identical configs", prop.ForAll(
		func(port int64, name string, features []string) bool {
			raw := Env{
				"PORT":     strconv.FormatInt(port*1000, 10),
				"NAME":     name,
				"FEATURES": strings.Join(features, ","),
			}
			logger, _ := test.NewNullLogger()
			first, err1 := NewLoader(schema).WithSource(raw).WithLogger(logger).Load(context.Background())
			second, err2 := NewLoader(schema).WithSource(raw).WithLogger(logger).Load(context.Background())
			if err1 != nil || err2 != nil {
				return false
			}

			a, b := first.All(), second.All()
			if len(a) != len(b) {
				return false
			}
			for k, v := range a {
				if !v.Equal(b[k]) {
					return false
				}
			}
			return true
		},
		gen.Int64Range(0, 65),
		gen.AlphaString(),
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}

func TestLoadConvenience_EnvFileAndProcessPrecedence(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("PORT=3000\nAPI_URL=http://file.example.com\n"), 0644))

	logger, _ := test.NewNullLogger()
	schema := Schema{
		"PORT":    {Type: Number, Required: true},
		"API_URL": {Type: String, Required: true},
	}

	cfg, err := Load(context.Background(), schema,
		WithEnvFile(envFile),
		WithEnviron([]string{"PORT=4000"}),
		WithLogger(logger),
	)
	require.NoError(t, err)

	port, err := cfg.Int("PORT")
	require.NoError(t, err)
	assert.Equal(t, 4000, port, "process environment wins over env file")

	apiURL, err := cfg.String("API_URL")
	require.NoError(t, err)
	assert.Equal(t, "http://file.example.com", apiURL)

	source, _ := cfg.SourceOf("API_URL")
	assert.Equal(t, "file:.env", source)
}

func TestLoadConvenience_MissingEnvFile(t *testing.T) {
	_, err := Load(context.Background(), Schema{},
		WithEnvFile(filepath.Join(t.TempDir(), "missing.env")),
		WithEnviron([]string{}),
	)

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "file:missing.env", le.Source)
}

func TestLoadConvenience_Prefix(t *testing.T) {
	logger, hook := test.NewNullLogger()

	cfg, err := New(Schema{"PORT": {Type: Number, Required: true}},
		WithPrefix("APP_"),
		WithEnviron([]string{"APP_PORT=9090", "PORT=1", "APP_STRAY=1"}),
		WithLogger(logger),
		WithIgnore("STRAY"),
	)
	require.NoError(t, err)

	port, err := cfg.Int("PORT")
	require.NoError(t, err)
	assert.Equal(t, 9090, port)
	assert.Empty(t, warnedVariables(hook))
}

func TestLoadConvenience_CollectAll(t *testing.T) {
	_, err := New(Schema{
		"A": {Type: String, Required: true},
		"B": {Type: String, Required: true},
	}, WithEnviron([]string{}), WithCollectAll())

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Len(t, ve.FieldErrors, 2)
}
