package envschema

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for validation failures.
const (
	ErrCodeRequired    = "required"
	ErrCodeDefaultType = "default_type"
	ErrCodeInvalidType = "invalid_type"
	ErrCodeCustom      = "custom"
)

// Sentinel errors. A *ValidationError matches the sentinel of each FieldError it holds.
var (
	ErrMissingRequired     = errors.New("envschema: required variable is missing")
	ErrDefaultTypeMismatch = errors.New("envschema: default value type mismatch")
	ErrCoercion            = errors.New("envschema: value cannot be coerced")
	ErrCustomValidation    = errors.New("envschema: custom validation failed")

	// ErrUndeclaredKey is returned by lookups of keys that are not in the schema.
	ErrUndeclaredKey = errors.New("envschema: key is not declared in schema")

	// ErrNotSet is returned by lookups of declared optional keys that resolved to nothing.
	ErrNotSet = errors.New("envschema: key is declared but not set")

	// ErrTypeMismatch is returned by typed lookups when the stored kind differs.
	ErrTypeMismatch = errors.New("envschema: value type mismatch")

	// ErrNilConfig is returned when a nil *Config is passed to an exporter.
	ErrNilConfig = errors.New("envschema: config is nil")
)

var codeSentinels = map[string]error{
	ErrCodeRequired:    ErrMissingRequired,
	ErrCodeDefaultType: ErrDefaultTypeMismatch,
	ErrCodeInvalidType: ErrCoercion,
	ErrCodeCustom:      ErrCustomValidation,
}

// ValidationError aggregates per-variable validation failures.
type ValidationError struct {
	FieldErrors []FieldError
}

// Error formats validation errors as a multi-line message.
func (e *ValidationError) Error() string {
	if len(e.FieldErrors) == 0 {
		return "config validation failed: no errors"
	}

	var b strings.Builder
	if len(e.FieldErrors) == 1 {
		b.WriteString("config validation failed: 1 error\n")
	} else {
		fmt.Fprintf(&b, "config validation failed: %d errors\n", len(e.FieldErrors))
	}

	for _, fe := range e.FieldErrors {
		fmt.Fprintf(&b, "  - %s: %s (%s)\n", fe.Key, fe.Code, fe.Message)
	}

	return strings.TrimRight(b.String(), "\n")
}

// Unwrap exposes every field error to errors.Is and errors.As.
func (e *ValidationError) Unwrap() []error {
	errs := make([]error, len(e.FieldErrors))
	for i := range e.FieldErrors {
		errs[i] = &e.FieldErrors[i]
	}
	return errs
}

// FieldError represents a single variable validation failure.
type FieldError struct {
	Key     string // Variable name (e.g., "PORT")
	Code    string // Error code (e.g., "required", "invalid_type")
	Message string // Human-readable description
	Err     error  // Underlying cause, e.g. *CoercionError
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Key, e.Code, e.Message)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel that corresponds to the error code.
func (e *FieldError) Is(target error) bool {
	sentinel, ok := codeSentinels[e.Code]
	return ok && target == sentinel
}

// LoadError reports a source that could not be read or parsed.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load source %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func lookupError(sentinel error, key string) error {
	return fmt.Errorf("%w: %q", sentinel, key)
}
