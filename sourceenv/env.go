package sourceenv

import (
	"context"
	"os"
	"strings"

	"github.com/Azhovan/envschema/internal/normalize"
)

// Options configures environment variable source behavior.
type Options struct {
	// Prefix filters vars starting with prefix (stripped from the name).
	// Empty = load all vars.
	Prefix string

	// CaseSensitive controls prefix matching (default: false).
	CaseSensitive bool

	// Environ replaces os.Environ() when non-nil. Entries use "KEY=value" form.
	Environ []string
}

// Source reads the process environment once per Load.
type Source struct {
	opts Options
}

// New creates an environment variable source.
func New(opts Options) *Source {
	return &Source{opts: opts}
}

// Name returns "env", or "env:<prefix>" when a prefix is configured.
func (s *Source) Name() string {
	if s.opts.Prefix != "" {
		return "env:" + s.opts.Prefix
	}
	return "env"
}

// Load returns a snapshot of the environment filtered by prefix.
// The process environment is only read, never modified.
func (s *Source) Load(ctx context.Context) (map[string]string, error) {
	environ := s.opts.Environ
	if environ == nil {
		environ = os.Environ()
	}

	result := make(map[string]string, len(environ))
	for _, entry := range environ {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			continue
		}

		if s.opts.Prefix != "" {
			var matched bool
			if s.opts.CaseSensitive {
				key, matched = strings.CutPrefix(key, s.opts.Prefix)
			} else {
				key, matched = normalize.TrimPrefixFold(key, s.opts.Prefix)
			}
			if !matched || key == "" {
				continue
			}
		}

		result[key] = value
	}

	return result, nil
}
