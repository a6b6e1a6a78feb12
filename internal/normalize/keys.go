package normalize

import (
	"strings"
	"unicode"
)

// EnvName converts a dotted or nested key path into an environment variable name.
// Dots, dashes and spaces become underscores and letters are upper-cased.
// Examples:
//   - "database.host" → "DATABASE_HOST"
//   - "api.rate-limit" → "API_RATE_LIMIT"
//   - "PORT" → "PORT"
func EnvName(path string) string {
	var b strings.Builder
	b.Grow(len(path))
	for _, r := range strings.TrimSpace(path) {
		switch {
		case r == '.' || r == '-' || unicode.IsSpace(r):
			b.WriteByte('_')
		default:
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// JoinEnv joins a parent name and a child key with a single underscore.
// An empty parent returns the normalized key.
//   - JoinEnv("DATABASE", "host") → "DATABASE_HOST"
//   - JoinEnv("", "port") → "PORT"
func JoinEnv(parent, key string) string {
	key = EnvName(key)
	if parent == "" {
		return key
	}
	if key == "" {
		return parent
	}
	return parent + "_" + key
}

// HasPrefixFold reports whether s begins with prefix, ignoring ASCII and Unicode case.
func HasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// TrimPrefixFold removes prefix from s when HasPrefixFold holds.
func TrimPrefixFold(s, prefix string) (string, bool) {
	if !HasPrefixFold(s, prefix) {
		return s, false
	}
	return s[len(prefix):], true
}

// FieldEnvName converts a Go field name into an environment variable name,
// separating words at case changes and keeping acronyms together.
//   - "MaxConnections" → "MAX_CONNECTIONS"
//   - "APIKey" → "API_KEY"
//   - "DatabaseURL" → "DATABASE_URL"
func FieldEnvName(field string) string {
	runes := []rune(field)
	var b strings.Builder
	b.Grow(len(field) + 4)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
