package envschema

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/Azhovan/envschema/internal/normalize"
)

// ambientPrefixes are case-insensitive name prefixes of variables injected by
// package managers, editors, terminals, the OS and GPU tooling.
var ambientPrefixes = []string{
	"npm_",
	"VSCODE_",
	"CHROME_",
	"TERM_",
	"FPS_",
	"INIT_",
	"LANG",
	"PATH",
	"OS",
	"PROMPT",
	"PROCESSOR",
	"SYSTEM",
	"PROGRAM",
	"APPDATA",
	"COMMON",
	"COMPUTER",
	"WINDOWS",
	"USER",
	"HOME",
	"LOGON",
	"PUBLIC",
	"TEMP",
	"TMP",
	"WIN",
	"ONE",
	"QT_",
	"ZES_",
	"SESSION",
	"NUMBER_OF_PROCESSORS",
}

// ambientNames are matched case-insensitively against the whole name.
var ambientNames = map[string]struct{}{
	"ALLUSERSPROFILE":    {},
	"COMMONPROGRAMFILES": {},
	"COMPUTERNAME":       {},
	"COMSPEC":            {},
	"DRIVERDATA":         {},
	"SYSTEMDRIVE":        {},
	"SYSTEMROOT":         {},
	"WINDIR":             {},
	"COLOR":              {},
	"COLORTERM":          {},
	"EDITOR":             {},
	"GIT_ASKPASS":        {},
	"NODE":               {},
	"PT7HOME":            {},
}

// IsAmbient reports whether name looks like an OS- or tool-injected variable
// that should never be reported as unused.
func IsAmbient(name string) bool {
	for _, prefix := range ambientPrefixes {
		if normalize.HasPrefixFold(name, prefix) {
			return true
		}
	}
	if utf8.RuneCountInString(name) <= 1 {
		return true
	}
	_, ok := ambientNames[strings.ToUpper(name)]
	return ok
}

// AmbientPrefixes returns a copy of the built-in ambient prefix list.
func AmbientPrefixes() []string {
	return slices.Clone(ambientPrefixes)
}

// AmbientNames returns the built-in ambient exact names, sorted.
func AmbientNames() []string {
	names := make([]string, 0, len(ambientNames))
	for name := range ambientNames {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
