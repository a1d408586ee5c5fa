package util

import (
	"strings"
	"unicode"
)

// ToSnakeCase converts PascalCase or camelCase to snake_case.
// Handles acronyms properly (e.g., "HTTPSConnection" -> "https_connection")
func ToSnakeCase(s string) string {
	var result strings.Builder
	runes := []rune(s)

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		// Check if we need to insert underscore before this character
		if i > 0 && unicode.IsUpper(r) {
			// Don't insert underscore if previous char was uppercase (acronym)
			// unless next char is lowercase (end of acronym)
			prevUpper := unicode.IsUpper(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			prevUnderscore := runes[i-1] == '_'

			if !prevUnderscore && (!prevUpper || nextLower) {
				result.WriteRune('_')
			}
		}

		result.WriteRune(r)
	}

	return strings.ToLower(result.String())
}

// LowerFirst lowercases the leading rune, leaving the rest untouched.
func LowerFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

// TrimTypePrefix strips a leading type name from an identifier when what
// remains still reads as a name: TrimTypePrefix("StatusIdle", "Status") is
// "Idle", but TrimTypePrefix("Statusbar", "Status") stays "Statusbar".
func TrimTypePrefix(name, typeName string) string {
	rest, ok := strings.CutPrefix(name, typeName)
	if !ok || rest == "" {
		return name
	}
	if r := []rune(rest)[0]; !unicode.IsUpper(r) && r != '_' {
		return name
	}
	return strings.TrimLeft(rest, "_")
}
