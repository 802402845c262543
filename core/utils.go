package core

import "strings"

// CleanString trims surrounding whitespace from s. Pass true to also
// lowercase the result (emails and other case-insensitive keys).
func CleanString(s string, lower ...bool) string {
	cleaned := strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		cleaned = strings.ToLower(cleaned)
	}
	return cleaned
}
