package utils

import "strings"

// Truncate shortens s to maxLen runes, appending "..." when cut.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// StringToBool interprets loose model output ("true", "True", " yes") as a bool.
// Anything that is not an affirmative reads as false.
func StringToBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1":
		return true
	}
	return false
}
