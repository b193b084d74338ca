package sentiment

import "unicode/utf8"

const DEFAULT_MAX_INPUT_CHARS = 512

// Truncate cuts text to at most max characters (runes, not bytes).
func Truncate(text string, max int) string {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}

	n := 0
	for i := range text {
		if n == max {
			return text[:i]
		}
		n++
	}
	return text
}
