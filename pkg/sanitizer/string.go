package sanitizer

import (
	"regexp"
	"strings"
	"unicode"
)

func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeTitle(title string) string {
	return TrimAndNormalize(title)
}

func NormalizeRoomName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeFreeText trims and collapses horizontal whitespace per line while
// preserving line breaks. Blank leading and trailing lines are dropped.
func NormalizeFreeText(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}

	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = TrimAndNormalize(line)
	}

	start := 0
	for start < len(lines) && lines[start] == "" {
		start++
	}
	end := len(lines)
	for end > start && lines[end-1] == "" {
		end--
	}

	return strings.Join(lines[start:end], "\n")
}

// EscapeRegex escapes regex metacharacters so user input can be embedded in
// a database regex filter without changing its meaning.
func EscapeRegex(s string) string {
	return regexp.QuoteMeta(s)
}
