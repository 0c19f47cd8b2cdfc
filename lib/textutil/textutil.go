package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)
var firstTextRegex = regexp.MustCompile(`\S(?:.*\S)?`)

// NormalizeName lowercases and collapses whitespace so names can be compared loosely.
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.TrimSpace(name)
	name = whitespaceRegex.ReplaceAllString(name, " ")
	return name
}

// FirstText returns the first non-empty line of text with the surrounding
// whitespace trimmed.
func FirstText(text string) (string, bool) {
	match := firstTextRegex.FindString(text)
	return match, match != ""
}

// IsBlank reports whether text only consists of (unicode) whitespace.
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

// FirstTextPattern is the pattern FirstText matches with, for error messages.
func FirstTextPattern() string {
	return firstTextRegex.String()
}
