package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Normalize lowercases and strips all whitespace so that phrase matching is
// insensitive to markup-induced spacing ("Add  to\nCart" == "addtocart").
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.Trim(s, " \n\t")
	s = whitespaceRegex.ReplaceAllString(s, "")
	return s
}

// ContainsAny reports whether the normalized text contains any of the
// normalized phrases.
func ContainsAny(text string, phrases []string) bool {
	text = Normalize(text)
	for _, p := range phrases {
		if strings.Contains(text, Normalize(p)) {
			return true
		}
	}
	return false
}

// CollapseWhitespace trims the string and folds inner whitespace runs into
// single spaces, for titles pulled out of HTML.
func CollapseWhitespace(s string) string {
	s = strings.Trim(s, " \n\t")
	return whitespaceRegex.ReplaceAllString(s, " ")
}
