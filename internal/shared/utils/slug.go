package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9-]+`)
	slugRepeatHyphen = regexp.MustCompile(`-+`)
)

// GenerateSlug derives a URL-safe base slug from a display name:
// diacritics stripped, lowercased, whitespace and punctuation collapsed
// to single hyphens.
func GenerateSlug(input string) string {
	ascii := RemoveDiacritics(input)

	lower := strings.ToLower(ascii)
	hyphenated := strings.ReplaceAll(lower, " ", "-")

	cleaned := slugInvalidChars.ReplaceAllString(hyphenated, "")
	normalized := slugRepeatHyphen.ReplaceAllString(cleaned, "-")

	return strings.Trim(normalized, "-")
}

// RemoveDiacritics decomposes accented characters and drops the combining
// marks, e.g. "Búho Real" -> "Buho Real".
func RemoveDiacritics(input string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, input)
	if err != nil {
		return input
	}
	return result
}
