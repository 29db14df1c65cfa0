package common

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText applies Unicode NFC normalization, lowercases, and collapses
// runs of whitespace to single spaces.  All keyword and pattern matching in
// the engine runs over text normalized by this function so that accented
// French legal vocabulary matches regardless of input encoding.
func NormalizeText(text string) string {
	text = norm.NFC.String(text)
	text = strings.ToLower(text)
	var b strings.Builder
	b.Grow(len(text))
	prevSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !prevSpace {
				b.WriteRune(' ')
				prevSpace = true
			}
		} else {
			b.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(b.String())
}

// Truncate shortens s to at most max runes.  When content is cut the last
// kept rune is replaced by an ellipsis marker, so the result never exceeds
// max runes.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// ContainsAny reports whether any of the needles occurs in haystack.
// Both sides are expected to be pre-normalized.
func ContainsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

// CountOccurrences returns how many times needle occurs in haystack.
// An empty needle counts as zero occurrences.
func CountOccurrences(haystack, needle string) int {
	if needle == "" {
		return 0
	}
	return strings.Count(haystack, needle)
}

// CountMatches returns how many of the needles occur in haystack, counting
// each needle at most once.
func CountMatches(haystack string, needles []string) int {
	count := 0
	for _, n := range needles {
		if n != "" && strings.Contains(haystack, n) {
			count++
		}
	}
	return count
}
