package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Stroked letters do not decompose under NFD, so they need explicit mappings.
var strokeReplacer = strings.NewReplacer(
	"ł", "l",
	"Ł", "L",
	"ø", "o",
	"Ø", "O",
	"đ", "d",
	"Đ", "D",
)

// Fold returns a canonical comparison form of s: trimmed, lowercased, with
// combining diacritical marks removed. The empty string folds to itself.
func Fold(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strokeReplacer.Replace(folded)
	return strings.ToLower(folded)
}

// FirstToken returns the first whitespace-separated token of name.
// External services index primary given names only, so multi-word given
// names ("Jan Walenty") are reduced to the first word ("Jan").
func FirstToken(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// EqualFolded reports whether a and b are equal after folding.
func EqualFolded(a, b string) bool {
	return Fold(a) == Fold(b)
}
