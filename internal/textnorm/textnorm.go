// Package textnorm provides the canonical form used for every text comparison:
// lowercase, without diacritics, trimmed.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize returns s lowercased, stripped of combining marks and trimmed.
// "Échauffement", "echauffement" and "ÉCHAUFFEMENT " all normalize to "echauffement".
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	// A transformer carries state, so each call builds its own chain.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.TrimSpace(strings.ToLower(out))
}

// Words splits the normalized form of s into runs of letters and digits.
func Words(s string) []string {
	return strings.FieldsFunc(Normalize(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Equal reports whether a and b have the same normalized form.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
