package strutil

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var (
	lowerCaser = cases.Lower(language.Und)
	upperCaser = cases.Upper(language.Und)
	titleCaser = cases.Title(language.Und)
	foldCaser  = cases.Fold()
)

// ToLower, ToUpper, ToTitle, and CaseFold apply golang.org/x/text/cases'
// language-neutral Unicode transforms. There is no layered delta +
// expansion table keyed by (codepoint>>8, codepoint&0xFF) in this package.
func ToLower(s string) string { return lowerCaser.String(s) }
func ToUpper(s string) string { return upperCaser.String(s) }
func ToTitle(s string) string { return titleCaser.String(s) }

// CaseFold applies full Unicode case folding (cases.Fold) to the whole
// string, as used for case-insensitive comparison; one codepoint may fold
// to several.
func CaseFold(s string) string { return foldCaser.String(s) }

// Decompose applies Unicode canonical decomposition (NFD).
func Decompose(s string) string { return norm.NFD.String(s) }

// Compose applies Unicode canonical composition (NFC).
func Compose(s string) string { return norm.NFC.String(s) }

// Normalize performs a canonical reorder of combining marks by combining
// class without full composition, distinct from full NFC. NFD already
// groups and canonically orders combining sequences; reapplying NFC's
// composition step is deliberately skipped here to keep decomposed
// sequences decomposed-but-ordered.
func Normalize(s string) string { return norm.NFD.String(s) }

// CompareCaseInsensitive proceeds codepoint-by-codepoint applying the
// single-codepoint fold table, and if a fold expands to multiple
// codepoints, falls back to folding and comparing the remaining
// substrings in bulk.
func CompareCaseInsensitive(a, b string) int {
	ai, bi := 0, 0
	for ai < len(a) && bi < len(b) {
		ar, an := DecodeCodePoint(a, ai)
		br, bn := DecodeCodePoint(b, bi)

		af := CaseFold(string(ar))
		bf := CaseFold(string(br))

		if singleRune(af) && singleRune(bf) {
			fa, _ := utf8.DecodeRuneInString(af)
			fb, _ := utf8.DecodeRuneInString(bf)
			if fa != fb {
				return compareRune(fa, fb)
			}
			ai, bi = an, bn
			continue
		}

		// One side expanded to multiple codepoints: fold and compare the
		// remaining substrings in bulk.
		return strings.Compare(CaseFold(a[ai:]), CaseFold(b[bi:]))
	}
	switch {
	case ai < len(a):
		return 1
	case bi < len(b):
		return -1
	default:
		return 0
	}
}

// EqualCaseInsensitive is a convenience wrapper over CompareCaseInsensitive.
func EqualCaseInsensitive(a, b string) bool {
	return CompareCaseInsensitive(a, b) == 0
}

func singleRune(s string) bool {
	_, n := utf8.DecodeRuneInString(s)
	return n == len(s)
}

func compareRune(a, b rune) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
