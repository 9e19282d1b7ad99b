// Package strutil implements the string and Unicode component: UTF-8
// decoding, case conversion and normalization, case-insensitive
// comparison, splitting and general manipulation, code-page conversion,
// and the HTML named-entity table, built atop golang.org/x/text rather
// than hand-rolled delta/expansion tables for case mapping.
package strutil

import "unicode/utf8"

// ReplacementChar is substituted for malformed byte sequences.
const ReplacementChar = utf8.RuneError

// DecodeCodePoint decodes one codepoint from s starting at byte offset
// index, rejecting overlong encodings, sequences beyond U+10FFFF, and
// illegal continuation bytes by substituting U+FFFD. It returns the
// decoded rune and the new index (index + the encoded byte width, or +1
// on error so scanning still progresses).
func DecodeCodePoint(s string, index int) (rune, int) {
	if index < 0 || index >= len(s) {
		return ReplacementChar, index
	}
	r, size := utf8.DecodeRuneInString(s[index:])
	if r == utf8.RuneError && size <= 1 {
		return ReplacementChar, index + 1
	}
	return r, index + size
}

// DecodeCodePointStrict is like DecodeCodePoint but returns -1 instead of
// U+FFFD for callers that need to distinguish "actually U+FFFD" from
// "malformed".
func DecodeCodePointStrict(s string, index int) (rune, int) {
	if index < 0 || index >= len(s) {
		return -1, index
	}
	r, size := utf8.DecodeRuneInString(s[index:])
	if r == utf8.RuneError && size <= 1 {
		return -1, index + 1
	}
	return r, index + size
}

// IsNullOrEmpty treats a Go "" the same as a conceptually absent string;
// Smile distinguishes null from empty at the value layer, but most string
// primitives treat them uniformly.
func IsNullOrEmpty(s string) bool {
	return s == ""
}

// IsNullOrWhitespace reports whether s is empty or consists entirely of
// whitespace bytes (<= 0x20), mirroring String_IsNullOrWhitespace.
func IsNullOrWhitespace(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x20 {
			return false
		}
	}
	return true
}

// RuneCount returns the number of Unicode code points represented by s,
// decoding malformed bytes as single-byte runs (so it always terminates
// and agrees with repeated DecodeCodePoint calls).
func RuneCount(s string) int {
	n := 0
	for i := 0; i < len(s); {
		_, next := DecodeCodePoint(s, i)
		i = next
		n++
	}
	return n
}
