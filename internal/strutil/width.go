package strutil

import (
	"strings"

	"golang.org/x/text/width"
)

// DisplayWidth estimates the terminal column width of s, counting
// East-Asian wide/fullwidth runes as 2 columns and everything else as 1.
// Used by the display-aware padding variants below; the byte-length
// PadStart/PadEnd/PadCenter deliberately do not attempt this.
func DisplayWidth(s string) int {
	w := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			w += 2
		default:
			w++
		}
	}
	return w
}

// PadStartDisplay pads str on the left with padChar until its DisplayWidth
// is at least minWidth, so aligned columns of mixed-width text line up in
// a terminal.
func PadStartDisplay(str string, minWidth int, padChar byte) string {
	w := DisplayWidth(str)
	if w >= minWidth {
		return str
	}
	return strings.Repeat(string(padChar), minWidth-w) + str
}

// PadEndDisplay pads str on the right with padChar until its DisplayWidth
// is at least minWidth.
func PadEndDisplay(str string, minWidth int, padChar byte) string {
	w := DisplayWidth(str)
	if w >= minWidth {
		return str
	}
	return str + strings.Repeat(string(padChar), minWidth-w)
}
