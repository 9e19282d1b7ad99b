package strutil

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// codePages maps legacy code-page identifiers ("ISO-8859-{1..10,13..16}",
// "CP437", "Windows-125{0..8}") onto golang.org/x/text/encoding/charmap's
// static tables.
var codePages = map[string]*charmap.Charmap{
	"iso-8859-1":  charmap.ISO8859_1,
	"iso-8859-2":  charmap.ISO8859_2,
	"iso-8859-3":  charmap.ISO8859_3,
	"iso-8859-4":  charmap.ISO8859_4,
	"iso-8859-5":  charmap.ISO8859_5,
	"iso-8859-6":  charmap.ISO8859_6,
	"iso-8859-7":  charmap.ISO8859_7,
	"iso-8859-8":  charmap.ISO8859_8,
	"iso-8859-9":  charmap.ISO8859_9,
	"iso-8859-10": charmap.ISO8859_10,
	"iso-8859-13": charmap.ISO8859_13,
	"iso-8859-14": charmap.ISO8859_14,
	"iso-8859-15": charmap.ISO8859_15,
	"iso-8859-16": charmap.ISO8859_16,
	"cp437":       charmap.CodePage437,
	"windows-1250": charmap.Windows1250,
	"windows-1251": charmap.Windows1251,
	"windows-1252": charmap.Windows1252,
	"windows-1253": charmap.Windows1253,
	"windows-1254": charmap.Windows1254,
	"windows-1255": charmap.Windows1255,
	"windows-1256": charmap.Windows1256,
	"windows-1257": charmap.Windows1257,
	"windows-1258": charmap.Windows1258,
}

// LookupCodePage resolves a code-page name (case-insensitively) to its
// charmap, reporting ok=false for unknown names. ISO-8859-11 and
// ISO-8859-12 have no entry in codePages, so they too report ok=false.
func LookupCodePage(name string) (*charmap.Charmap, bool) {
	cm, ok := codePages[strings.ToLower(name)]
	return cm, ok
}

// ConvertUTF8ToCodePage re-encodes a UTF-8 string into the named legacy
// code page; codepoints the code page cannot represent map to '?'.
func ConvertUTF8ToCodePage(s, codePageName string) (string, bool) {
	cm, ok := LookupCodePage(codePageName)
	if !ok {
		return "", false
	}
	enc := cm.NewEncoder()
	out, _, err := transformToCodePage(enc, s)
	return out, err == nil
}

func transformToCodePage(enc *encoding.Encoder, s string) (string, error) {
	var sb strings.Builder
	for _, r := range s {
		b, err := enc.Bytes([]byte(string(r)))
		if err != nil {
			sb.WriteByte('?')
			continue
		}
		sb.Write(b)
	}
	return sb.String(), nil
}

// ConvertCodePageToUTF8 decodes a legacy-code-page byte string into UTF-8.
func ConvertCodePageToUTF8(b []byte, codePageName string) (string, bool) {
	cm, ok := LookupCodePage(codePageName)
	if !ok {
		return "", false
	}
	dec := cm.NewDecoder()
	out, err := dec.Bytes(b)
	if err != nil {
		return "", false
	}
	return string(out), true
}
