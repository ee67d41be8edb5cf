package ui

import (
	"sort"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// consoleEncodings are the legacy code pages a Windows console commonly
// runs with. UTF-8 needs no check and is not listed.
var consoleEncodings = map[string]*charmap.Charmap{
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
	"iso-8859-1":   charmap.ISO8859_1,
	"latin-1":      charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"cp437":        charmap.CodePage437,
	"ibm437":       charmap.CodePage437,
	"cp850":        charmap.CodePage850,
	"ibm850":       charmap.CodePage850,
}

// LookupEncoding returns the encoder for a console encoding name. A nil
// encoder with ok == true means UTF-8, which can print anything.
func LookupEncoding(name string) (enc *encoding.Encoder, ok bool) {
	switch n := strings.ToLower(strings.TrimSpace(name)); n {
	case "", "utf-8", "utf8":
		return nil, true
	default:
		cm, found := consoleEncodings[n]
		if !found {
			return nil, false
		}
		return cm.NewEncoder(), true
	}
}

// EncodingNames lists the accepted encoding names.
func EncodingNames() []string {
	names := []string{"utf-8"}
	for n := range consoleEncodings {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
