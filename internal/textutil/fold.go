package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// asciiFolder decomposes accented characters and strips the combining marks,
// so "Rivière" folds to "Riviere".
var asciiFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldASCII lowercases value, replaces spaces with underscores, and reduces
// the result to ASCII. Accents are decomposed and dropped; code points with
// no ASCII equivalent are removed silently.
func FoldASCII(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	value = strings.ReplaceAll(value, " ", "_")

	folded, _, err := transform.String(asciiFolder, value)
	if err != nil {
		folded = value
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
