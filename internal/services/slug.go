package services

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Letters that do not decompose into an ASCII base plus a combining mark.
var slugReplacer = strings.NewReplacer("ı", "i", "İ", "i", "ß", "ss", "æ", "ae", "ø", "o")

// Slugify turns a title into a URL path segment: "Çocuk Gelişimi 101"
// becomes "cocuk-gelisimi-101".
func Slugify(title string) string {
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	ascii, _, err := transform.String(stripMarks, slugReplacer.Replace(title))
	if err != nil {
		ascii = title
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(ascii) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_':
			pendingDash = true
		}
	}
	return b.String()
}
