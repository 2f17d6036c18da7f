package core

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// byteOrderMark is the UTF-8 BOM some spreadsheet exports prepend.
const byteOrderMark = "\uFEFF"

// foldedLetters covers letters that have no canonical decomposition.
var foldedLetters = strings.NewReplacer(
	"ß", "ss",
	"æ", "ae",
	"œ", "oe",
	"ø", "o",
	"ł", "l",
	"đ", "d",
	"ð", "d",
	"þ", "th",
	"ı", "i",
)

// NormalizeKey turns a display column label into its canonical key:
// lower case, accent-free ASCII, words joined by single underscores.
//
//	NormalizeKey("Média Gols")  // "media_gols"
//	NormalizeKey(" Odd-Casa ")  // "odd_casa"
//
// It never fails and is idempotent.
func NormalizeKey(label string) string {
	s := strings.TrimPrefix(label, byteOrderMark)
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(`"`, "", "'", "").Replace(s)
	s = transliterate(s)

	var b strings.Builder
	b.Grow(len(s))
	lastUnderscore := true // suppresses leading underscores
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		case r == '_' || r == '-' || unicode.IsSpace(r):
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	return strings.TrimRight(b.String(), "_")
}

// transliterate maps accented and special letters to their closest ASCII
// form. Characters without an ASCII equivalent are left for the caller to
// drop.
func transliterate(s string) string {
	// Chained transformers keep state, so each call builds its own.
	stripAccents := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(stripAccents, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(foldedLetters.Replace(out))
}

// NormalizeKeys applies NormalizeKey to each label.
func NormalizeKeys(labels []string) []string {
	keys := make([]string, len(labels))
	for i, l := range labels {
		keys[i] = NormalizeKey(l)
	}
	return keys
}
