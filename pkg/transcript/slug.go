package transcript

import (
	"strings"
	"unicode"
)

const maxSlugLength = 80

// Slug turns a title into a lowercase file name stem made of letters,
// digits and single dashes. It returns "" when nothing usable remains.
func Slug(title string) string {
	var b strings.Builder

	dash := false

	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)

			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')

			dash = true
		}
	}

	slug := []rune(strings.TrimSuffix(b.String(), "-"))
	if len(slug) > maxSlugLength {
		slug = slug[:maxSlugLength]
	}

	return strings.TrimSuffix(string(slug), "-")
}

// TitleFromFilename derives a readable title from a file name stem.
func TitleFromFilename(stem string) string {
	words := strings.FieldsFunc(stem, func(r rune) bool {
		return r == '-' || r == '_' || unicode.IsSpace(r)
	})

	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}

	return strings.Join(words, " ")
}
