// Package slug folds display names into URL-safe identifiers.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Make returns a lower-case, dash separated ASCII slug for s.
// Accents are stripped; any other non-alphanumeric run becomes a single dash.
// The result may be empty when s carries no foldable letters or digits.
func Make(s string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		s,
	)
	if err != nil {
		folded = s
	}

	var (
		b       strings.Builder
		pending bool
	)

	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}

			b.WriteRune(r)
			pending = false

			continue
		}

		pending = true
	}

	return b.String()
}
