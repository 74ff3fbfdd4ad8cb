// Package fuzzy folds free text into comparison keys.
package fuzzy

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalizer maps visually equivalent names, e.g. "Björk!" and "bjork", to one key.
type Normalizer struct {
	keep func(rune) bool
}

func NewNormalizer() *Normalizer {
	return &Normalizer{
		keep: func(r rune) bool { return unicode.IsLetter(r) || unicode.IsNumber(r) },
	}
}

// Normalize strips accents, lower-cases and collapses every run of other
// characters into a single space.
func (n *Normalizer) Normalize(text string) string {
	// A transformer carries state, so each call builds its own chain.
	folded, _, err := transform.String(transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn))), text)
	if err != nil {
		folded = text
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingSpace := false
	for _, r := range folded {
		if !n.keep(r) {
			pendingSpace = b.Len() > 0
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}
