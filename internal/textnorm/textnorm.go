// Package textnorm produces the canonical text form shared by clustering and naming.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// EmptyPlaceholder stands in for items that have no text at all, so every item
// still maps to a non-degenerate document.
const EmptyPlaceholder = "empty"

// Normalize composes s to NFC, then removes every rune that is not a Latin or
// Cyrillic letter, a digit or whitespace, lowercases, collapses whitespace runs
// to a single space and trims.
//
// Removal happens before whitespace is collapsed, so "a ! b" becomes "a b" and
// Normalize(Normalize(s)) == Normalize(s). The result never has more runes than
// the NFC form of s.
func Normalize(s string) string {
	s = norm.NFC.String(s)

	var b strings.Builder
	b.Grow(len(s))

	pendingSpace := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = true
		case keep(r):
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(unicode.ToLower(r))
		}
	}

	return b.String()
}

func keep(r rune) bool {
	if unicode.IsDigit(r) {
		return true
	}
	if !unicode.IsLetter(r) {
		return false
	}
	return unicode.In(r, unicode.Latin, unicode.Cyrillic)
}

// ItemText joins a title and body the way every consumer sees an item.
func ItemText(title, body string) string {
	return strings.TrimSpace(title + " " + body)
}

// Document returns the normalized text of an item, substituting EmptyPlaceholder
// when nothing survives normalization. The second value reports whether the item
// had any text of its own.
func Document(title, body string) (string, bool) {
	doc := Normalize(ItemText(title, body))
	if doc == "" {
		return EmptyPlaceholder, false
	}
	return doc, true
}
