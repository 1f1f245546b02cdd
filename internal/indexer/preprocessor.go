package indexer

import (
	"strings"
	"unicode"
)

// Preprocess normalizes extracted knowledge text before chunking. Control
// characters, byte order marks, and soft hyphens left by PDF and DOCX
// extraction are dropped; whitespace runs become a single space.
// Zero-width joiners are kept because Devanagari conjuncts depend on them.
func Preprocess(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	pendingSpace := false
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = b.Len() > 0
		case r == '\uFEFF' || r == '\u00AD' || unicode.IsControl(r):
		default:
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}
