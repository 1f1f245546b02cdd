package ranking

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hyperjump/votesathi/pkg/utils"
)

// QueryAnalyzer splits booth queries into scoring tokens.
type QueryAnalyzer struct {
	minTokenLength int
}

// NewQueryAnalyzer creates a QueryAnalyzer that keeps tokens longer than minTokenLength runes.
func NewQueryAnalyzer(minTokenLength int) *QueryAnalyzer {
	return &QueryAnalyzer{minTokenLength: minTokenLength}
}

// Analyze parses a query string and returns an AnalyzedQuery.
func (qa *QueryAnalyzer) Analyze(query string) *AnalyzedQuery {
	normalized := utils.NormalizeQuery(query)
	result := &AnalyzedQuery{
		Original:   query,
		Normalized: normalized,
		Terms:      []string{},
	}
	for _, tok := range strings.FieldsFunc(normalized, isSeparator) {
		if utf8.RuneCountInString(tok) > qa.minTokenLength {
			result.Terms = append(result.Terms, tok)
		}
	}
	return result
}

// isSeparator splits on anything that is not part of a word. Combining marks
// are kept so Devanagari tokens stay intact.
func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsMark(r)
}
