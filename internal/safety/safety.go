// Package safety screens candidate answers before they are shown to citizens.
package safety

import (
	"context"
	"regexp"
	"strings"
	"unicode"
)

// Categories reported by RuleChecker.
const (
	CategoryPII      = "pii"
	CategoryPartisan = "partisan"
	CategoryHarm     = "harm"
)

// Result is the outcome of a safety check. SafeText is what may be shown:
// the candidate itself when not flagged, otherwise a redacted or neutral replacement.
type Result struct {
	Flagged    bool     `json:"flagged"`
	SafeText   string   `json:"safe_text"`
	Categories []string `json:"categories,omitempty"`
}

// Checker screens a candidate answer given the query that produced it.
type Checker interface {
	Check(ctx context.Context, candidate, query string) (*Result, error)
}

var (
	aadhaarRe = regexp.MustCompile(`\b\d{4}[ -]?\d{4}[ -]?\d{4}\b`)
	epicRe    = regexp.MustCompile(`\b[A-Z]{3}\d{7}\b`)
	phoneRe   = regexp.MustCompile(`(?:\+91[ -]?|\b0)?\b[6-9]\d{4}[ -]?\d{5}\b`)
	emailRe   = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
)

var partisanPhrases = []string{
	"vote for", "don't vote for", "do not vote for", "you should vote",
	"best party", "best candidate", "worst party", "support the party",
	"वोट दें", "को वोट", "सबसे अच्छी पार्टी",
}

var harmPhrases = []string{
	"booth capturing", "capture the booth", "rig the election", "bogus voting",
	"fake vote", "बूथ कैप्चरिंग", "फर्जी वोट",
}

var harmWordsRe = regexp.MustCompile(`\b(kill|bomb|burn|attack|threaten|weapon)\b`)

const (
	neutralEN = "I can only share neutral, factual information about voting and elections. " +
		"I cannot recommend any party or candidate. For official help, call the Voter Helpline 1950."
	neutralHI = "मैं केवल मतदान और चुनाव से जुड़ी तटस्थ, तथ्यात्मक जानकारी दे सकता हूँ। " +
		"मैं किसी पार्टी या उम्मीदवार की सिफ़ारिश नहीं कर सकता। आधिकारिक सहायता के लिए वोटर हेल्पलाइन 1950 पर कॉल करें।"
	harmEN = "I cannot help with that. If you know of electoral malpractice or a threat to voters, " +
		"report it on the cVIGIL app or call the Voter Helpline 1950."
	harmHI = "मैं इसमें मदद नहीं कर सकता। चुनावी गड़बड़ी या मतदाताओं को खतरे की सूचना cVIGIL ऐप या वोटर हेल्पलाइन 1950 पर दें।"
)

// RuleChecker flags identity-number leaks, partisan persuasion, and harmful
// content using fixed patterns.
type RuleChecker struct{}

// NewRuleChecker returns a RuleChecker.
func NewRuleChecker() *RuleChecker {
	return &RuleChecker{}
}

// Check never returns an error.
func (c *RuleChecker) Check(_ context.Context, candidate, query string) (*Result, error) {
	lowerCandidate := strings.ToLower(candidate)
	lowerQuery := strings.ToLower(query)
	hindi := containsDevanagari(query) || (query == "" && containsDevanagari(candidate))

	if isHarmful(lowerQuery) || isHarmful(lowerCandidate) {
		return &Result{Flagged: true, SafeText: pick(hindi, harmHI, harmEN), Categories: []string{CategoryHarm}}, nil
	}
	if containsAny(lowerCandidate, partisanPhrases) {
		return &Result{Flagged: true, SafeText: pick(hindi, neutralHI, neutralEN), Categories: []string{CategoryPartisan}}, nil
	}
	if redacted, changed := RedactIdentifiers(candidate); changed {
		return &Result{Flagged: true, SafeText: redacted, Categories: []string{CategoryPII}}, nil
	}
	return &Result{SafeText: candidate}, nil
}

// RedactIdentifiers masks Aadhaar, EPIC, phone numbers, and email addresses in text.
func RedactIdentifiers(text string) (string, bool) {
	out := aadhaarRe.ReplaceAllString(text, "[AADHAAR_REDACTED]")
	out = epicRe.ReplaceAllString(out, "[EPIC_REDACTED]")
	out = phoneRe.ReplaceAllString(out, "[PHONE_REDACTED]")
	out = emailRe.ReplaceAllString(out, "[EMAIL_REDACTED]")
	return out, out != text
}

func isHarmful(s string) bool {
	return containsAny(s, harmPhrases) || harmWordsRe.MatchString(s)
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func containsDevanagari(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Devanagari, r) {
			return true
		}
	}
	return false
}

func pick(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}
