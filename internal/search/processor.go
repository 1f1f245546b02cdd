package search

import (
	"regexp"
	"strconv"
	"strings"
)

// stationPatterns are tried in order; the first match wins.
var stationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:polling station|booth|station)(?:\s+(?:number|no\.?|#))?\s*#?\s*(\d{1,4})\b`),
	regexp.MustCompile(`(?:^|\s)(?:number|no\.?|#)\s*(\d{1,4})\b`),
	regexp.MustCompile(`^(\d{1,3})$`),
}

// ParseStationNumber extracts a station number from a booth query.
// The query is lowercased and trimmed first. Returns false when the query is
// not a station-number lookup.
func ParseStationNumber(query string) (int, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0, false
	}
	for _, re := range stationPatterns {
		m := re.FindStringSubmatch(q)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
