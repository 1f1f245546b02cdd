package utils

import "strings"

// ExtractJSON returns the JSON object embedded in model output. A fenced code
// block (```json or ```) is unwrapped first; otherwise the text between the
// first '{' and the last '}' is returned. Returns "" when no object is present.
func ExtractJSON(text string) string {
	s := strings.TrimSpace(text)
	if start := strings.Index(s, "```"); start >= 0 {
		body := s[start+3:]
		if nl := strings.IndexByte(body, '\n'); nl >= 0 {
			lang := strings.TrimSpace(body[:nl])
			if lang == "" || strings.EqualFold(lang, "json") {
				body = body[nl+1:]
			}
		} else {
			body = strings.TrimPrefix(body, "json")
		}
		if end := strings.Index(body, "```"); end >= 0 {
			body = body[:end]
		}
		s = strings.TrimSpace(body)
	}
	first := strings.IndexByte(s, '{')
	last := strings.LastIndexByte(s, '}')
	if first < 0 || last < first {
		return ""
	}
	return s[first : last+1]
}
