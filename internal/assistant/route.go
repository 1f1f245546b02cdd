package assistant

import (
	"fmt"
	"strings"

	"github.com/hyperjump/votesathi/internal/booths"
	"github.com/hyperjump/votesathi/internal/models"
	"github.com/hyperjump/votesathi/internal/ranking"
	"github.com/hyperjump/votesathi/internal/search"
	"github.com/hyperjump/votesathi/pkg/utils"
)

var boothKeywords = []string{
	"booth", "polling station", "polling centre", "polling center",
	"where do i vote", "where to vote", "where can i vote", "voting centre",
	"मतदान केंद्र", "बूथ", "कहाँ वोट", "कहां वोट", "पोलिंग",
}

// Form numbers ("form no. 6") look like station numbers. Matched as whole
// tokens so "information" or "platform" do not count.
var formWords = map[string]struct{}{
	"form": {}, "forms": {}, "फॉर्म": {}, "फ़ॉर्म": {}, "प्रपत्र": {},
}

var tokenizer = ranking.NewQueryAnalyzer(0)

// ClassifyRoute decides which pipeline answers a text query: the booth
// engine for booth-location questions, retrieval otherwise.
func ClassifyRoute(message string) models.RouterType {
	q := utils.NormalizeQuery(message)
	if containsAny(q, boothKeywords) {
		return models.RouteBooth
	}
	if hasFormWord(q) {
		return models.RouteRAG
	}
	if _, ok := search.ParseStationNumber(q); ok {
		return models.RouteBooth
	}
	return models.RouteRAG
}

func hasFormWord(q string) bool {
	for _, t := range tokenizer.Analyze(q).Terms {
		if _, ok := formWords[t]; ok {
			return true
		}
	}
	return false
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func boothIntro(locale string, n int) string {
	if locale == "hi" {
		return fmt.Sprintf("आपकी खोज से मेल खाते %d मतदान केंद्र:", n)
	}
	if n == 1 {
		return "Here is the polling station that matches your search:"
	}
	return fmt.Sprintf("Here are %d polling stations that match your search:", n)
}

// boothAnswer turns booth hits into a generation candidate.
func boothAnswer(records []models.BoothRecord, locale string, confidence float64) *models.GenerationResult {
	sources := make([]models.Source, len(records))
	for i, b := range records {
		sources[i] = models.Source{
			ID:    b.ID,
			Title: b.Title,
			URL:   booths.DirectionsURL(b.Lat, b.Lng),
		}
	}
	return &models.GenerationResult{
		Text:       boothIntro(locale, len(records)) + "\n\n" + booths.FormatList(records, locale),
		Confidence: confidence,
		Sources:    sources,
	}
}
