package ranking

import (
	"math"
	"testing"

	"github.com/hyperjump/votesathi/internal/models"
)

func sampleBooth() models.BoothRecord {
	return models.BoothRecord{
		ID:            "b1",
		StationNumber: 12,
		Title:         "Government Primary School",
		Landmark:      "Near Shiv Temple",
		Tags:          []string{"school", "ward 12"},
		AreaLocalized: "शिवाजी नगर",
		Content:       "Government primary school building, room 1. School gate on main road.",
	}
}

func TestNewRanker(t *testing.T) {
	ranker := NewRanker(nil)
	if ranker == nil || ranker.config == nil {
		t.Fatal("Expected non-nil ranker and config")
	}
	if ranker.config.TitleExactScore != 10 {
		t.Errorf("Expected default TitleExactScore 10, got %v", ranker.config.TitleExactScore)
	}

	ranker = NewRanker(&RankingConfig{TitleExactScore: 20})
	if ranker.config.TitleExactScore != 20 {
		t.Errorf("Expected TitleExactScore 20, got %v", ranker.config.TitleExactScore)
	}
	if ranker.config.AreaMatchScore != 9 {
		t.Errorf("Expected AreaMatchScore default 9, got %v", ranker.config.AreaMatchScore)
	}
}

func TestQueryAnalyzer_Analyze(t *testing.T) {
	qa := NewQueryAnalyzer(2)
	q := qa.Analyze("  Booth in  शिवाजी नगर? ")
	if q.Normalized != "booth in शिवाजी नगर?" {
		t.Errorf("Normalized = %q", q.Normalized)
	}
	want := []string{"booth", "शिवाजी", "नगर"}
	if len(q.Terms) != len(want) {
		t.Fatalf("Terms = %v, want %v", q.Terms, want)
	}
	for i := range want {
		if q.Terms[i] != want[i] {
			t.Errorf("Terms[%d] = %q, want %q", i, q.Terms[i], want[i])
		}
	}
}

func TestRanker_RankWithBreakdown(t *testing.T) {
	ranker := NewRanker(nil)
	booth := sampleBooth()
	b := ranker.RankWithBreakdown(ranker.AnalyzeQuery("primary school"), &booth)

	want := map[string]float64{
		"title":    16,  // exact +10, two tokens +3 each
		"landmark": 0,
		"tag":      2,   // "school" token
		"area":     0,
		"content":  1.5, // primary x1, school x2
	}
	for name, v := range want {
		if math.Abs(b.Signals[name]-v) > 1e-9 {
			t.Errorf("signal %s = %v, want %v", name, b.Signals[name], v)
		}
	}
	if math.Abs(b.FinalScore-19.5) > 1e-9 {
		t.Errorf("FinalScore = %v, want 19.5", b.FinalScore)
	}
	if got := ranker.Rank(ranker.AnalyzeQuery("primary school"), &booth); math.Abs(got-b.FinalScore) > 1e-9 {
		t.Errorf("Rank = %v, breakdown = %v", got, b.FinalScore)
	}
}

func TestRanker_AreaUsesOriginalQuery(t *testing.T) {
	ranker := NewRanker(nil)
	booth := models.BoothRecord{ID: "a", Title: "Hall", AreaLocalized: "शिवाजी नगर"}
	score := ranker.Rank(ranker.AnalyzeQuery("booth in शिवाजी नगर"), &booth)
	if score != 9 {
		t.Errorf("area score = %v, want 9", score)
	}
	score = ranker.Rank(ranker.AnalyzeQuery("booth in shivaji nagar"), &booth)
	if score != 0 {
		t.Errorf("transliterated query should not match area, got %v", score)
	}
}

func TestRanker_TagExactCountsOnce(t *testing.T) {
	ranker := NewRanker(nil)
	booth := models.BoothRecord{ID: "t", Tags: []string{"community hall", "hall"}}
	// exact "hall" in either tag counts once (+7); token "hall" counts once (+2)
	if got := ranker.Rank(ranker.AnalyzeQuery("hall"), &booth); got != 9 {
		t.Errorf("tag score = %v, want 9", got)
	}
}

func TestRanker_RankBooths(t *testing.T) {
	ranker := NewRanker(nil)
	booths := []models.BoothRecord{
		{ID: "none", Title: "Panchayat Bhawan"},
		{ID: "first", Title: "Community Hall"},
		{ID: "second", Title: "Community Hall"},
		{ID: "best", Title: "Community Hall", Landmark: "Opposite community hall park"},
	}
	results := ranker.RankBooths("community hall", booths)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Booth.ID != "best" {
		t.Errorf("expected multi-signal booth first, got %s", results[0].Booth.ID)
	}
	if results[1].Booth.ID != "first" || results[2].Booth.ID != "second" {
		t.Errorf("ties should keep corpus order, got %s, %s", results[1].Booth.ID, results[2].Booth.ID)
	}
	for _, r := range results {
		if r.Score <= 0 {
			t.Errorf("non-positive score returned for %s", r.Booth.ID)
		}
	}
}

func TestRanker_NoMatches(t *testing.T) {
	ranker := NewRanker(nil)
	booths := []models.BoothRecord{sampleBooth()}
	if got := ranker.RankBooths("xyzzy", booths); len(got) != 0 {
		t.Errorf("expected no results, got %d", len(got))
	}
}

func TestRanker_RankBoothsWithBreakdown(t *testing.T) {
	ranker := NewRanker(nil)
	results := ranker.RankBoothsWithBreakdown("temple", []models.BoothRecord{sampleBooth()})
	if len(results) != 1 || results[0].Breakdown == nil {
		t.Fatalf("expected one result with breakdown, got %+v", results)
	}
	if results[0].Breakdown.Signals["landmark"] != 10 {
		t.Errorf("landmark signal = %v, want 10", results[0].Breakdown.Signals["landmark"])
	}
}

func TestTopN(t *testing.T) {
	results := []*RankedResult{{Score: 3}, {Score: 2}, {Score: 1}}
	if len(TopN(results, 2)) != 2 {
		t.Error("TopN(2) should return 2")
	}
	if len(TopN(results, 10)) != 3 {
		t.Error("TopN(10) should return all")
	}
	if len(TopN(results, -1)) != 0 {
		t.Error("TopN(-1) should return none")
	}
}
