package ranking

import (
	"strings"
)

// TitleScorer rewards a full-query substring match and per-token matches in the title.
type TitleScorer struct {
	exact, token float64
}

// NewTitleScorer creates a TitleScorer from config.
func NewTitleScorer(c *RankingConfig) *TitleScorer {
	return &TitleScorer{exact: c.TitleExactScore, token: c.TitleTokenScore}
}

func (s *TitleScorer) Name() string { return "title" }

func (s *TitleScorer) Score(ctx *ScoringContext) float64 {
	return fieldScore(ctx.Query, strings.ToLower(ctx.Booth.Title), s.exact, s.token)
}

// LandmarkScorer rewards matches against the landmark description.
type LandmarkScorer struct {
	exact, token float64
}

// NewLandmarkScorer creates a LandmarkScorer from config.
func NewLandmarkScorer(c *RankingConfig) *LandmarkScorer {
	return &LandmarkScorer{exact: c.LandmarkExactScore, token: c.LandmarkTokenScore}
}

func (s *LandmarkScorer) Name() string { return "landmark" }

func (s *LandmarkScorer) Score(ctx *ScoringContext) float64 {
	return fieldScore(ctx.Query, strings.ToLower(ctx.Booth.Landmark), s.exact, s.token)
}

// TagScorer awards the exact bonus once if any tag contains the query, and the
// token bonus once per token that any tag contains.
type TagScorer struct {
	exact, token float64
}

// NewTagScorer creates a TagScorer from config.
func NewTagScorer(c *RankingConfig) *TagScorer {
	return &TagScorer{exact: c.TagExactScore, token: c.TagTokenScore}
}

func (s *TagScorer) Name() string { return "tag" }

func (s *TagScorer) Score(ctx *ScoringContext) float64 {
	if len(ctx.Booth.Tags) == 0 || ctx.Query.Normalized == "" {
		return 0
	}
	tags := make([]string, len(ctx.Booth.Tags))
	for i, t := range ctx.Booth.Tags {
		tags[i] = strings.ToLower(t)
	}
	var score float64
	for _, t := range tags {
		if strings.Contains(t, ctx.Query.Normalized) {
			score += s.exact
			break
		}
	}
	for _, term := range ctx.Query.Terms {
		for _, t := range tags {
			if strings.Contains(t, term) {
				score += s.token
				break
			}
		}
	}
	return score
}

// AreaScorer matches the localized area name inside the original query. Case is
// preserved because the area is usually in a non-Latin script.
type AreaScorer struct {
	score float64
}

// NewAreaScorer creates an AreaScorer from config.
func NewAreaScorer(c *RankingConfig) *AreaScorer {
	return &AreaScorer{score: c.AreaMatchScore}
}

func (s *AreaScorer) Name() string { return "area" }

func (s *AreaScorer) Score(ctx *ScoringContext) float64 {
	area := strings.TrimSpace(ctx.Booth.AreaLocalized)
	if area == "" {
		return 0
	}
	if strings.Contains(ctx.Query.Original, area) {
		return s.score
	}
	return 0
}

// ContentScorer is a raw term-frequency signal over the booth content.
type ContentScorer struct {
	weight float64
}

// NewContentScorer creates a ContentScorer from config.
func NewContentScorer(c *RankingConfig) *ContentScorer {
	return &ContentScorer{weight: c.ContentTermWeight}
}

func (s *ContentScorer) Name() string { return "content" }

func (s *ContentScorer) Score(ctx *ScoringContext) float64 {
	content := strings.ToLower(ctx.Booth.Content)
	if content == "" {
		return 0
	}
	var score float64
	for _, term := range ctx.Query.Terms {
		score += s.weight * float64(strings.Count(content, term))
	}
	return score
}

// fieldScore applies the exact-substring and per-token bonuses to a lowercased field.
func fieldScore(q *AnalyzedQuery, field string, exact, token float64) float64 {
	if field == "" || q.Normalized == "" {
		return 0
	}
	var score float64
	if strings.Contains(field, q.Normalized) {
		score += exact
	}
	for _, term := range q.Terms {
		if strings.Contains(field, term) {
			score += token
		}
	}
	return score
}
