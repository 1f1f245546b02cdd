package ranking

// RankingConfig holds the additive weights for booth scoring.
type RankingConfig struct {
	TitleExactScore    float64 `yaml:"title_exact_score"`    // default: 10
	TitleTokenScore    float64 `yaml:"title_token_score"`    // default: 3
	LandmarkExactScore float64 `yaml:"landmark_exact_score"` // default: 8
	LandmarkTokenScore float64 `yaml:"landmark_token_score"` // default: 2
	TagExactScore      float64 `yaml:"tag_exact_score"`      // default: 7
	TagTokenScore      float64 `yaml:"tag_token_score"`      // default: 2
	AreaMatchScore     float64 `yaml:"area_match_score"`     // default: 9
	ContentTermWeight  float64 `yaml:"content_term_weight"`  // default: 0.5

	// MinTokenLength is the rune count a token must exceed to be scored.
	MinTokenLength int `yaml:"min_token_length"` // default: 2
}

// DefaultRankingConfig returns the default ranking configuration.
func DefaultRankingConfig() *RankingConfig {
	return &RankingConfig{
		TitleExactScore:    10,
		TitleTokenScore:    3,
		LandmarkExactScore: 8,
		LandmarkTokenScore: 2,
		TagExactScore:      7,
		TagTokenScore:      2,
		AreaMatchScore:     9,
		ContentTermWeight:  0.5,
		MinTokenLength:     2,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *RankingConfig) ApplyDefaults() {
	defaults := DefaultRankingConfig()

	if c.TitleExactScore == 0 {
		c.TitleExactScore = defaults.TitleExactScore
	}
	if c.TitleTokenScore == 0 {
		c.TitleTokenScore = defaults.TitleTokenScore
	}
	if c.LandmarkExactScore == 0 {
		c.LandmarkExactScore = defaults.LandmarkExactScore
	}
	if c.LandmarkTokenScore == 0 {
		c.LandmarkTokenScore = defaults.LandmarkTokenScore
	}
	if c.TagExactScore == 0 {
		c.TagExactScore = defaults.TagExactScore
	}
	if c.TagTokenScore == 0 {
		c.TagTokenScore = defaults.TagTokenScore
	}
	if c.AreaMatchScore == 0 {
		c.AreaMatchScore = defaults.AreaMatchScore
	}
	if c.ContentTermWeight == 0 {
		c.ContentTermWeight = defaults.ContentTermWeight
	}
	if c.MinTokenLength == 0 {
		c.MinTokenLength = defaults.MinTokenLength
	}
}
