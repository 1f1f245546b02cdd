package models

// BoothRecord is one polling station. Records are immutable after the dataset loads.
type BoothRecord struct {
	ID               string   `json:"id"`
	StationNumber    int      `json:"station_number"`
	Title            string   `json:"title"`
	Content          string   `json:"content"`
	ContentLocalized string   `json:"content_localized,omitempty"`
	Landmark         string   `json:"landmark"`
	AreaLocalized    string   `json:"area_localized,omitempty"`
	Lat              float64  `json:"lat"`
	Lng              float64  `json:"lng"`
	Tags             []string `json:"tags,omitempty"`
}

// ScoredBooth pairs a booth with its relevance score for a single search.
type ScoredBooth struct {
	Booth BoothRecord `json:"booth"`
	Score float64     `json:"score"`
}
