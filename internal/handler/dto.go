package handler

import "pulsefeed/internal/score"

type RankedArticleResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Summary     string          `json:"summary,omitempty"`
	Category    string          `json:"category,omitempty"`
	Source      string          `json:"source,omitempty"`
	URL         string          `json:"url"`
	Image       string          `json:"image,omitempty"`
	PublishedAt string          `json:"published_at,omitempty"`
	Score       int             `json:"score"`
	Breakdown   score.Breakdown `json:"score_breakdown"`
}

type FeedResponse struct {
	Articles []RankedArticleResponse `json:"articles"`
	Count    int                     `json:"count"`
	State    string                  `json:"state"`
	HasNext  bool                    `json:"has_next"`
	Error    string                  `json:"error,omitempty"`
}

type FeedStatusResponse struct {
	Count   int    `json:"count"`
	State   string `json:"state"`
	HasNext bool   `json:"has_next"`
}

type InterestsRequest struct {
	Interests []string `json:"interests"`
}

type PreferencesResponse struct {
	Interests        []string `json:"interests"`
	ReadCount        int      `json:"read_count"`
	RecentCategories []string `json:"recent_categories"`
}
