package score

import (
	"math"
	"strings"
	"time"

	"pulsefeed/internal/model"
	"pulsefeed/internal/pref"
)

// ReadPenalty is the flat deduction applied to articles already read.
const ReadPenalty = 50

// Breakdown shows how each component contributed to the final score.
type Breakdown struct {
	Recency   int `json:"recency"`
	Relevance int `json:"relevance"`
	Diversity int `json:"diversity"`
	Penalty   int `json:"penalty"`
	Total     int `json:"total"`
}

// Score computes the ranking score for an article against a preference
// snapshot. Deterministic and pure: for a fixed article and snapshot the
// result never changes. The total is the unclamped sum of the components,
// roughly -50 to 100.
func Score(a model.Article, snap pref.Snapshot) int {
	return ScoreWithBreakdown(a, snap).Total
}

// ScoreWithBreakdown computes the score with per-component details.
func ScoreWithBreakdown(a model.Article, snap pref.Snapshot) Breakdown {
	b := Breakdown{
		Recency:   recencyScore(a, snap.TakenAt),
		Relevance: relevanceScore(a, snap.Interests),
		Diversity: diversityScore(a, snap),
	}
	if snap.IsRead(a.ID) {
		b.Penalty = -ReadPenalty
	}
	b.Total = b.Recency + b.Relevance + b.Diversity + b.Penalty
	return b
}

// recencyScore rewards newer content on a 0-40 step scale. Articles with
// no temporal signal get a neutral 20.
func recencyScore(a model.Article, now time.Time) int {
	hours, ok := a.HoursSince(now)
	if !ok {
		return 20
	}
	switch {
	case hours < 1:
		return 40
	case hours < 6:
		return 30
	case hours < 24:
		return 20
	case hours < 48:
		return 10
	default:
		return 5
	}
}

// relevanceScore scales the fraction of declared interests found in the
// article text to 0-40. With no declared interests every article gets a
// neutral 20; with interests declared but none matching, 0.
func relevanceScore(a model.Article, interests []string) int {
	if len(interests) == 0 {
		return 20
	}

	text := strings.ToLower(a.Title + " " + a.Summary + " " + a.Category)
	hits := 0
	for _, keyword := range interests {
		if strings.Contains(text, strings.ToLower(keyword)) {
			hits++
		}
	}
	if hits == 0 {
		return 0
	}
	fraction := float64(hits) / float64(len(interests))
	return int(math.Round(fraction * 40))
}

// diversityScore discourages category monoculture: the more often the
// article's category already appears in the recent-category queue, the
// lower the score. Articles without a category, or an empty queue, are
// neutral.
func diversityScore(a model.Article, snap pref.Snapshot) int {
	if a.Category == "" || len(snap.RecentCategories) == 0 {
		return 10
	}
	switch snap.CategoryCount(a.Category) {
	case 0:
		return 20
	case 1:
		return 15
	case 2:
		return 10
	case 3:
		return 5
	default:
		return 0
	}
}
