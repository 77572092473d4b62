package model

import "time"

// Article is the canonical article shape used by scoring and assembly.
// Providers normalize their wire formats into this type at the boundary;
// once ingested an Article is never mutated.
type Article struct {
	ID       string
	Title    string
	Summary  string
	Category string
	Source   string
	URL      string
	Image    string

	// Temporal signal. Providers set either PublishedAt or an explicit
	// hours-since-publish value; both may be absent.
	PublishedAt    time.Time
	PublishedHours float64
	HasHours       bool
}

// HoursSince returns the article's age in hours relative to now.
// The second return value is false when the article carries no
// temporal signal at all.
func (a Article) HoursSince(now time.Time) (float64, bool) {
	if a.HasHours {
		return a.PublishedHours, true
	}
	if a.PublishedAt.IsZero() {
		return 0, false
	}
	hours := now.Sub(a.PublishedAt).Hours()
	if hours < 0 {
		hours = 0
	}
	return hours, true
}
