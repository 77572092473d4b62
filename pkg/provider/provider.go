package provider

import (
	"context"

	"pulsefeed/internal/model"
)

// Cursor is a continuation token for the next page. Only providers mint
// and consume cursors; the paginator carries them opaquely.
type Cursor struct {
	Page int `json:"page"`
}

// Page is one batch of articles plus the cursor for the next page.
// A nil Next signals end-of-feed.
type Page struct {
	Articles []model.Article `json:"articles"`
	Next     *Cursor         `json:"next"`
}

// Provider fetches one page of candidate articles from an upstream
// content source. A nil cursor requests the first page. Implementations
// must normalize and validate articles at this boundary: malformed items
// are dropped, never propagated.
type Provider interface {
	FetchPage(ctx context.Context, cursor *Cursor, interests []string) (*Page, error)
	Name() string
}
