package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pulsefeed/internal/model"
)

// ErrUpstreamFailure is returned when the upstream reports success: false
// or answers with a non-2xx status. Nothing from such a response is
// ingested.
var ErrUpstreamFailure = errors.New("provider: upstream reported failure")

// HTTPProvider speaks the upstream content-provider wire contract:
// a GET with a 1-indexed page number and a comma-separated interest list,
// answered by {articles, nextPage, success}.
type HTTPProvider struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPProvider(baseURL string) *HTTPProvider {
	return &HTTPProvider{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *HTTPProvider) Name() string {
	return "HTTP"
}

func (p *HTTPProvider) FetchPage(ctx context.Context, cursor *Cursor, interests []string) (*Page, error) {
	page := 1
	if cursor != nil {
		page = cursor.Page
	}

	reqURL := fmt.Sprintf("%s?page=%d&interests=%s",
		p.baseURL, page, url.QueryEscape(strings.Join(interests, ",")))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("feed request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrUpstreamFailure, resp.StatusCode)
	}

	var raw feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("feed decode: %w", err)
	}

	if !raw.Success {
		return nil, ErrUpstreamFailure
	}

	articles := make([]model.Article, 0, len(raw.Articles))
	for _, item := range raw.Articles {
		a, ok := normalizeItem(item)
		if !ok {
			slog.Warn("dropping malformed article", "provider", p.Name(), "id", item.ID, "url", item.URL)
			continue
		}
		articles = append(articles, a)
	}

	// A page where every item was malformed is a fetch failure, not an
	// empty page.
	if len(articles) == 0 && len(raw.Articles) > 0 {
		return nil, fmt.Errorf("%w: all %d articles malformed", ErrUpstreamFailure, len(raw.Articles))
	}

	var next *Cursor
	if raw.NextPage != nil {
		next = &Cursor{Page: *raw.NextPage}
	}

	return &Page{Articles: articles, Next: next}, nil
}

type feedResponse struct {
	Articles []feedItem `json:"articles"`
	NextPage *int       `json:"nextPage"`
	Success  bool       `json:"success"`
}

type feedItem struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Summary        string   `json:"summary"`
	Image          string   `json:"image"`
	Source         string   `json:"source"`
	URL            string   `json:"url"`
	PublishedHours *float64 `json:"publishedHours"`
	PublishedAt    string   `json:"publishedAt"`
	Category       string   `json:"category"`
}

// normalizeItem validates a wire article and maps it into the canonical
// shape. Items missing id, title or url are rejected.
func normalizeItem(item feedItem) (model.Article, bool) {
	if item.ID == "" || item.Title == "" || item.URL == "" {
		return model.Article{}, false
	}

	a := model.Article{
		ID:       item.ID,
		Title:    item.Title,
		Summary:  item.Summary,
		Category: item.Category,
		Source:   item.Source,
		URL:      item.URL,
		Image:    item.Image,
	}

	if item.PublishedHours != nil {
		a.PublishedHours = *item.PublishedHours
		a.HasHours = true
	} else if item.PublishedAt != "" {
		if t, err := time.Parse(time.RFC3339, item.PublishedAt); err == nil {
			a.PublishedAt = t
		}
	}

	return a, true
}
