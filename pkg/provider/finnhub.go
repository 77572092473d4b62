package provider

import (
	"context"
	"fmt"
	"strconv"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"

	"pulsefeed/internal/model"
)

// FinnhubProvider serves market news through the page contract. Finnhub's
// market-news endpoint has no native pagination, so each call fetches the
// current list and cuts the requested page out of it client-side.
type FinnhubProvider struct {
	client   *finnhub.DefaultApiService
	pageSize int
}

func NewFinnhubProvider(apiKey string, pageSize int) *FinnhubProvider {
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	if pageSize < 1 {
		pageSize = 20
	}
	return &FinnhubProvider{
		client:   finnhub.NewAPIClient(cfg).DefaultApi,
		pageSize: pageSize,
	}
}

func (p *FinnhubProvider) Name() string {
	return "Finnhub"
}

func (p *FinnhubProvider) FetchPage(ctx context.Context, cursor *Cursor, interests []string) (*Page, error) {
	res, _, err := p.client.MarketNews(ctx).Category("general").Execute()
	if err != nil {
		return nil, fmt.Errorf("finnhub fetch: %w", err)
	}

	all := make([]model.Article, 0, len(res))
	for _, news := range res {
		if news.Id == nil || news.Headline == nil || news.Url == nil {
			continue
		}

		a := model.Article{
			ID:     strconv.FormatInt(*news.Id, 10),
			Title:  *news.Headline,
			URL:    *news.Url,
			Source: p.Name(),
		}
		if news.Summary != nil {
			a.Summary = *news.Summary
		}
		if news.Category != nil {
			a.Category = *news.Category
		}
		if news.Image != nil {
			a.Image = *news.Image
		}
		if news.Datetime != nil {
			a.PublishedAt = time.Unix(*news.Datetime, 0)
		}

		all = append(all, a)
	}

	return slicePage(all, cursor, p.pageSize), nil
}

// slicePage cuts one page out of a fully-materialized article list and
// mints the follow-up cursor. Shared by providers whose upstream has no
// pagination of its own.
func slicePage(all []model.Article, cursor *Cursor, pageSize int) *Page {
	page := 1
	if cursor != nil {
		page = cursor.Page
	}

	start := (page - 1) * pageSize
	if start >= len(all) || start < 0 {
		return &Page{Articles: nil, Next: nil}
	}

	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}

	var next *Cursor
	if end < len(all) {
		next = &Cursor{Page: page + 1}
	}

	return &Page{Articles: all[start:end], Next: next}
}
