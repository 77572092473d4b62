package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedProvider wraps any Provider with a redis read-through page cache
// keyed by provider, cursor and interest list. Cache failures degrade to
// a direct fetch; they never fail the page.
type CachedProvider struct {
	inner Provider
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCachedProvider(inner Provider, rdb *redis.Client, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedProvider{inner: inner, rdb: rdb, ttl: ttl}
}

func (p *CachedProvider) Name() string {
	return p.inner.Name()
}

func (p *CachedProvider) FetchPage(ctx context.Context, cursor *Cursor, interests []string) (*Page, error) {
	key := cacheKey(p.inner.Name(), cursor, interests)

	if data, err := p.rdb.Get(ctx, key).Bytes(); err == nil {
		var page Page
		if err := json.Unmarshal(data, &page); err == nil {
			return &page, nil
		}
		slog.Warn("discarding undecodable cached page", "key", key)
	}

	page, err := p.inner.FetchPage(ctx, cursor, interests)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(page); err == nil {
		if err := p.rdb.Set(ctx, key, data, p.ttl).Err(); err != nil {
			slog.Warn("page cache write failed", "key", key, "error", err)
		}
	}

	return page, nil
}

func cacheKey(name string, cursor *Cursor, interests []string) string {
	page := 1
	if cursor != nil {
		page = cursor.Page
	}
	return fmt.Sprintf("pulsefeed:page:%s:%d:%s", name, page, strings.Join(interests, ","))
}
