package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"pulsefeed/internal/feed"
	"pulsefeed/internal/model"
	"pulsefeed/pkg/provider"
)

// twoPageProvider serves 20 articles then 15, ending the feed.
type twoPageProvider struct{}

func (twoPageProvider) Name() string { return "two-page" }

func (twoPageProvider) FetchPage(ctx context.Context, cursor *provider.Cursor, interests []string) (*provider.Page, error) {
	if cursor == nil {
		return &provider.Page{
			Articles: makeArticles("p1-", 20),
			Next:     &provider.Cursor{Page: 2},
		}, nil
	}
	return &provider.Page{Articles: makeArticles("p2-", 15), Next: nil}, nil
}

type failingProvider struct{ calls int }

func (f *failingProvider) Name() string { return "failing" }

func (f *failingProvider) FetchPage(ctx context.Context, cursor *provider.Cursor, interests []string) (*provider.Page, error) {
	f.calls++
	if f.calls == 1 {
		return &provider.Page{
			Articles: makeArticles("ok-", 5),
			Next:     &provider.Cursor{Page: 2},
		}, nil
	}
	return nil, errors.New("upstream down")
}

func makeArticles(prefix string, n int) []model.Article {
	articles := make([]model.Article, n)
	for i := range articles {
		articles[i] = model.Article{
			ID:    fmt.Sprintf("%s%d", prefix, i),
			Title: "headline",
			URL:   "https://example.com",
		}
	}
	return articles
}

func newManager(p provider.Provider) *Manager {
	return NewManager(p, time.Second, 100, 10, nil)
}

func TestEndToEndPagination(t *testing.T) {
	s := newManager(twoPageProvider{}).Get("u1")

	state, _, hasNext := s.Status()
	assert.Equal(t, StateEmpty, state)
	assert.Equal(t, true, hasNext)

	assert.Equal(t, nil, s.FetchNext(context.Background()))
	assert.Equal(t, 20, s.Len())

	assert.Equal(t, nil, s.FetchNext(context.Background()))
	assert.Equal(t, 35, s.Len())

	state, _, hasNext = s.Status()
	assert.Equal(t, StateEndOfFeed, state)
	assert.Equal(t, false, hasNext)
	assert.Equal(t, 35, len(s.Ranked()))

	err := s.FetchNext(context.Background())
	assert.Equal(t, true, errors.Is(err, feed.ErrEndOfFeed))
}

func TestFetchFailure_PreservesAccumulatedSet(t *testing.T) {
	s := newManager(&failingProvider{}).Get("u1")

	assert.Equal(t, nil, s.FetchNext(context.Background()))
	assert.Equal(t, 5, s.Len())

	err := s.FetchNext(context.Background())
	assert.NotEqual(t, nil, err)

	state, lastErr, hasNext := s.Status()
	assert.Equal(t, StateError, state)
	assert.NotEqual(t, "", lastErr)
	assert.Equal(t, true, hasNext)
	// Prior content stays visible through the failure.
	assert.Equal(t, 5, s.Len())
}

func TestMarkRead_TracksCategoryAndDemotes(t *testing.T) {
	p := &staticProvider{page: &provider.Page{
		Articles: []model.Article{
			{ID: "a", Title: "one", Category: "tech", URL: "https://example.com"},
			{ID: "b", Title: "two", Category: "finance", URL: "https://example.com"},
		},
	}}
	s := newManager(p).Get("u1")
	assert.Equal(t, nil, s.FetchNext(context.Background()))

	assert.Equal(t, nil, s.MarkRead("a"))

	snap := s.Snapshot()
	assert.Equal(t, true, snap.IsRead("a"))
	assert.Equal(t, []string{"tech"}, snap.RecentCategories)

	ranked := s.Ranked()
	assert.Equal(t, "b", ranked[0].Article.ID)

	err := s.MarkRead("missing")
	assert.Equal(t, true, errors.Is(err, ErrUnknownArticle))
}

func TestSetInterests_ResetsFeed(t *testing.T) {
	s := newManager(twoPageProvider{}).Get("u1")
	assert.Equal(t, nil, s.FetchNext(context.Background()))
	assert.Equal(t, 20, s.Len())

	s.SetInterests([]string{"AI"})

	state, _, hasNext := s.Status()
	assert.Equal(t, StateEmpty, state)
	assert.Equal(t, true, hasNext)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, []string{"ai"}, s.Snapshot().Interests)

	// Pagination restarts from the first page.
	assert.Equal(t, nil, s.FetchNext(context.Background()))
	assert.Equal(t, 20, s.Len())
}

func TestManager_ReturnsSameSessionForKey(t *testing.T) {
	m := newManager(twoPageProvider{})
	first := m.Get("u1")
	second := m.Get("u1")
	other := m.Get("u2")

	if first != second {
		t.Fatal("same key should return the same session")
	}
	if first == other {
		t.Fatal("different keys should return different sessions")
	}
}

// staticProvider serves one fixed single page.
type staticProvider struct{ page *provider.Page }

func (p *staticProvider) Name() string { return "static" }

func (p *staticProvider) FetchPage(ctx context.Context, cursor *provider.Cursor, interests []string) (*provider.Page, error) {
	return p.page, nil
}

// blockingSessionProvider parks until released, signalling on entered
// once the fetch has started.
type blockingSessionProvider struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingSessionProvider) Name() string { return "blocking" }

func (b *blockingSessionProvider) FetchPage(ctx context.Context, cursor *provider.Cursor, interests []string) (*provider.Page, error) {
	b.entered <- struct{}{}
	<-b.release
	return &provider.Page{
		Articles: makeArticles("stale-", 5),
		Next:     &provider.Cursor{Page: 2},
	}, nil
}

func TestReset_DiscardsInFlightPage(t *testing.T) {
	bp := &blockingSessionProvider{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	s := newManager(bp).Get("u1")

	done := make(chan error, 1)
	go func() {
		done <- s.FetchNext(context.Background())
	}()

	<-bp.entered
	s.Reset()
	close(bp.release)

	err := <-done
	assert.Equal(t, true, errors.Is(err, feed.ErrStaleFetch))

	// Nothing from the dead context reaches the fresh feed.
	assert.Equal(t, 0, s.Len())
	state, _, hasNext := s.Status()
	assert.Equal(t, StateEmpty, state)
	assert.Equal(t, true, hasNext)
}

// taggingProvider stamps every article with the interest context the
// fetch was issued under, so cross-context leaks are visible.
type taggingProvider struct {
	mu sync.Mutex
	n  int
}

func (p *taggingProvider) Name() string { return "tagging" }

func (p *taggingProvider) FetchPage(ctx context.Context, cursor *provider.Cursor, interests []string) (*provider.Page, error) {
	tag := strings.Join(interests, ",")
	p.mu.Lock()
	p.n++
	n := p.n
	p.mu.Unlock()
	return &provider.Page{
		Articles: []model.Article{{
			ID:       fmt.Sprintf("%s-%d", tag, n),
			Title:    "headline",
			Category: tag,
			URL:      "https://example.com",
		}},
		Next: &provider.Cursor{Page: n + 1},
	}, nil
}

func TestInterestChange_NeverKeepsOldContextArticles(t *testing.T) {
	s := newManager(&taggingProvider{}).Get("u1")

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				s.FetchNext(context.Background())
			}
		}
	}()

	for i := 0; i < 500; i++ {
		tag := fmt.Sprintf("ctx%d", i)
		s.SetInterests([]string{tag})
		for _, r := range s.Ranked() {
			if r.Article.Category != tag {
				t.Fatalf("article from context %q present after reset to %q", r.Article.Category, tag)
			}
		}
	}

	close(stop)
	wg.Wait()
}

func TestWarmStart_RestoresProfile(t *testing.T) {
	profiles := &fakeProfiles{
		interests: []string{"ai", "crypto"},
		history:   []string{"a3", "a2", "a1"}, // most recent first
	}
	m := NewManager(twoPageProvider{}, time.Second, 100, 10, profiles)
	s := m.Get("u1")

	snap := s.Snapshot()
	assert.Equal(t, []string{"ai", "crypto"}, snap.Interests)
	assert.Equal(t, true, snap.IsRead("a1"))
	assert.Equal(t, true, snap.IsRead("a3"))
}

type fakeProfiles struct {
	interests []string
	history   []string
	saved     [][]string
	reads     []string
}

func (f *fakeProfiles) SaveProfile(key string, interests []string) error {
	f.saved = append(f.saved, interests)
	return nil
}

func (f *fakeProfiles) LoadProfile(key string) ([]string, error) {
	return f.interests, nil
}

func (f *fakeProfiles) AppendRead(key, articleID string) error {
	f.reads = append(f.reads, articleID)
	return nil
}

func (f *fakeProfiles) LoadReadHistory(key string, limit int) ([]string, error) {
	return f.history, nil
}
