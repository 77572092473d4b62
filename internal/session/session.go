package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"pulsefeed/internal/feed"
	"pulsefeed/internal/pref"
	"pulsefeed/internal/rank"
	"pulsefeed/pkg/provider"
)

// State is the feed view state machine:
// empty → loading-first-page → has-data ⇄ loading-more → end-of-feed | error.
// Error is recoverable via an explicit retry; end-of-feed holds until reset.
type State string

const (
	StateEmpty        State = "empty"
	StateLoadingFirst State = "loading_first_page"
	StateHasData      State = "has_data"
	StateLoadingMore  State = "loading_more"
	StateEndOfFeed    State = "end_of_feed"
	StateError        State = "error"
)

// ErrUnknownArticle is returned when a read mark targets an article that
// is not in the accumulated set.
var ErrUnknownArticle = errors.New("session: article not in feed")

// ProfileStore optionally persists preferences across sessions.
type ProfileStore interface {
	SaveProfile(sessionKey string, interests []string) error
	LoadProfile(sessionKey string) ([]string, error)
	AppendRead(sessionKey, articleID string) error
	LoadReadHistory(sessionKey string, limit int) ([]string, error)
}

// Session owns one user's feed context: the preference store, the
// accumulated ranked set and the paginator. The session mutex serializes
// assembler access and state transitions; the preference store carries
// its own lock so interaction callbacks never contend with a fetch.
type Session struct {
	key       string
	prefs     *pref.Store
	assembler *rank.Assembler
	paginator *feed.Paginator
	profiles  ProfileStore // nil when persistence is off

	mu      sync.Mutex
	state   State
	lastErr string
	gen     uint64 // bumped by Reset; guards ingestion of in-flight fetches
}

// FetchNext pulls and ingests the next upstream page. Concurrent calls
// collapse into one fetch: the losers get feed.ErrFetchInFlight and
// nothing is ingested twice.
func (s *Session) FetchNext(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateEndOfFeed:
		s.mu.Unlock()
		return feed.ErrEndOfFeed
	case StateEmpty, StateError:
		if s.assembler.Len() == 0 {
			s.state = StateLoadingFirst
		} else {
			s.state = StateLoadingMore
		}
	case StateHasData:
		s.state = StateLoadingMore
	}
	gen := s.gen
	s.mu.Unlock()

	page, err := s.paginator.FetchNext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	// The paginator's own epoch check can pass just before a reset takes
	// the session mutex; re-check here so a stale page is never ingested
	// into the new context.
	if s.gen != gen {
		return feed.ErrStaleFetch
	}

	switch {
	case errors.Is(err, feed.ErrFetchInFlight):
		// Another caller owns the fetch; it will settle the state.
		return err
	case errors.Is(err, feed.ErrStaleFetch):
		// A reset raced this fetch; the reset already settled the state.
		return err
	case errors.Is(err, feed.ErrEndOfFeed):
		s.state = StateEndOfFeed
		return err
	case err != nil:
		s.state = StateError
		s.lastErr = err.Error()
		return err
	}

	s.assembler.Ingest(page.Articles)
	s.lastErr = ""
	if s.paginator.HasNext() {
		s.state = StateHasData
	} else {
		s.state = StateEndOfFeed
	}
	return nil
}

// Ranked derives the current ordering of the accumulated set against a
// fresh preference snapshot.
func (s *Session) Ranked() []rank.Ranked {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assembler.DeriveOrder(s.prefs.Snapshot())
}

// MarkRead records that the user opened an article: the id joins the
// read history and the article's category joins the recent-category
// queue. Fails only when the article is not in the accumulated set.
func (s *Session) MarkRead(id string) error {
	s.mu.Lock()
	article, ok := s.assembler.Lookup(id)
	s.mu.Unlock()
	if !ok {
		return ErrUnknownArticle
	}

	s.prefs.MarkRead(id)
	if article.Category != "" {
		s.prefs.TrackCategory(article.Category)
	}

	if s.profiles != nil {
		if err := s.profiles.AppendRead(s.key, id); err != nil {
			slog.Warn("persisting read mark failed", "session", s.key, "article_id", id, "error", err)
		}
	}
	return nil
}

// SetInterests replaces the interest filter. A different interest context
// invalidates everything fetched so far, so the feed resets.
func (s *Session) SetInterests(interests []string) {
	s.prefs.SetInterests(interests)

	if s.profiles != nil {
		if err := s.profiles.SaveProfile(s.key, s.prefs.Interests()); err != nil {
			slog.Warn("persisting interests failed", "session", s.key, "error", err)
		}
	}

	s.Reset()
}

// Reset discards the accumulated set and rewinds pagination. Any fetch
// in flight is discarded on arrival via the paginator's epoch.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.paginator.Reset(s.prefs.Interests())
	s.assembler.Reset()
	s.state = StateEmpty
	s.lastErr = ""
}

// Snapshot exposes the current preference snapshot.
func (s *Session) Snapshot() pref.Snapshot {
	return s.prefs.Snapshot()
}

// Status returns the feed state, the last fetch error (empty outside the
// error state) and whether more pages may exist.
func (s *Session) Status() (State, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.lastErr, s.paginator.HasNext()
}

// Len returns the size of the accumulated set.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assembler.Len()
}

// Manager hands out sessions by key, creating them on demand.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	provider     provider.Provider
	fetchTimeout time.Duration
	readCap      int
	categoryCap  int
	profiles     ProfileStore
}

func NewManager(p provider.Provider, fetchTimeout time.Duration, readCap, categoryCap int, profiles ProfileStore) *Manager {
	return &Manager{
		sessions:     make(map[string]*Session),
		provider:     p,
		fetchTimeout: fetchTimeout,
		readCap:      readCap,
		categoryCap:  categoryCap,
		profiles:     profiles,
	}
}

// Get returns the session for key, creating and warm-starting it if
// needed.
func (m *Manager) Get(key string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[key]; ok {
		return s
	}

	s := &Session{
		key:       key,
		prefs:     pref.NewStoreWithCaps(m.readCap, m.categoryCap),
		assembler: rank.NewAssembler(),
		paginator: feed.NewPaginator(m.provider, m.fetchTimeout),
		profiles:  m.profiles,
		state:     StateEmpty,
	}
	m.warmStart(s)
	s.paginator.Reset(s.prefs.Interests())
	m.sessions[key] = s
	return s
}

// warmStart restores persisted preferences when a profile store is
// configured. Persistence failures degrade to a cold session.
func (m *Manager) warmStart(s *Session) {
	if m.profiles == nil {
		return
	}

	interests, err := m.profiles.LoadProfile(s.key)
	if err != nil {
		slog.Warn("loading profile failed", "session", s.key, "error", err)
	} else if len(interests) > 0 {
		s.prefs.SetInterests(interests)
	}

	history, err := m.profiles.LoadReadHistory(s.key, m.readCap)
	if err != nil {
		slog.Warn("loading read history failed", "session", s.key, "error", err)
		return
	}
	// History arrives most recent first; replay oldest first so the
	// store's eviction order matches.
	for i := len(history) - 1; i >= 0; i-- {
		s.prefs.MarkRead(history[i])
	}
}
