package pref

import (
	"strings"
	"sync"
	"time"
)

const (
	DefaultReadHistoryCap    = 100
	DefaultRecentCategoryCap = 10
)

// Snapshot is an immutable copy of the preference state at a point in time.
// The scoring engine reads only snapshots; callers must never mutate one.
type Snapshot struct {
	Interests        []string // lowercase, deduplicated, unordered
	ReadHistory      map[string]struct{}
	RecentCategories []string // most recent first
	TakenAt          time.Time
}

// IsRead reports whether the article id is in the read-history set.
func (s Snapshot) IsRead(id string) bool {
	_, ok := s.ReadHistory[id]
	return ok
}

// CategoryCount counts case-insensitive occurrences of category in the
// recent-category queue.
func (s Snapshot) CategoryCount(category string) int {
	count := 0
	for _, c := range s.RecentCategories {
		if strings.EqualFold(c, category) {
			count++
		}
	}
	return count
}

// Store holds the per-session preference state: declared interests, a
// bounded read-history set and a bounded recent-category queue. Both
// bounded collections are append-biased; insertion evicts the oldest
// entry once the cap is reached. The store is safe for concurrent use.
type Store struct {
	mu               sync.Mutex
	interests        []string
	readOrder        []string // most recent first
	readSet          map[string]struct{}
	recentCategories []string // most recent first
	readCap          int
	categoryCap      int
}

func NewStore() *Store {
	return NewStoreWithCaps(DefaultReadHistoryCap, DefaultRecentCategoryCap)
}

func NewStoreWithCaps(readCap, categoryCap int) *Store {
	if readCap < 1 {
		readCap = DefaultReadHistoryCap
	}
	if categoryCap < 1 {
		categoryCap = DefaultRecentCategoryCap
	}
	return &Store{
		readSet:     make(map[string]struct{}),
		readCap:     readCap,
		categoryCap: categoryCap,
	}
}

// SetInterests replaces the declared interests. Keywords are trimmed,
// lowercased and deduplicated; empty entries are dropped.
func (s *Store) SetInterests(interests []string) {
	normalized := make([]string, 0, len(interests))
	seen := make(map[string]struct{}, len(interests))
	for _, raw := range interests {
		keyword := strings.ToLower(strings.TrimSpace(raw))
		if keyword == "" {
			continue
		}
		if _, ok := seen[keyword]; ok {
			continue
		}
		seen[keyword] = struct{}{}
		normalized = append(normalized, keyword)
	}

	s.mu.Lock()
	s.interests = normalized
	s.mu.Unlock()
}

// Interests returns a copy of the declared interests.
func (s *Store) Interests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.interests...)
}

// MarkRead records an article as read. Idempotent: an id already present
// is a no-op. Once the cap is exceeded the oldest entry is evicted.
func (s *Store) MarkRead(id string) {
	if id == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.readSet[id]; ok {
		return
	}

	s.readSet[id] = struct{}{}
	s.readOrder = append([]string{id}, s.readOrder...)
	if len(s.readOrder) > s.readCap {
		oldest := s.readOrder[len(s.readOrder)-1]
		s.readOrder = s.readOrder[:len(s.readOrder)-1]
		delete(s.readSet, oldest)
	}
}

// TrackCategory records a category exposure. Unlike MarkRead, repeats are
// intended: repetition is the diversity signal.
func (s *Store) TrackCategory(category string) {
	if category == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.recentCategories = append([]string{category}, s.recentCategories...)
	if len(s.recentCategories) > s.categoryCap {
		s.recentCategories = s.recentCategories[:s.categoryCap]
	}
}

// Snapshot returns an immutable copy of the current state, with the clock
// captured once so scoring stays deterministic for a given snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	readCopy := make(map[string]struct{}, len(s.readSet))
	for id := range s.readSet {
		readCopy[id] = struct{}{}
	}

	return Snapshot{
		Interests:        append([]string(nil), s.interests...),
		ReadHistory:      readCopy,
		RecentCategories: append([]string(nil), s.recentCategories...),
		TakenAt:          time.Now(),
	}
}
