package pref

import (
	"fmt"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestSetInterests_Normalizes(t *testing.T) {
	s := NewStore()
	s.SetInterests([]string{" AI ", "Crypto", "ai", "", "crypto"})

	assert.Equal(t, []string{"ai", "crypto"}, s.Interests())
}

func TestMarkRead_Idempotent(t *testing.T) {
	s := NewStore()
	s.MarkRead("a1")
	s.MarkRead("a1")
	s.MarkRead("a1")

	snap := s.Snapshot()
	assert.Equal(t, 1, len(snap.ReadHistory))
	assert.Equal(t, true, snap.IsRead("a1"))
}

func TestMarkRead_EvictsOldest(t *testing.T) {
	s := NewStoreWithCaps(3, 10)
	s.MarkRead("a1")
	s.MarkRead("a2")
	s.MarkRead("a3")
	s.MarkRead("a4")

	snap := s.Snapshot()
	assert.Equal(t, 3, len(snap.ReadHistory))
	assert.Equal(t, false, snap.IsRead("a1"))
	assert.Equal(t, true, snap.IsRead("a2"))
	assert.Equal(t, true, snap.IsRead("a4"))
}

func TestMarkRead_NeverExceedsCap(t *testing.T) {
	s := NewStore()
	for i := 0; i < DefaultReadHistoryCap+1; i++ {
		s.MarkRead(fmt.Sprintf("a%d", i))
	}

	snap := s.Snapshot()
	assert.Equal(t, DefaultReadHistoryCap, len(snap.ReadHistory))
	assert.Equal(t, false, snap.IsRead("a0"))
	assert.Equal(t, true, snap.IsRead("a1"))
}

func TestTrackCategory_KeepsRepeats(t *testing.T) {
	s := NewStore()
	s.TrackCategory("tech")
	s.TrackCategory("tech")
	s.TrackCategory("finance")

	snap := s.Snapshot()
	assert.Equal(t, []string{"finance", "tech", "tech"}, snap.RecentCategories)
	assert.Equal(t, 2, snap.CategoryCount("Tech"))
}

func TestTrackCategory_EvictsOldest(t *testing.T) {
	s := NewStoreWithCaps(100, 2)
	s.TrackCategory("one")
	s.TrackCategory("two")
	s.TrackCategory("three")

	snap := s.Snapshot()
	assert.Equal(t, []string{"three", "two"}, snap.RecentCategories)
}

func TestTrackCategory_NeverExceedsCap(t *testing.T) {
	s := NewStore()
	for i := 0; i < DefaultRecentCategoryCap+1; i++ {
		s.TrackCategory(fmt.Sprintf("c%d", i))
	}

	snap := s.Snapshot()
	assert.Equal(t, DefaultRecentCategoryCap, len(snap.RecentCategories))
	assert.Equal(t, "c10", snap.RecentCategories[0])
	assert.Equal(t, 0, snap.CategoryCount("c0"))
}

func TestSnapshot_IsolatedFromLaterMutations(t *testing.T) {
	s := NewStore()
	s.SetInterests([]string{"ai"})
	s.MarkRead("a1")
	s.TrackCategory("tech")

	snap := s.Snapshot()

	s.SetInterests([]string{"crypto"})
	s.MarkRead("a2")
	s.TrackCategory("finance")

	assert.Equal(t, []string{"ai"}, snap.Interests)
	assert.Equal(t, false, snap.IsRead("a2"))
	assert.Equal(t, []string{"tech"}, snap.RecentCategories)
}
