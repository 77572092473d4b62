package rank

import (
	"sort"

	"pulsefeed/internal/model"
	"pulsefeed/internal/pref"
	"pulsefeed/internal/score"
)

// Ranked is an accumulated article annotated with its derived score.
type Ranked struct {
	Article   model.Article
	Score     int
	Breakdown score.Breakdown
}

// Assembler accumulates articles across pages and derives a ranked order
// on demand. Ranking is recomputed in full on every derive: a single
// preference mutation can reorder the entire set, and at the expected set
// sizes a full stable re-sort is the correct design.
//
// The assembler is not synchronized; the owning session serializes access.
type Assembler struct {
	articles []model.Article // arrival order
	seen     map[string]struct{}
}

func NewAssembler() *Assembler {
	return &Assembler{seen: make(map[string]struct{})}
}

// Ingest appends a page's articles, deduplicating by id. The first
// occurrence of an id wins; later duplicates are dropped silently.
// Returns the number of articles actually added.
func (as *Assembler) Ingest(articles []model.Article) int {
	added := 0
	for _, a := range articles {
		if a.ID == "" {
			continue
		}
		if _, ok := as.seen[a.ID]; ok {
			continue
		}
		as.seen[a.ID] = struct{}{}
		as.articles = append(as.articles, a)
		added++
	}
	return added
}

// Len returns the size of the accumulated set.
func (as *Assembler) Len() int {
	return len(as.articles)
}

// Lookup returns the accumulated article with the given id.
func (as *Assembler) Lookup(id string) (model.Article, bool) {
	if _, ok := as.seen[id]; !ok {
		return model.Article{}, false
	}
	for _, a := range as.articles {
		if a.ID == id {
			return a, true
		}
	}
	return model.Article{}, false
}

// DeriveOrder scores the full accumulated set against the snapshot and
// returns it sorted descending by score. The sort is stable: equal scores
// keep their relative arrival order, so identical snapshots always yield
// identical orderings.
func (as *Assembler) DeriveOrder(snap pref.Snapshot) []Ranked {
	ranked := make([]Ranked, len(as.articles))
	for i, a := range as.articles {
		b := score.ScoreWithBreakdown(a, snap)
		ranked[i] = Ranked{Article: a, Score: b.Total, Breakdown: b}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// Reset discards the accumulated set. Used when the ranking context
// changes (e.g. the interest filter is replaced).
func (as *Assembler) Reset() {
	as.articles = nil
	as.seen = make(map[string]struct{})
}
