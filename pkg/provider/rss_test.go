package provider

import (
	"fmt"
	"testing"

	"github.com/go-playground/assert/v2"

	"pulsefeed/internal/model"
)

func TestSlicePage(t *testing.T) {
	all := make([]model.Article, 35)
	for i := range all {
		all[i] = model.Article{ID: fmt.Sprintf("a%d", i)}
	}

	first := slicePage(all, nil, 20)
	assert.Equal(t, 20, len(first.Articles))
	assert.Equal(t, "a0", first.Articles[0].ID)
	assert.NotEqual(t, nil, first.Next)
	assert.Equal(t, 2, first.Next.Page)

	second := slicePage(all, first.Next, 20)
	assert.Equal(t, 15, len(second.Articles))
	assert.Equal(t, "a20", second.Articles[0].ID)
	if second.Next != nil {
		t.Fatalf("expected end of feed, got next page %d", second.Next.Page)
	}
}

func TestSlicePage_PastEnd(t *testing.T) {
	all := []model.Article{{ID: "a0"}}
	page := slicePage(all, &Cursor{Page: 5}, 20)
	assert.Equal(t, 0, len(page.Articles))
	if page.Next != nil {
		t.Fatal("expected nil next cursor past end of feed")
	}
}

func TestSlicePage_ExactBoundary(t *testing.T) {
	all := make([]model.Article, 20)
	for i := range all {
		all[i] = model.Article{ID: fmt.Sprintf("a%d", i)}
	}

	page := slicePage(all, nil, 20)
	assert.Equal(t, 20, len(page.Articles))
	if page.Next != nil {
		t.Fatal("expected nil next cursor when the list fits one page")
	}
}

func TestArticleID_StableAndDistinct(t *testing.T) {
	id1 := articleID("https://example.com/a")
	id2 := articleID("https://example.com/a")
	other := articleID("https://example.com/b")

	assert.Equal(t, id1, id2)
	assert.Equal(t, 16, len(id1))
	assert.NotEqual(t, id1, other)
}

func TestStripHTML(t *testing.T) {
	got := stripHTML("<p>Hello   <b>world</b></p>")
	assert.Equal(t, "Hello world", got)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 300))

	long := make([]byte, 0, 400)
	for i := 0; i < 400; i++ {
		long = append(long, 'x')
	}
	got := truncate(string(long), 300)
	assert.Equal(t, 300, len([]rune(got)))
	assert.Equal(t, "...", got[len(got)-3:])
}
