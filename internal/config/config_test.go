package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ADDR", "")
	t.Setenv("RANKING_CONFIG", "")

	cfg, err := Load()
	assert.Equal(t, nil, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 100, cfg.Ranking.ReadHistoryCap)
	assert.Equal(t, 10, cfg.Ranking.RecentCategoryCap)
	assert.Equal(t, 20, cfg.Ranking.PageSize)
	assert.Equal(t, 10*time.Second, cfg.Ranking.FetchTimeoutDuration())
	assert.Equal(t, 5*time.Minute, cfg.Ranking.CacheTTLDuration())
}

func TestLoad_RankingFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranking.yaml")
	content := []byte("read_history_cap: 50\npage_size: 10\nfetch_timeout: 3s\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RANKING_CONFIG", path)

	cfg, err := Load()
	assert.Equal(t, nil, err)
	assert.Equal(t, 50, cfg.Ranking.ReadHistoryCap)
	assert.Equal(t, 10, cfg.Ranking.PageSize)
	assert.Equal(t, 3*time.Second, cfg.Ranking.FetchTimeoutDuration())
	// Untouched fields keep their defaults.
	assert.Equal(t, 10, cfg.Ranking.RecentCategoryCap)
	assert.Equal(t, 5*time.Minute, cfg.Ranking.CacheTTLDuration())
}

func TestRanking_BadDurationFallsBack(t *testing.T) {
	r := Ranking{FetchTimeout: "not-a-duration", CacheTTL: "-1s"}
	assert.Equal(t, 10*time.Second, r.FetchTimeoutDuration())
	assert.Equal(t, 5*time.Minute, r.CacheTTLDuration())
}
