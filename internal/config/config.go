package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the service configuration: connection strings from the
// environment plus optional ranking tunables from a yaml file.
type Config struct {
	Addr        string
	FrontendURL string
	DatabaseURL string
	RedisURL    string

	// Upstream provider selection, first non-empty wins in this order.
	FeedURL    string
	FinnhubKey string
	RSSURL     string

	Ranking Ranking
}

// Ranking tunes the feed engine. All fields have working defaults; a
// missing or partial yaml file is fine.
type Ranking struct {
	ReadHistoryCap    int    `yaml:"read_history_cap"`
	RecentCategoryCap int    `yaml:"recent_category_cap"`
	PageSize          int    `yaml:"page_size"`
	FetchTimeout      string `yaml:"fetch_timeout"`
	CacheTTL          string `yaml:"cache_ttl"`
}

func defaultRanking() Ranking {
	return Ranking{
		ReadHistoryCap:    100,
		RecentCategoryCap: 10,
		PageSize:          20,
		FetchTimeout:      "10s",
		CacheTTL:          "5m",
	}
}

// FetchTimeoutDuration parses the fetch timeout, defaulting to 10s.
func (r Ranking) FetchTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(r.FetchTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// CacheTTLDuration parses the page-cache TTL, defaulting to 5m.
func (r Ranking) CacheTTLDuration() time.Duration {
	d, err := time.ParseDuration(r.CacheTTL)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

// Load reads configuration from the environment and, when RANKING_CONFIG
// points at a yaml file, merges ranking tunables from it.
func Load() (Config, error) {
	cfg := Config{
		Addr:        envOr("ADDR", ":8080"),
		FrontendURL: os.Getenv("FRONTEND_URL"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		FeedURL:     os.Getenv("FEED_URL"),
		FinnhubKey:  os.Getenv("FINNHUB_API_KEY"),
		RSSURL:      os.Getenv("RSS_URL"),
		Ranking:     defaultRanking(),
	}

	if path := os.Getenv("RANKING_CONFIG"); path != "" {
		if err := loadRankingFile(path, &cfg.Ranking); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}

func loadRankingFile(path string, r *Ranking) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading ranking config %s: %w", path, err)
	}

	var file Ranking
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing ranking config %s: %w", path, err)
	}

	if file.ReadHistoryCap > 0 {
		r.ReadHistoryCap = file.ReadHistoryCap
	}
	if file.RecentCategoryCap > 0 {
		r.RecentCategoryCap = file.RecentCategoryCap
	}
	if file.PageSize > 0 {
		r.PageSize = file.PageSize
	}
	if file.FetchTimeout != "" {
		r.FetchTimeout = file.FetchTimeout
	}
	if file.CacheTTL != "" {
		r.CacheTTL = file.CacheTTL
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
