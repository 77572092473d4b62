package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"pulsefeed/db"
	"pulsefeed/internal/config"
	"pulsefeed/internal/handler"
	"pulsefeed/internal/repository"
	"pulsefeed/internal/session"
	"pulsefeed/pkg/provider"
)

func main() {

	godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	upstream := buildProvider(cfg)
	if upstream == nil {
		log.Fatal("no upstream provider configured: set FEED_URL, FINNHUB_API_KEY or RSS_URL")
	}

	if cfg.RedisURL != "" {
		if err := db.ConnectRedis(cfg.RedisURL); err != nil {
			log.Fatalf("error connecting to Redis: %v", err)
		}
		defer db.CloseRedis()
		upstream = provider.NewCachedProvider(upstream, db.Redis, cfg.Ranking.CacheTTLDuration())
		slog.Info("page cache enabled", "ttl", cfg.Ranking.CacheTTL)
	}

	var profiles session.ProfileStore
	if cfg.DatabaseURL != "" {
		if err := db.Connect(cfg.DatabaseURL); err != nil {
			log.Fatalf("error connecting to DB: %v", err)
		}
		defer db.Close()
		profiles = repository.NewPreferenceRepository(db.DB)
		slog.Info("preference persistence enabled")
	}

	sessions := session.NewManager(
		upstream,
		cfg.Ranking.FetchTimeoutDuration(),
		cfg.Ranking.ReadHistoryCap,
		cfg.Ranking.RecentCategoryCap,
		profiles,
	)
	feedHandler := handler.NewFeedHandler(sessions)

	r := gin.Default()

	allowedOrigins := []string{"http://localhost:3000"}
	if cfg.FrontendURL != "" {
		allowedOrigins = append(allowedOrigins, cfg.FrontendURL)
	}

	slog.Info("AllowOrigins URL:", "urls", allowedOrigins)

	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", handler.SessionHeader},
	}))

	r.GET("/feed", feedHandler.GetFeed)
	r.POST("/feed/next", feedHandler.FetchNext)
	r.POST("/feed/reset", feedHandler.ResetFeed)
	r.POST("/feed/:id/read", feedHandler.MarkRead)
	r.PUT("/interests", feedHandler.SetInterests)
	r.GET("/preferences", feedHandler.GetPreferences)
	r.GET("/health", feedHandler.GetHealth)

	slog.Info("starting server", "addr", cfg.Addr, "provider", upstream.Name())

	err = r.Run(cfg.Addr)
	if err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}

func buildProvider(cfg config.Config) provider.Provider {
	switch {
	case cfg.FeedURL != "":
		return provider.NewHTTPProvider(cfg.FeedURL)
	case cfg.FinnhubKey != "":
		return provider.NewFinnhubProvider(cfg.FinnhubKey, cfg.Ranking.PageSize)
	case cfg.RSSURL != "":
		return provider.NewRSSProvider(cfg.RSSURL, cfg.Ranking.PageSize)
	default:
		return nil
	}
}
