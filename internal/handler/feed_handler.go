package handler

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pulsefeed/internal/feed"
	"pulsefeed/internal/pref"
	"pulsefeed/internal/rank"
	"pulsefeed/internal/session"
)

// SessionHeader carries the feed session key. Missing keys get a fresh
// session whose key is echoed back in the response headers.
const SessionHeader = "X-Session-ID"

type FeedHandler struct {
	sessions *session.Manager
}

func NewFeedHandler(sessions *session.Manager) *FeedHandler {
	return &FeedHandler{sessions: sessions}
}

func (h *FeedHandler) session(c *gin.Context) *session.Session {
	key := c.GetHeader(SessionHeader)
	if key == "" {
		key = c.Query("session")
	}
	if key == "" {
		key = newSessionKey()
	}
	c.Header(SessionHeader, key)
	return h.sessions.Get(key)
}

func newSessionKey() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process has no usable entropy
		// source; session keys must not become guessable.
		panic(err)
	}
	return hex.EncodeToString(buf)
}

// GetFeed returns the full accumulated set, re-ranked against the
// current preference snapshot.
func (h *FeedHandler) GetFeed(c *gin.Context) {
	s := h.session(c)
	ranked := s.Ranked()
	state, lastErr, hasNext := s.Status()

	articles := make([]RankedArticleResponse, 0, len(ranked))
	for _, r := range ranked {
		articles = append(articles, toArticleResponse(r))
	}

	c.JSON(http.StatusOK, FeedResponse{
		Articles: articles,
		Count:    len(articles),
		State:    string(state),
		HasNext:  hasNext,
		Error:    lastErr,
	})
}

// FetchNext pulls the next upstream page into the accumulated set. The
// client triggers this from its scroll sentinel, and retries it
// explicitly after a failure.
func (h *FeedHandler) FetchNext(c *gin.Context) {
	s := h.session(c)
	err := s.FetchNext(c.Request.Context())

	switch {
	case errors.Is(err, feed.ErrFetchInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": "fetch already in flight"})
		return
	case errors.Is(err, feed.ErrStaleFetch):
		c.JSON(http.StatusConflict, gin.H{"error": "feed was reset during fetch"})
		return
	case errors.Is(err, feed.ErrEndOfFeed):
		// Not a failure: the client just scrolled past the end.
	case err != nil:
		slog.Error("page fetch failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream fetch failed"})
		return
	}

	state, _, hasNext := s.Status()
	c.JSON(http.StatusOK, FeedStatusResponse{
		Count:   s.Len(),
		State:   string(state),
		HasNext: hasNext,
	})
}

// MarkRead records an article open: read history plus category exposure.
func (h *FeedHandler) MarkRead(c *gin.Context) {
	s := h.session(c)
	id := c.Param("id")

	if err := s.MarkRead(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}

	state, _, hasNext := s.Status()
	c.JSON(http.StatusOK, FeedStatusResponse{
		Count:   s.Len(),
		State:   string(state),
		HasNext: hasNext,
	})
}

// SetInterests replaces the interest filter and resets the feed.
func (h *FeedHandler) SetInterests(c *gin.Context) {
	var req InterestsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	s := h.session(c)
	s.SetInterests(req.Interests)

	c.JSON(http.StatusOK, toPreferencesResponse(s.Snapshot()))
}

// ResetFeed discards the accumulated set and rewinds pagination.
func (h *FeedHandler) ResetFeed(c *gin.Context) {
	s := h.session(c)
	s.Reset()

	state, _, hasNext := s.Status()
	c.JSON(http.StatusOK, FeedStatusResponse{
		Count:   s.Len(),
		State:   string(state),
		HasNext: hasNext,
	})
}

// GetPreferences exposes the current snapshot for diagnostics.
func (h *FeedHandler) GetPreferences(c *gin.Context) {
	c.JSON(http.StatusOK, toPreferencesResponse(h.session(c).Snapshot()))
}

// toPreferencesResponse keeps the list fields as arrays in JSON even
// when empty, matching the feed response shape.
func toPreferencesResponse(snap pref.Snapshot) PreferencesResponse {
	res := PreferencesResponse{
		Interests:        snap.Interests,
		ReadCount:        len(snap.ReadHistory),
		RecentCategories: snap.RecentCategories,
	}
	if res.Interests == nil {
		res.Interests = []string{}
	}
	if res.RecentCategories == nil {
		res.RecentCategories = []string{}
	}
	return res
}

func (h *FeedHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func toArticleResponse(r rank.Ranked) RankedArticleResponse {
	res := RankedArticleResponse{
		ID:        r.Article.ID,
		Title:     r.Article.Title,
		Summary:   r.Article.Summary,
		Category:  r.Article.Category,
		Source:    r.Article.Source,
		URL:       r.Article.URL,
		Image:     r.Article.Image,
		Score:     r.Score,
		Breakdown: r.Breakdown,
	}
	if !r.Article.PublishedAt.IsZero() {
		res.PublishedAt = r.Article.PublishedAt.Format(time.RFC3339)
	}
	return res
}
