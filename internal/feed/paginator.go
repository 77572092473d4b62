package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"pulsefeed/pkg/provider"
)

// DefaultFetchTimeout bounds a single upstream page fetch.
const DefaultFetchTimeout = 10 * time.Second

var (
	// ErrFetchInFlight means a fetch is already running for this
	// paginator; the call issued nothing. Prevents duplicate-page
	// ingestion and keeps pages arriving strictly in order.
	ErrFetchInFlight = errors.New("feed: fetch already in flight")

	// ErrEndOfFeed means the upstream signaled no further pages.
	ErrEndOfFeed = errors.New("feed: no further pages")

	// ErrStaleFetch means the paginator was reset while the fetch was
	// in flight; the result was discarded, not ingested.
	ErrStaleFetch = errors.New("feed: stale fetch discarded after reset")
)

type fetchState int

const (
	stateIdle fetchState = iota
	stateFetching
)

// Paginator pulls pages one at a time from an upstream provider. The
// cursor is opaque: it is never inspected or advanced locally, only
// replaced by what the provider returns. Exactly one fetch may be in
// flight at a time, and a reset invalidates any fetch started before it.
type Paginator struct {
	mu        sync.Mutex
	provider  provider.Provider
	timeout   time.Duration
	interests []string
	cursor    *provider.Cursor // nil requests the first page
	state     fetchState
	epoch     uint64
	exhausted bool
}

func NewPaginator(p provider.Provider, timeout time.Duration) *Paginator {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Paginator{provider: p, timeout: timeout}
}

// FetchNext requests the next page. The cursor only advances on success,
// so a failed fetch can be retried by calling FetchNext again.
func (p *Paginator) FetchNext(ctx context.Context) (*provider.Page, error) {
	p.mu.Lock()
	if p.state == stateFetching {
		p.mu.Unlock()
		return nil, ErrFetchInFlight
	}
	if p.exhausted {
		p.mu.Unlock()
		return nil, ErrEndOfFeed
	}
	p.state = stateFetching
	epoch := p.epoch
	cursor := p.cursor
	interests := append([]string(nil), p.interests...)
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	page, err := p.provider.FetchPage(ctx, cursor, interests)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.epoch != epoch {
		// Reset happened mid-flight; Reset already restored the state,
		// and this result belongs to a dead context.
		return nil, ErrStaleFetch
	}

	p.state = stateIdle
	if err != nil {
		return nil, fmt.Errorf("page fetch: %w", err)
	}

	p.cursor = page.Next
	if page.Next == nil {
		p.exhausted = true
	}
	return page, nil
}

// HasNext reports whether the upstream may have more pages.
func (p *Paginator) HasNext() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.exhausted
}

// Reset rewinds to the first page for a new interest context and bumps
// the epoch so any in-flight fetch is discarded on arrival.
func (p *Paginator) Reset(interests []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.epoch++
	p.cursor = nil
	p.exhausted = false
	p.state = stateIdle
	p.interests = append([]string(nil), interests...)
}
