package location

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/realestate-agents/lead_wizard/internal/api"
)

// DefaultDebounce is the quiet period after the last keystroke before a
// query is sent.
const DefaultDebounce = 400 * time.Millisecond

// ErrSuperseded is returned to a caller whose pending query was replaced by a
// newer one before its debounce timer fired.
var ErrSuperseded = errors.New("location search superseded")

// Provider resolves a free-text query into address candidates.
type Provider interface {
	Search(ctx context.Context, query string) ([]api.Location, error)
}

// Searcher debounces queries against a Provider. Only the most recent pending
// query fires; requests already in flight are left to complete.
type Searcher struct {
	provider Provider
	delay    time.Duration

	mu      sync.Mutex
	pending *pendingQuery
}

type pendingQuery struct {
	timer      *time.Timer
	fire       chan struct{}
	superseded chan struct{}
}

// NewSearcher builds a Searcher. A non-positive delay uses DefaultDebounce.
func NewSearcher(provider Provider, delay time.Duration) *Searcher {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Searcher{provider: provider, delay: delay}
}

// Search waits out the debounce window and queries the provider. An empty
// query returns an empty list immediately and cancels any pending query.
func (s *Searcher) Search(ctx context.Context, query string) ([]api.Location, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		s.mu.Lock()
		s.supersede()
		s.mu.Unlock()
		return []api.Location{}, nil
	}

	p := &pendingQuery{fire: make(chan struct{}), superseded: make(chan struct{})}
	s.mu.Lock()
	s.supersede()
	s.pending = p
	p.timer = time.AfterFunc(s.delay, func() { close(p.fire) })
	s.mu.Unlock()

	select {
	case <-p.fire:
	case <-p.superseded:
		return nil, ErrSuperseded
	case <-ctx.Done():
		s.mu.Lock()
		if s.pending == p {
			p.timer.Stop()
			s.pending = nil
		}
		s.mu.Unlock()
		return nil, ctx.Err()
	}

	s.mu.Lock()
	if s.pending == p {
		s.pending = nil
	}
	s.mu.Unlock()

	results, err := s.provider.Search(ctx, q)
	if err != nil {
		return []api.Location{}, fmt.Errorf("search locations: %w", err)
	}
	if results == nil {
		results = []api.Location{}
	}
	return results, nil
}

// supersede cancels the pending timer if it has not fired yet. Callers hold mu.
func (s *Searcher) supersede() {
	if s.pending == nil {
		return
	}
	if s.pending.timer.Stop() {
		close(s.pending.superseded)
	}
	s.pending = nil
}
