// Package session hosts wizards for remote surfaces. Each session is a
// wizard.State persisted between requests; requests for the same session
// run one at a time.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/realestate-agents/lead_wizard/internal/api"
	"github.com/realestate-agents/lead_wizard/internal/location"
	"github.com/realestate-agents/lead_wizard/internal/wizard"
)

// Options configures a Service.
type Options struct {
	Backend  wizard.Backend
	Provider location.Provider
	Debounce time.Duration
	CodeTTL  time.Duration
	TTL      time.Duration
}

type entry struct {
	mu       sync.Mutex
	searcher *location.Searcher
	touched  time.Time
}

// Service runs wizard operations against stored sessions.
type Service struct {
	store  Store
	opts   Options
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

// NewService builds a session service.
func NewService(store Store, opts Options, logger *slog.Logger) *Service {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Debounce <= 0 {
		opts.Debounce = location.DefaultDebounce
	}
	return &Service{store: store, opts: opts, logger: logger, now: time.Now, entries: make(map[string]*entry)}
}

func (s *Service) deps() wizard.Deps {
	return wizard.Deps{Backend: s.opts.Backend, CodeTTL: s.opts.CodeTTL, Now: s.now}
}

// Create starts a new session of the named flow.
func (s *Service) Create(ctx context.Context, flow string) (string, wizard.View, error) {
	c, err := wizard.New(flow, s.deps())
	if err != nil {
		return "", wizard.View{}, err
	}
	id := uuid.NewString()
	if err := s.store.Save(ctx, id, c.State()); err != nil {
		return "", wizard.View{}, fmt.Errorf("save session: %w", err)
	}
	s.logger.Debug("wizard session created", "session_id", id, "flow", flow)
	return id, c.View(), nil
}

// Get renders the session.
func (s *Service) Get(ctx context.Context, id string) (wizard.View, error) {
	return s.Do(ctx, id, func(*wizard.Controller) error { return nil })
}

// Do loads the session, applies fn and saves the result. The view is
// returned even when fn fails so callers can show the updated errors.
func (s *Service) Do(ctx context.Context, id string, fn func(c *wizard.Controller) error) (wizard.View, error) {
	e := s.entry(id)
	e.mu.Lock()
	defer e.mu.Unlock()

	st, err := s.store.Load(ctx, id)
	if err != nil {
		return wizard.View{}, err
	}
	c, err := wizard.Restore(st, s.deps())
	if err != nil {
		return wizard.View{}, fmt.Errorf("restore session: %w", err)
	}

	fnErr := fn(c)
	view := c.View()
	if err := s.store.Save(ctx, id, c.State()); err != nil {
		return wizard.View{}, fmt.Errorf("save session: %w", err)
	}
	return view, fnErr
}

// Close discards the session and starts a fresh one of the same flow.
func (s *Service) Close(ctx context.Context, id string) (string, wizard.View, error) {
	flow, err := s.discard(ctx, id)
	if err != nil {
		return "", wizard.View{}, err
	}
	return s.Create(ctx, flow)
}

// discard deletes the session under its lock so a queued Do finds it gone.
func (s *Service) discard(ctx context.Context, id string) (string, error) {
	e := s.entry(id)
	e.mu.Lock()
	defer e.mu.Unlock()

	st, err := s.store.Load(ctx, id)
	if err != nil {
		return "", err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return "", fmt.Errorf("delete session: %w", err)
	}
	s.forget(id)
	return st.Flow, nil
}

// Search runs a debounced address search for the session. The debounce wait
// happens outside the session lock so a newer query can supersede it; the
// superseded call returns location.ErrSuperseded.
func (s *Service) Search(ctx context.Context, id, query string) ([]api.Location, wizard.View, error) {
	if _, err := s.store.Load(ctx, id); err != nil {
		return nil, wizard.View{}, err
	}
	if s.opts.Provider == nil {
		return nil, wizard.View{}, errors.New("location search is not configured")
	}

	results, searchErr := s.searcher(id).Search(ctx, query)
	if errors.Is(searchErr, location.ErrSuperseded) || errors.Is(searchErr, context.Canceled) {
		return nil, wizard.View{}, searchErr
	}
	if searchErr != nil {
		s.logger.Warn("location search failed", "session_id", id, "error", searchErr)
	}

	var out []api.Location
	view, err := s.Do(ctx, id, func(c *wizard.Controller) error {
		var err error
		out, err = c.ReportSearch(results, searchErr)
		return err
	})
	return out, view, err
}

func (s *Service) entry(id string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, e := range s.entries {
		if now.Sub(e.touched) > s.opts.TTL {
			delete(s.entries, k)
		}
	}
	e, ok := s.entries[id]
	if !ok {
		e = &entry{}
		s.entries[id] = e
	}
	e.touched = now
	return e
}

func (s *Service) searcher(id string) *location.Searcher {
	e := s.entry(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.searcher == nil {
		e.searcher = location.NewSearcher(s.opts.Provider, s.opts.Debounce)
	}
	return e.searcher
}

func (s *Service) forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}
