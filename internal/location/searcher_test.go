package location

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/realestate-agents/lead_wizard/internal/api"
)

type fakeProvider struct {
	mu      sync.Mutex
	queries []string
	err     error
}

func (f *fakeProvider) Search(_ context.Context, query string) ([]api.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return []api.Location{{Description: query + ", Seattle, WA"}}, nil
}

func (f *fakeProvider) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func TestSearchEmptyQuerySkipsProvider(t *testing.T) {
	provider := &fakeProvider{}
	s := NewSearcher(provider, time.Hour)

	start := time.Now()
	results, err := s.Search(context.Background(), "   ")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Fatalf("expected empty non-nil result, got %#v", results)
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Fatalf("empty query should not wait for debounce")
	}
	if len(provider.calls()) != 0 {
		t.Fatalf("expected no provider calls, got %v", provider.calls())
	}
}

func TestSearchOnlyLatestQueryFires(t *testing.T) {
	provider := &fakeProvider{}
	s := NewSearcher(provider, 50*time.Millisecond)
	ctx := context.Background()

	firstErr := make(chan error, 1)
	go func() {
		_, err := s.Search(ctx, "12 Pi")
		firstErr <- err
	}()

	waitPending(t, s)
	results, err := s.Search(ctx, "12 Pine")
	if err != nil {
		t.Fatalf("second search: %v", err)
	}
	if len(results) != 1 || results[0].Description != "12 Pine, Seattle, WA" {
		t.Fatalf("unexpected results %#v", results)
	}

	if err := <-firstErr; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected first search superseded, got %v", err)
	}
	if calls := provider.calls(); len(calls) != 1 || calls[0] != "12 Pine" {
		t.Fatalf("expected a single call for the latest query, got %v", calls)
	}
}

func TestSearchProviderFailureYieldsEmptyList(t *testing.T) {
	provider := &fakeProvider{err: errors.New("boom")}
	s := NewSearcher(provider, time.Millisecond)

	results, err := s.Search(context.Background(), "Main St")
	if err == nil {
		t.Fatal("expected error")
	}
	if results == nil || len(results) != 0 {
		t.Fatalf("expected empty list on failure, got %#v", results)
	}
}

func TestSearchContextCancelled(t *testing.T) {
	provider := &fakeProvider{}
	s := NewSearcher(provider, time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := s.Search(ctx, "Main"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if len(provider.calls()) != 0 {
		t.Fatalf("expected no provider calls")
	}
}

func waitPending(t *testing.T, s *Searcher) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		pending := s.pending != nil
		s.mu.Unlock()
		if pending {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("no pending search registered")
}
