package leads

import (
	"context"
	"fmt"
	"sync"
)

// MemoryRepository keeps captured leads in arrival order. It backs the
// development profile when no database is configured.
type MemoryRepository struct {
	mu    sync.Mutex
	leads []Lead
	ids   map[string]struct{}
}

// NewMemoryRepository returns an empty in-memory lead log.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{ids: make(map[string]struct{})}
}

// Create appends a lead. Identifiers must be unique.
func (r *MemoryRepository) Create(_ context.Context, lead Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.ids[lead.ID]; dup {
		return fmt.Errorf("lead %s already captured", lead.ID)
	}
	r.ids[lead.ID] = struct{}{}
	r.leads = append(r.leads, lead)
	return nil
}
