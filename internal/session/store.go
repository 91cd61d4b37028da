package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/realestate-agents/lead_wizard/internal/wizard"
)

const keyPrefix = "wizard:v1:"

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 30 * time.Minute

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = errors.New("wizard session not found")

// Store persists wizard state between requests.
type Store interface {
	Save(ctx context.Context, id string, st wizard.State) error
	Load(ctx context.Context, id string) (wizard.State, error)
	Delete(ctx context.Context, id string) error
}

// RedisStore keeps wizard state as JSON with a sliding TTL.
type RedisStore struct {
	cache *redis.Client
	ttl   time.Duration
}

// NewRedisStore builds a Redis backed session store.
func NewRedisStore(cache *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{cache: cache, ttl: ttl}
}

func (s *RedisStore) Save(ctx context.Context, id string, st wizard.State) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, keyPrefix+id, payload, s.ttl).Err()
}

func (s *RedisStore) Load(ctx context.Context, id string) (wizard.State, error) {
	raw, err := s.cache.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return wizard.State{}, ErrNotFound
	}
	if err != nil {
		return wizard.State{}, err
	}
	var st wizard.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return wizard.State{}, err
	}
	return st, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.cache.Del(ctx, keyPrefix+id).Err()
}

type memoryEntry struct {
	state   wizard.State
	expires time.Time
}

type memoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	storage map[string]memoryEntry
}

// NewMemoryStore constructs an in-memory session store for development and tests.
func NewMemoryStore(ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &memoryStore{ttl: ttl, now: time.Now, storage: make(map[string]memoryEntry)}
}

func (s *memoryStore) Save(_ context.Context, id string, st wizard.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, e := range s.storage {
		if !now.Before(e.expires) {
			delete(s.storage, k)
		}
	}
	s.storage[id] = memoryEntry{state: st, expires: now.Add(s.ttl)}
	return nil
}

func (s *memoryStore) Load(_ context.Context, id string) (wizard.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.storage[id]
	if !ok {
		return wizard.State{}, ErrNotFound
	}
	if !s.now().Before(e.expires) {
		delete(s.storage, id)
		return wizard.State{}, ErrNotFound
	}
	return e.state, nil
}

func (s *memoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.storage, id)
	return nil
}
