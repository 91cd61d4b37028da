package otp

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix      = "otp:v1:"
	attemptsPrefix = "otp:v1:attempts:"
)

// ErrNotFound is returned when no code is stored for a phone number.
var ErrNotFound = errors.New("otp not found")

// Record is an issued code at rest.
type Record struct {
	Hash      []byte    `json:"hash"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store persists issued codes keyed by phone number.
type Store interface {
	Save(ctx context.Context, phone string, rec Record, ttl time.Duration) error
	Get(ctx context.Context, phone string) (Record, error)
	// IncrementAttempts records a failed verification and returns the
	// number of failures so far.
	IncrementAttempts(ctx context.Context, phone string, ttl time.Duration) (int, error)
	Delete(ctx context.Context, phone string) error
}

// RedisStore keeps codes in Redis with a TTL.
type RedisStore struct {
	cache *redis.Client
}

// NewRedisStore builds a Redis backed store.
func NewRedisStore(cache *redis.Client) *RedisStore {
	return &RedisStore{cache: cache}
}

// Save stores rec and resets the failure counter.
func (s *RedisStore) Save(ctx context.Context, phone string, rec Record, ttl time.Duration) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = s.cache.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, keyPrefix+phone, payload, ttl)
		pipe.Del(ctx, attemptsPrefix+phone)
		return nil
	})
	return err
}

func (s *RedisStore) Get(ctx context.Context, phone string) (Record, error) {
	raw, err := s.cache.Get(ctx, keyPrefix+phone).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *RedisStore) IncrementAttempts(ctx context.Context, phone string, ttl time.Duration) (int, error) {
	key := attemptsPrefix + phone
	cnt, err := s.cache.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if cnt == 1 && ttl > 0 {
		s.cache.Expire(ctx, key, ttl)
	}
	return int(cnt), nil
}

func (s *RedisStore) Delete(ctx context.Context, phone string) error {
	return s.cache.Del(ctx, keyPrefix+phone, attemptsPrefix+phone).Err()
}

type memoryEntry struct {
	rec      Record
	attempts int
	expires  time.Time
}

type memoryStore struct {
	mu      sync.Mutex
	now     func() time.Time
	storage map[string]*memoryEntry
}

// NewMemoryStore constructs an in-memory store for development and tests.
func NewMemoryStore() Store {
	return &memoryStore{now: time.Now, storage: make(map[string]*memoryEntry)}
}

func (s *memoryStore) Save(_ context.Context, phone string, rec Record, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storage[phone] = &memoryEntry{rec: rec, expires: s.now().Add(ttl)}
	return nil
}

func (s *memoryStore) Get(_ context.Context, phone string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(phone)
	if !ok {
		return Record{}, ErrNotFound
	}
	return e.rec, nil
}

func (s *memoryStore) IncrementAttempts(_ context.Context, phone string, _ time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(phone)
	if !ok {
		return 0, ErrNotFound
	}
	e.attempts++
	return e.attempts, nil
}

func (s *memoryStore) Delete(_ context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.storage, phone)
	return nil
}

func (s *memoryStore) live(phone string) (*memoryEntry, bool) {
	e, ok := s.storage[phone]
	if !ok {
		return nil, false
	}
	if !s.now().Before(e.expires) {
		delete(s.storage, phone)
		return nil, false
	}
	return e, true
}
