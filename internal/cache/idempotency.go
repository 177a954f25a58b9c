package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// IdempotencyEntry is what an Idempotency-Key resolves to: the payment it
// created and the status that payment was created with.
type IdempotencyEntry struct {
	PaymentID string `json:"paymentId"`
	Status    string `json:"status"`
}

// IdempotencyStore remembers which payment an Idempotency-Key produced.
type IdempotencyStore interface {
	// Get returns the entry stored for key.
	Get(ctx context.Context, key string) (entry IdempotencyEntry, found bool, err error)
	// SetNX stores key -> entry unless key is already present.
	SetNX(ctx context.Context, key string, entry IdempotencyEntry) (stored bool, err error)
}

// idempotencyKey returns the Redis key for a client-scoped idempotency key.
func idempotencyKey(key string) string {
	return fmt.Sprintf("idempotency:payment:%s", key)
}

// RedisIdempotencyStore keeps idempotency keys in Redis with a TTL.
type RedisIdempotencyStore struct {
	redis *RedisClient
	ttl   time.Duration
}

// NewRedisIdempotencyStore creates a Redis backed store.
func NewRedisIdempotencyStore(redis *RedisClient, ttl time.Duration) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{redis: redis, ttl: ttl}
}

func (s *RedisIdempotencyStore) Get(ctx context.Context, key string) (IdempotencyEntry, bool, error) {
	var entry IdempotencyEntry
	raw, found, err := s.redis.Get(ctx, idempotencyKey(key))
	if err != nil || !found {
		return entry, false, err
	}
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return entry, false, fmt.Errorf("decode idempotency entry: %w", err)
	}
	return entry, true, nil
}

func (s *RedisIdempotencyStore) SetNX(ctx context.Context, key string, entry IdempotencyEntry) (bool, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return false, err
	}
	return s.redis.SetNX(ctx, idempotencyKey(key), string(data), s.ttl)
}

type memoryEntry struct {
	entry     IdempotencyEntry
	expiresAt time.Time
}

// MemoryIdempotencyStore is the single-process fallback when Redis is not configured.
// Expired entries are ignored on read and removed by Sweep.
type MemoryIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryIdempotencyStore creates an in-memory store.
func NewMemoryIdempotencyStore(ttl time.Duration) *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryIdempotencyStore) Get(_ context.Context, key string) (IdempotencyEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || !s.now().Before(e.expiresAt) {
		return IdempotencyEntry{}, false, nil
	}
	return e.entry, true, nil
}

func (s *MemoryIdempotencyStore) SetNX(_ context.Context, key string, entry IdempotencyEntry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.entries[key]; ok && now.Before(e.expiresAt) {
		return false, nil
	}
	s.entries[key] = memoryEntry{entry: entry, expiresAt: now.Add(s.ttl)}
	return true, nil
}

// Sweep drops expired entries and returns how many were removed.
func (s *MemoryIdempotencyStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}
