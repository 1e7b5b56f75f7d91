package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// JobStatus tracks one serve-mode compression job.
type JobStatus struct {
	ID      string `json:"id"`
	Status  string `json:"status"` // queued, processing, done, error
	Error   string `json:"error,omitempty"`
	Stage   string `json:"stage,omitempty"` // scan, encode
	File    string `json:"file,omitempty"`  // file currently being encoded
	Percent int    `json:"percent,omitempty"`

	Encoded  int   `json:"encoded,omitempty"`
	Skipped  int   `json:"skipped,omitempty"`
	Failed   int   `json:"failed,omitempty"`
	InBytes  int64 `json:"in_bytes,omitempty"`
	OutBytes int64 `json:"out_bytes,omitempty"`
}

type Store interface {
	Set(ctx context.Context, j *JobStatus, ttl time.Duration) error
	Get(ctx context.Context, id string) (*JobStatus, bool)
}

// Redis-backed store with graceful fallback to memory when redis is nil.
type RedisStore struct {
	Rdb *redis.Client
	mem *MemoryStore
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{Rdb: rdb, mem: NewMemoryStore()}
}

func (s *RedisStore) Set(ctx context.Context, j *JobStatus, ttl time.Duration) error {
	if s.Rdb == nil {
		return s.mem.Set(ctx, j, ttl)
	}
	b, _ := json.Marshal(j)
	return s.Rdb.Set(ctx, "job:"+j.ID, b, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, id string) (*JobStatus, bool) {
	if s.Rdb == nil {
		return s.mem.Get(ctx, id)
	}
	v, err := s.Rdb.Get(ctx, "job:"+id).Result()
	if err != nil {
		return nil, false
	}
	var j JobStatus
	if json.Unmarshal([]byte(v), &j) != nil {
		return nil, false
	}
	return &j, true
}

// Simple in-memory implementation
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]JobStatus
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{data: make(map[string]JobStatus)} }

func (m *MemoryStore) Set(_ context.Context, j *JobStatus, _ time.Duration) error {
	m.mu.Lock()
	m.data[j.ID] = *j
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*JobStatus, bool) {
	m.mu.RLock()
	v, ok := m.data[id]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	vv := v
	return &vv, true
}
