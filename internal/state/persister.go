// Package state provides snapshot persistence shared by the per-session
// client stores. Each store serializes its full state to one JSON blob
// per session; a Persister keeps those blobs between requests.
package state

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kiranakart/storefront/pkg/redis"
)

// ErrNotFound is returned when no snapshot exists for a store/session pair.
var ErrNotFound = errors.New("state: snapshot not found")

// Persister stores and restores one JSON snapshot per store per session.
type Persister interface {
	Load(ctx context.Context, store, sessionID string) ([]byte, error)
	Save(ctx context.Context, store, sessionID string, snapshot []byte) error
	Delete(ctx context.Context, store, sessionID string) error
}

// RedisPersister keeps snapshots in Redis under namespaced state keys.
type RedisPersister struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisPersister wraps a connected Redis client. A zero TTL keeps
// snapshots until the session is explicitly cleared.
func NewRedisPersister(client *redis.Client, ttl time.Duration) (*RedisPersister, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	return &RedisPersister{client: client, ttl: ttl}, nil
}

// Load returns the snapshot bytes or ErrNotFound.
func (p *RedisPersister) Load(ctx context.Context, store, sessionID string) ([]byte, error) {
	raw, err := p.client.Get(ctx, p.client.StateKey(store, sessionID))
	if err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return []byte(raw), nil
}

// Save writes the snapshot, refreshing the TTL on every change.
func (p *RedisPersister) Save(ctx context.Context, store, sessionID string, snapshot []byte) error {
	return p.client.Set(ctx, p.client.StateKey(store, sessionID), string(snapshot), p.ttl)
}

// Delete removes the snapshot for a store/session pair.
func (p *RedisPersister) Delete(ctx context.Context, store, sessionID string) error {
	return p.client.Del(ctx, p.client.StateKey(store, sessionID))
}

// MemoryPersister is an in-process Persister used by tests and local runs
// without Redis.
type MemoryPersister struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
}

// NewMemoryPersister builds an empty in-memory persister.
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{snapshots: make(map[string][]byte)}
}

// Load returns a copy of the stored snapshot or ErrNotFound.
func (p *MemoryPersister) Load(_ context.Context, store, sessionID string) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	raw, ok := p.snapshots[store+":"+sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

// Save stores a copy of the snapshot bytes.
func (p *MemoryPersister) Save(_ context.Context, store, sessionID string, snapshot []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	stored := make([]byte, len(snapshot))
	copy(stored, snapshot)
	p.snapshots[store+":"+sessionID] = stored
	return nil
}

// Delete removes the snapshot if present.
func (p *MemoryPersister) Delete(_ context.Context, store, sessionID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.snapshots, store+":"+sessionID)
	return nil
}
