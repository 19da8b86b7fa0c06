package cache

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

const cleanupInterval = 5 * time.Minute

// MemoryStore is a simple in-memory key-value store with expiration
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	clock clock.Clock
	stop  chan struct{}
	once  sync.Once
}

type memoryItem struct {
	value      string
	expireTime time.Time
}

// NewMemoryStore creates a new in-memory store. A nil clock uses wall time.
func NewMemoryStore(clk clock.Clock) *MemoryStore {
	if clk == nil {
		clk = clock.New()
	}
	store := &MemoryStore{
		items: make(map[string]memoryItem),
		clock: clk,
		stop:  make(chan struct{}),
	}

	go store.cleanupExpired()

	return store
}

// Set stores a key-value pair with expiration
func (ms *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.items[key] = memoryItem{value: value, expireTime: ms.clock.Now().Add(ttl)}
	return nil
}

// SetNX stores the pair only if key is absent or expired
func (ms *MemoryStore) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := ms.clock.Now()
	if item, ok := ms.items[key]; ok && now.Before(item.expireTime) {
		return false, nil
	}
	ms.items[key] = memoryItem{value: value, expireTime: now.Add(ttl)}
	return true, nil
}

// Get retrieves a live value by key
func (ms *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	item, exists := ms.items[key]
	if !exists || !ms.clock.Now().Before(item.expireTime) {
		return "", false, nil
	}
	return item.value, true, nil
}

// Delete removes a key
func (ms *MemoryStore) Delete(_ context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.items, key)
	return nil
}

// CompareAndDelete removes key if it holds value. An expired match is
// removed but reported as absent.
func (ms *MemoryStore) CompareAndDelete(_ context.Context, key, value string) (bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	item, ok := ms.items[key]
	if !ok || item.value != value {
		return false, nil
	}
	delete(ms.items, key)
	return ms.clock.Now().Before(item.expireTime), nil
}

// Close stops the cleanup goroutine
func (ms *MemoryStore) Close() error {
	ms.once.Do(func() { close(ms.stop) })
	return nil
}

// cleanupExpired periodically removes expired items
func (ms *MemoryStore) cleanupExpired() {
	ticker := ms.clock.Ticker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ms.stop:
			return
		case <-ticker.C:
			ms.mu.Lock()
			now := ms.clock.Now()
			for key, item := range ms.items {
				if !now.Before(item.expireTime) {
					delete(ms.items, key)
				}
			}
			ms.mu.Unlock()
		}
	}
}

// size is used by tests
func (ms *MemoryStore) size() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.items)
}
