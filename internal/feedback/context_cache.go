package feedback

import (
	"context"
	"sync"
	"time"

	"tutor/ai/internal/models"
)

// ContextCache stores request contexts temporarily for feedback collection
// Uses in-memory storage with TTL to avoid database overhead
type ContextCache struct {
	cache map[string]*cacheEntry
	mu    sync.RWMutex
	ttl   time.Duration
	done  chan struct{}
	once  sync.Once
}

type cacheEntry struct {
	context   *models.RequestContext
	expiresAt time.Time
}

var _ ContextStore = (*ContextCache)(nil)

// NewContextCache creates a new context cache with the specified TTL
func NewContextCache(ttl time.Duration) *ContextCache {
	return newContextCache(ttl, 5*time.Minute)
}

func newContextCache(ttl, cleanupInterval time.Duration) *ContextCache {
	cc := &ContextCache{
		cache: make(map[string]*cacheEntry),
		ttl:   ttl,
		done:  make(chan struct{}),
	}

	go cc.cleanupLoop(cleanupInterval)

	return cc
}

// Set stores a request context with TTL
func (cc *ContextCache) Set(_ context.Context, rc *models.RequestContext) error {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	cc.cache[rc.RequestID] = &cacheEntry{
		context:   rc,
		expiresAt: time.Now().Add(cc.ttl),
	}
	return nil
}

// Get retrieves a request context if it exists and hasn't expired
func (cc *ContextCache) Get(_ context.Context, requestID string) (*models.RequestContext, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	entry, exists := cc.cache[requestID]
	if !exists || time.Now().After(entry.expiresAt) {
		return nil, ErrContextNotFound
	}

	return entry.context, nil
}

// Delete removes a request context from cache
func (cc *ContextCache) Delete(_ context.Context, requestID string) error {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	delete(cc.cache, requestID)
	return nil
}

// Size returns the current number of cached contexts
func (cc *ContextCache) Size(context.Context) (int, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	return len(cc.cache), nil
}

// Close stops the cleanup goroutine.
func (cc *ContextCache) Close() {
	cc.once.Do(func() { close(cc.done) })
}

// cleanupLoop runs periodically to remove expired entries
func (cc *ContextCache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cc.cleanup()
		case <-cc.done:
			return
		}
	}
}

// cleanup removes expired entries from cache
func (cc *ContextCache) cleanup() {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	now := time.Now()
	for requestID, entry := range cc.cache {
		if now.After(entry.expiresAt) {
			delete(cc.cache, requestID)
		}
	}
}
