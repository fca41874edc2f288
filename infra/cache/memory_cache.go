package cache

import (
	"context"
	"sync"
	"time"

	"github.com/amirasaad/pos/pkg/domain/offer"
)

// MemoryOfferCache implements cache.OfferCache using in-memory storage.
type MemoryOfferCache struct {
	cache map[string]*cacheEntry
	mu    sync.RWMutex

	done      chan struct{}
	closeOnce sync.Once
}

// NewMemoryOfferCache creates a new in-memory offer cache.
func NewMemoryOfferCache() *MemoryOfferCache {
	c := &MemoryOfferCache{
		cache: make(map[string]*cacheEntry),
		done:  make(chan struct{}),
	}

	// Start cleanup goroutine
	go c.cleanup()

	return c
}

// Close stops the cleanup goroutine. Safe to call more than once.
func (c *MemoryOfferCache) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

// Get retrieves a cached candidate set. Missing or expired entries
// return nil, nil.
func (c *MemoryOfferCache) Get(ctx context.Context, key string) ([]*offer.Offer, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.cache[key]
	if !exists {
		return nil, nil
	}

	if time.Now().After(entry.expiresAt) {
		return nil, nil
	}

	return entry.offers, nil
}

// Set stores a candidate set with a TTL.
func (c *MemoryOfferCache) Set(ctx context.Context, key string, offers []*offer.Offer, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache[key] = &cacheEntry{
		offers:    offers,
		expiresAt: time.Now().Add(ttl),
	}

	return nil
}

// Delete removes a candidate set from cache.
func (c *MemoryOfferCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.cache, key)
	return nil
}

// cleanup removes expired entries from cache.
func (c *MemoryOfferCache) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, entry := range c.cache {
				if now.After(entry.expiresAt) {
					delete(c.cache, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

type cacheEntry struct {
	offers    []*offer.Offer
	expiresAt time.Time
}
