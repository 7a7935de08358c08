package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fedscout/fedscout/internal/domain"
)

// MemoryScoreCache is an in-process ScoreCache with TTL expiry and LRU
// eviction. It serves single-instance deployments and tests; clustered
// deployments use RedisScoreCache so instances share results.
type MemoryScoreCache struct {
	mu         sync.RWMutex
	entries    map[string]*memoryEntry
	maxEntries int
	ttl        time.Duration

	hits   int64
	misses int64

	stopCh   chan struct{}
	stopOnce sync.Once
}

type memoryEntry struct {
	score    *domain.RelevanceScore
	expires  time.Time
	accessed time.Time
}

// NewMemoryScoreCache creates an in-process score cache holding at
// most maxEntries results.
func NewMemoryScoreCache(maxEntries int, ttl time.Duration) *MemoryScoreCache {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &MemoryScoreCache{
		entries:    make(map[string]*memoryEntry),
		maxEntries: maxEntries,
		ttl:        ttl,
		stopCh:     make(chan struct{}),
	}
	go c.cleanup()
	return c
}

func (c *MemoryScoreCache) GetRelevance(ctx context.Context, orgID, oppID uuid.UUID) (*domain.RelevanceScore, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[relevanceKey(orgID, oppID)]
	if !ok || time.Now().After(entry.expires) {
		c.misses++
		return nil, false, nil
	}
	entry.accessed = time.Now()
	c.hits++
	return entry.score, true, nil
}

func (c *MemoryScoreCache) SetRelevance(ctx context.Context, score *domain.RelevanceScore) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxEntries {
		c.evictLRU()
	}
	c.entries[relevanceKey(score.OrganizationID, score.OpportunityID)] = &memoryEntry{
		score:    score,
		expires:  time.Now().Add(c.ttl),
		accessed: time.Now(),
	}
	return nil
}

func (c *MemoryScoreCache) InvalidateRelevance(ctx context.Context, orgID, oppID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, relevanceKey(orgID, oppID))
	return nil
}

// HitRatio reports the fraction of lookups served from cache.
func (c *MemoryScoreCache) HitRatio() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := c.hits + c.misses
	if total == 0 {
		return 0
	}
	return float64(c.hits) / float64(total)
}

// Stop shuts down the cleanup goroutine.
func (c *MemoryScoreCache) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}

// evictLRU removes the least recently accessed entry. Caller holds the
// write lock.
func (c *MemoryScoreCache) evictLRU() {
	var oldestKey string
	oldest := time.Now()
	for key, entry := range c.entries {
		if entry.accessed.Before(oldest) {
			oldest = entry.accessed
			oldestKey = key
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

func (c *MemoryScoreCache) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.removeExpired()
		}
	}
}

func (c *MemoryScoreCache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, entry := range c.entries {
		if now.After(entry.expires) {
			delete(c.entries, key)
		}
	}
}
