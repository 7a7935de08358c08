// Package cache provides read-through caching for computed scores.
// Scoring a pair is pure computation, so cached results never go
// stale within their TTL; re-scoring simply overwrites the entry.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/fedscout/fedscout/internal/domain"
)

// DefaultTTL bounds how long a computed score is served without
// recomputation.
const DefaultTTL = 15 * time.Minute

// ScoreCache stores computed relevance scores keyed by the
// (organization, opportunity) pair.
type ScoreCache interface {
	GetRelevance(ctx context.Context, orgID, oppID uuid.UUID) (*domain.RelevanceScore, bool, error)
	SetRelevance(ctx context.Context, score *domain.RelevanceScore) error
	InvalidateRelevance(ctx context.Context, orgID, oppID uuid.UUID) error
}

func relevanceKey(orgID, oppID uuid.UUID) string {
	return fmt.Sprintf("relevance:%s:%s", orgID, oppID)
}

// RedisScoreCache backs ScoreCache with Redis. Values are stored as
// JSON with a TTL; a cache outage degrades to recomputation rather
// than failing the request, so Get treats connection errors as misses
// and reports them to the caller separately.
type RedisScoreCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisScoreCache creates a Redis-backed score cache. A
// non-positive ttl falls back to DefaultTTL.
func NewRedisScoreCache(client *redis.Client, ttl time.Duration) *RedisScoreCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisScoreCache{client: client, ttl: ttl}
}

func (c *RedisScoreCache) GetRelevance(ctx context.Context, orgID, oppID uuid.UUID) (*domain.RelevanceScore, bool, error) {
	raw, err := c.client.Get(ctx, relevanceKey(orgID, oppID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get failed: %w", err)
	}
	var score domain.RelevanceScore
	if err := json.Unmarshal(raw, &score); err != nil {
		// A corrupt entry is a miss; the recompute path overwrites it.
		return nil, false, nil
	}
	return &score, true, nil
}

func (c *RedisScoreCache) SetRelevance(ctx context.Context, score *domain.RelevanceScore) error {
	raw, err := json.Marshal(score)
	if err != nil {
		return fmt.Errorf("failed to encode score: %w", err)
	}
	key := relevanceKey(score.OrganizationID, score.OpportunityID)
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set failed: %w", err)
	}
	return nil
}

func (c *RedisScoreCache) InvalidateRelevance(ctx context.Context, orgID, oppID uuid.UUID) error {
	if err := c.client.Del(ctx, relevanceKey(orgID, oppID)).Err(); err != nil {
		return fmt.Errorf("cache delete failed: %w", err)
	}
	return nil
}
