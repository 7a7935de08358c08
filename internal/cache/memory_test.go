package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedscout/fedscout/internal/domain"
)

func testScore(orgID, oppID uuid.UUID) *domain.RelevanceScore {
	return &domain.RelevanceScore{
		ID:             uuid.New(),
		OrganizationID: orgID,
		OpportunityID:  oppID,
		OverallScore:   0.8123,
		ModelVersion:   "1.0.0",
	}
}

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := NewMemoryScoreCache(10, time.Minute)
	defer c.Stop()
	ctx := context.Background()

	orgID, oppID := uuid.New(), uuid.New()

	_, ok, err := c.GetRelevance(ctx, orgID, oppID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetRelevance(ctx, testScore(orgID, oppID)))

	got, ok, err := c.GetRelevance(ctx, orgID, oppID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0.8123, got.OverallScore)

	require.NoError(t, c.InvalidateRelevance(ctx, orgID, oppID))
	_, ok, _ = c.GetRelevance(ctx, orgID, oppID)
	assert.False(t, ok)
}

func TestMemoryCache_ExpiredEntryIsAMiss(t *testing.T) {
	c := NewMemoryScoreCache(10, time.Nanosecond)
	defer c.Stop()
	ctx := context.Background()

	orgID, oppID := uuid.New(), uuid.New()
	require.NoError(t, c.SetRelevance(ctx, testScore(orgID, oppID)))

	time.Sleep(time.Millisecond)
	_, ok, err := c.GetRelevance(ctx, orgID, oppID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCache_EvictsLRUAtCapacity(t *testing.T) {
	c := NewMemoryScoreCache(2, time.Minute)
	defer c.Stop()
	ctx := context.Background()

	orgID := uuid.New()
	oldOpp, midOpp, newOpp := uuid.New(), uuid.New(), uuid.New()

	require.NoError(t, c.SetRelevance(ctx, testScore(orgID, oldOpp)))
	time.Sleep(time.Millisecond)
	require.NoError(t, c.SetRelevance(ctx, testScore(orgID, midOpp)))
	time.Sleep(time.Millisecond)

	// Touch the older entry so the middle one becomes LRU.
	_, ok, _ := c.GetRelevance(ctx, orgID, oldOpp)
	require.True(t, ok)
	time.Sleep(time.Millisecond)

	require.NoError(t, c.SetRelevance(ctx, testScore(orgID, newOpp)))

	_, ok, _ = c.GetRelevance(ctx, orgID, oldOpp)
	assert.True(t, ok)
	_, ok, _ = c.GetRelevance(ctx, orgID, midOpp)
	assert.False(t, ok)
	_, ok, _ = c.GetRelevance(ctx, orgID, newOpp)
	assert.True(t, ok)
}

func TestMemoryCache_HitRatio(t *testing.T) {
	c := NewMemoryScoreCache(10, time.Minute)
	defer c.Stop()
	ctx := context.Background()

	orgID, oppID := uuid.New(), uuid.New()
	require.NoError(t, c.SetRelevance(ctx, testScore(orgID, oppID)))

	c.GetRelevance(ctx, orgID, oppID)
	c.GetRelevance(ctx, orgID, uuid.New())

	assert.InDelta(t, 0.5, c.HitRatio(), 1e-9)
}
