package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const recentlyViewedKeyPrefix = "recently_viewed:"

// RecentlyViewed tracks the auctions a user opened most recently, one
// capped Redis list per user
type RecentlyViewed struct {
	client *redis.Client
	limit  int
	ttl    time.Duration
}

// NewRecentlyViewed creates a tracker keeping at most limit entries per user
func NewRecentlyViewed(client *redis.Client, limit int, ttl time.Duration) *RecentlyViewed {
	return &RecentlyViewed{client: client, limit: limit, ttl: ttl}
}

// Record moves the auction to the front of the user's list, dropping any
// older occurrence and trimming to the cap
func (rv *RecentlyViewed) Record(ctx context.Context, userID, auctionID uuid.UUID) error {
	key := recentlyViewedKeyPrefix + userID.String()

	pipe := rv.client.TxPipeline()
	pipe.LRem(ctx, key, 0, auctionID.String())
	pipe.LPush(ctx, key, auctionID.String())
	pipe.LTrim(ctx, key, 0, int64(rv.limit-1))
	pipe.Expire(ctx, key, rv.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record viewed auction: %w", err)
	}
	return nil
}

// List returns the user's recently viewed auction IDs, most recent first.
// Unparseable entries are skipped.
func (rv *RecentlyViewed) List(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	key := recentlyViewedKeyPrefix + userID.String()

	values, err := rv.client.LRange(ctx, key, 0, int64(rv.limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list viewed auctions: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, parseErr := uuid.Parse(v)
		if parseErr != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
