package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// historyRetention bounds how long plays stay in a user's history
const historyRetention = 30 * 24 * time.Hour

// PlayHistoryCache keeps a per-user ZSET of game ids scored by last play time
type PlayHistoryCache interface {
	RecordPlay(ctx context.Context, userID, gameID string, at time.Time) error
	PlayedSince(ctx context.Context, userID string, since time.Time) (map[string]bool, error)
	MostRecent(ctx context.Context, userID string, limit int) ([]PlayEntry, error)
}

// PlayEntry is one game in a user's play history
type PlayEntry struct {
	GameID   string    `json:"gameId"`
	PlayedAt time.Time `json:"playedAt"`
}

type playHistoryCache struct {
	client *redis.Client
}

func NewPlayHistoryCache(client *redis.Client) PlayHistoryCache {
	return &playHistoryCache{
		client: client,
	}
}

func (c *playHistoryCache) key(userID string) string {
	return fmt.Sprintf("user:%s:plays", userID)
}

// RecordPlay upserts gameID with the play time and drops entries past retention
func (c *playHistoryCache) RecordPlay(ctx context.Context, userID, gameID string, at time.Time) error {
	key := c.key(userID)
	pipe := c.client.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(at.Unix()),
		Member: gameID,
	})
	pipe.ZRemRangeByScore(ctx, key, "-inf", "("+strconv.FormatInt(at.Add(-historyRetention).Unix(), 10))
	pipe.Expire(ctx, key, historyRetention)
	_, err := pipe.Exec(ctx)
	return err
}

func (c *playHistoryCache) PlayedSince(ctx context.Context, userID string, since time.Time) (map[string]bool, error) {
	ids, err := c.client.ZRangeByScore(ctx, c.key(userID), &redis.ZRangeBy{
		Min: strconv.FormatInt(since.Unix(), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, err
	}
	played := make(map[string]bool, len(ids))
	for _, id := range ids {
		played[id] = true
	}
	return played, nil
}

func (c *playHistoryCache) MostRecent(ctx context.Context, userID string, limit int) ([]PlayEntry, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, c.key(userID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]PlayEntry, len(results))
	for i, z := range results {
		entries[i] = PlayEntry{
			GameID:   z.Member.(string),
			PlayedAt: time.Unix(int64(z.Score), 0).UTC(),
		}
	}
	return entries, nil
}
