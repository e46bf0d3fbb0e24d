package cache

import (
	"brainarcade/internal/model"
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// ProfileCache holds read-through copies of behavioral profiles
type ProfileCache interface {
	Get(ctx context.Context, userID string) (*model.UserProfile, error)
	Set(ctx context.Context, profile *model.UserProfile) error
	Invalidate(ctx context.Context, userID string) error
}

type profileCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProfileCache creates a profile cache whose entries expire after ttl
func NewProfileCache(client *redis.Client, ttl time.Duration) ProfileCache {
	return &profileCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *profileCache) key(userID string) string {
	return fmt.Sprintf("profile:%s", userID)
}

// Get returns nil, nil on a miss
func (c *profileCache) Get(ctx context.Context, userID string) (*model.UserProfile, error) {
	data, err := c.client.Get(ctx, c.key(userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var profile model.UserProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *profileCache) Set(ctx context.Context, profile *model.UserProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(profile.UserID), data, c.ttl).Err()
}

func (c *profileCache) Invalidate(ctx context.Context, userID string) error {
	return c.client.Del(ctx, c.key(userID)).Err()
}
