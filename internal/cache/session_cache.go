package cache

import (
	"brainarcade/internal/model"
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// SessionCache stores live session snapshots so a session can be resumed
// by another process or after a restart.
type SessionCache interface {
	Set(ctx context.Context, state *model.SessionState) error
	Get(ctx context.Context, sessionID string) (*model.SessionState, error)
	Delete(ctx context.Context, sessionID string) error
	ActiveForUser(ctx context.Context, userID string) ([]string, error)
}

type sessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionCache(client *redis.Client, ttl time.Duration) SessionCache {
	return &sessionCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *sessionCache) key(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

func (c *sessionCache) userKey(userID string) string {
	return fmt.Sprintf("user:%s:sessions", userID)
}

func (c *sessionCache) Set(ctx context.Context, state *model.SessionState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, c.key(state.SessionID), data, c.ttl)
	if state.UserID != "" {
		pipe.SAdd(ctx, c.userKey(state.UserID), state.SessionID)
		pipe.Expire(ctx, c.userKey(state.UserID), c.ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// Get returns nil, nil when the snapshot expired or never existed
func (c *sessionCache) Get(ctx context.Context, sessionID string) (*model.SessionState, error) {
	data, err := c.client.Get(ctx, c.key(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var state model.SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *sessionCache) Delete(ctx context.Context, sessionID string) error {
	state, err := c.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, c.key(sessionID))
	if state != nil && state.UserID != "" {
		pipe.SRem(ctx, c.userKey(state.UserID), sessionID)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// ActiveForUser lists session ids whose snapshots are still live
func (c *sessionCache) ActiveForUser(ctx context.Context, userID string) ([]string, error) {
	ids, err := c.client.SMembers(ctx, c.userKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	active := make([]string, 0, len(ids))
	for _, id := range ids {
		n, err := c.client.Exists(ctx, c.key(id)).Result()
		if err != nil {
			return nil, err
		}
		if n > 0 {
			active = append(active, id)
		}
	}
	return active, nil
}
