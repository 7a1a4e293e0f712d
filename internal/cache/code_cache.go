package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CodeCache reserves room codes in Redis so two hosts generating the same
// code at the same time cannot both create a room with it. Reservations
// expire with the TTL; the Mongo unique index backs this up.
type CodeCache interface {
	// Reserve claims the code atomically. Returns false when the code is
	// already taken.
	Reserve(ctx context.Context, code string) (bool, error)
	Release(ctx context.Context, code string) error
	Exists(ctx context.Context, code string) (bool, error)
}

type codeCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCodeCache(client *redis.Client, ttl time.Duration) CodeCache {
	return &codeCache{client: client, ttl: ttl}
}

func (c *codeCache) key(code string) string {
	return fmt.Sprintf("room:code:%s", code)
}

func (c *codeCache) Reserve(ctx context.Context, code string) (bool, error) {
	return c.client.SetNX(ctx, c.key(code), 1, c.ttl).Result()
}

func (c *codeCache) Release(ctx context.Context, code string) error {
	return c.client.Del(ctx, c.key(code)).Err()
}

func (c *codeCache) Exists(ctx context.Context, code string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(code)).Result()
	return n > 0, err
}
