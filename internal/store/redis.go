// internal/store/redis.go
//
// Redis-backed Store for running several engine processes against one
// session pool. Sessions are JSON snapshots under "<prefix><id>" with a TTL
// refreshed on every write, so Redis itself expires abandoned sessions.
//
// Update uses WATCH/MULTI: if another writer touches the key between the
// read and the commit, the transaction aborts and is retried.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/robalobadob/wordle/apps/go-engine/internal/game"
)

const (
	defaultKeyPrefix  = "wordle:session:"
	defaultMaxRetries = 10
)

// Redis is a Store backed by a Redis server.
type Redis struct {
	client     *redis.Client
	prefix     string
	ttl        time.Duration // 0 = no expiry
	maxRetries int
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{
		client:     client,
		prefix:     defaultKeyPrefix,
		ttl:        ttl,
		maxRetries: defaultMaxRetries,
	}
}

// OpenRedis parses a redis:// URL, connects and pings the server.
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (r *Redis) key(id string) string { return r.prefix + id }

// Create stores the game only if the key is free.
func (r *Redis) Create(ctx context.Context, g *game.Game) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	ok, err := r.client.SetNX(ctx, r.key(g.ID), data, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	if !ok {
		return ErrExists
	}
	return nil
}

// Get loads and decodes a session.
func (r *Redis) Get(ctx context.Context, id string) (*game.Game, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return decode(data)
}

// Update runs fn inside an optimistic transaction on the session key.
func (r *Redis) Update(ctx context.Context, id string, fn func(g *game.Game) error) (*game.Game, error) {
	key := r.key(id)
	for i := 0; i < r.maxRetries; i++ {
		var out *game.Game
		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					return notFound(id)
				}
				return fmt.Errorf("redis get: %w", err)
			}
			g, err := decode(data)
			if err != nil {
				return err
			}
			if err := fn(g); err != nil {
				return err
			}
			buf, err := json.Marshal(g)
			if err != nil {
				return fmt.Errorf("encode session: %w", err)
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, buf, r.ttl)
				return nil
			})
			out = g
			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, game.Errorf(game.KindInternal, "session %q: update retries exhausted", id)
}

// Delete removes the session key.
func (r *Redis) Delete(ctx context.Context, id string) error {
	n, err := r.client.Del(ctx, r.key(id)).Result()
	if err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

func decode(data []byte) (*game.Game, error) {
	var g game.Game
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &g, nil
}
