package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores each session as a hash at session:<sid> with the
// flash queue in a sibling list at session:<sid>:flash. Both keys expire
// together after TTL of inactivity.
type RedisBackend struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisBackend(client *redis.Client, ttl time.Duration) *RedisBackend {
	return &RedisBackend{Client: client, TTL: ttl}
}

func sessionKey(sid string) string { return "session:" + sid }
func flashKey(sid string) string   { return "session:" + sid + ":flash" }

func (b *RedisBackend) Put(ctx context.Context, sid, field, value string) error {
	pipe := b.Client.TxPipeline()
	pipe.HSet(ctx, sessionKey(sid), field, value)
	pipe.Expire(ctx, sessionKey(sid), b.TTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (b *RedisBackend) Get(ctx context.Context, sid, field string) (string, error) {
	v, err := b.Client.HGet(ctx, sessionKey(sid), field).Result()
	if err == redis.Nil {
		return "", nil
	}
	return v, err
}

func (b *RedisBackend) Delete(ctx context.Context, sid string) error {
	return b.Client.Del(ctx, sessionKey(sid), flashKey(sid)).Err()
}

func (b *RedisBackend) PushFlash(ctx context.Context, sid string, f Flash) error {
	body, err := json.Marshal(f)
	if err != nil {
		return err
	}
	pipe := b.Client.TxPipeline()
	pipe.RPush(ctx, flashKey(sid), body)
	pipe.Expire(ctx, flashKey(sid), b.TTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (b *RedisBackend) PopFlashes(ctx context.Context, sid string) ([]Flash, error) {
	pipe := b.Client.TxPipeline()
	items := pipe.LRange(ctx, flashKey(sid), 0, -1)
	pipe.Del(ctx, flashKey(sid))
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}
	raw, err := items.Result()
	if err != nil && err != redis.Nil {
		return nil, err
	}
	flashes := make([]Flash, 0, len(raw))
	for _, r := range raw {
		var f Flash
		if err := json.Unmarshal([]byte(r), &f); err != nil {
			continue
		}
		flashes = append(flashes, f)
	}
	return flashes, nil
}

var _ Backend = (*RedisBackend)(nil)
