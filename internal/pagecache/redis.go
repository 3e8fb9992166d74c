package pagecache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "cfgym:page:"

type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// OpenRedis connects to the redis instance at `url` (ex. redis://localhost:6379/0).
func OpenRedis(ctx context.Context, url string, ttl time.Duration) (Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return Redis{}, err
	}
	client := redis.NewClient(opts)
	err = client.Ping(ctx).Err()
	if err != nil {
		client.Close()
		return Redis{}, err
	}
	return Redis{client: client, ttl: ttl}, nil
}

func (r Redis) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	page, err := r.client.Get(ctx, redisKeyPrefix+key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return page, true, nil
}

func (r Redis) Put(ctx context.Context, key Key, page []byte) error {
	return r.client.Set(ctx, redisKeyPrefix+key.String(), page, r.ttl).Err()
}

func (r Redis) Close() error {
	return r.client.Close()
}
