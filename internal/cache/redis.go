package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type Redis struct {
	client *redis.Client
}

// NewRedis создает кеш на базе Redis по адресу из конфигурации.
func NewRedis(addr string) *Redis {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	return &Redis{client: rdb}
}

// Get возвращает значение по ключу и признак попадания в кеш.
func (r *Redis) Get(ctx context.Context, key string) (string, bool) {
	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}

	return value, true
}

// Set сохраняет значение с заданным временем жизни.
func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// Close закрывает подключение к Redis.
func (r *Redis) Close() error {
	return r.client.Close()
}
