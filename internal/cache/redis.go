// Package cache хранит в redis идентификаторы использованных токенов восстановления.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/clinic-api/internal/config"
)

const consumedPrefix = "recovery:consumed:"

type Cache struct {
	Db *redis.Client
}

func InitServer(ctx context.Context, cfg config.RedisConnection) (*Cache, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Cache{Db: db}, nil
}

// Claim помечает jti использованным. false означает, что токен уже был использован.
func (c *Cache) Claim(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	const op = "cache.Claim"
	if ttl <= 0 {
		ttl = time.Second
	}
	ok, err := c.Db.SetNX(ctx, consumedPrefix+jti, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return ok, nil
}

// Release снимает отметку, если сброс пароля не удалось сохранить.
func (c *Cache) Release(ctx context.Context, jti string) error {
	const op = "cache.Release"
	if err := c.Db.Del(ctx, consumedPrefix+jti).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.Db.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.Db.Close()
}
