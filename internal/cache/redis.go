// Package cache хранит в Redis JSON-представления часто читаемых данных (каталог книг).
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/magabrotheeeer/library-management/internal/config"
	"github.com/redis/go-redis/v9"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// KeyBooks — ключ списка всех книг. Сбрасывается при любом изменении книг и выдач.
const KeyBooks = "books:all"

// Cache — JSON-кеш поверх redis.Client.
type Cache struct {
	Db *redis.Client
}

// InitServer подключается к Redis и проверяет соединение.
func InitServer(ctx context.Context, cfg config.RedisConnection) (*Cache, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddress,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		Username:     cfg.RedisUser,
		MaxRetries:   cfg.RedisMaxRetries,
		DialTimeout:  cfg.RedisDialTimeout,
		ReadTimeout:  cfg.RedisTimeout,
		WriteTimeout: cfg.RedisTimeout,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Cache{Db: db}, nil
}

// Get читает значение по ключу в result. Возвращает false, если ключа нет.
func (c *Cache) Get(ctx context.Context, key string, result any) (bool, error) {
	const op = "cache.Get"
	val, err := c.Db.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if err := json.Unmarshal(val, result); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// Set сохраняет value в JSON с временем жизни expiration.
func (c *Cache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	const op = "cache.Set"
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := c.Db.Set(ctx, key, data, expiration).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Invalidate удаляет ключ.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	const op = "cache.Invalidate"
	if err := c.Db.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает соединение с Redis.
func (c *Cache) Close() error {
	return c.Db.Close()
}
