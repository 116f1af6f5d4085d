package cache

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// HSet сообщает, было ли создано новое поле
func (c *Cache) HSet(ctx context.Context, key, field string, value any) bool {
	encoded, err := encode(value)
	if err != nil {
		c.fail(ctx, "hset", key, err)
		return false
	}
	n, err := c.client.HSet(ctx, key, field, encoded).Result()
	if err != nil {
		c.fail(ctx, "hset", key, err)
		return false
	}
	return n > 0
}

// HGet возвращает значение поля
func (c *Cache) HGet(ctx context.Context, key, field string) (string, bool) {
	value, err := c.client.HGet(ctx, key, field).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.fail(ctx, "hget", key, err)
		}
		return "", false
	}
	return value, true
}

// HDel сообщает, было ли удалено хотя бы одно поле
func (c *Cache) HDel(ctx context.Context, key string, fields ...string) bool {
	n, err := c.client.HDel(ctx, key, fields...).Result()
	if err != nil {
		c.fail(ctx, "hdel", key, err)
		return false
	}
	return n > 0
}

// HGetAll возвращает все поля, пустую map при сбое
func (c *Cache) HGetAll(ctx context.Context, key string) map[string]string {
	values, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		c.fail(ctx, "hgetall", key, err)
		return map[string]string{}
	}
	return values
}
