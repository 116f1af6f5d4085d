package cache

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// LPush возвращает длину списка после вставки или -1
func (c *Cache) LPush(ctx context.Context, key string, values ...any) int64 {
	n, err := c.client.LPush(ctx, key, values...).Result()
	if err != nil {
		c.fail(ctx, "lpush", key, err)
		return -1
	}
	return n
}

// RPush возвращает длину списка после вставки или -1
func (c *Cache) RPush(ctx context.Context, key string, values ...any) int64 {
	n, err := c.client.RPush(ctx, key, values...).Result()
	if err != nil {
		c.fail(ctx, "rpush", key, err)
		return -1
	}
	return n
}

// LPop снимает элемент с головы списка
func (c *Cache) LPop(ctx context.Context, key string) (string, bool) {
	return c.pop(ctx, "lpop", key, c.client.LPop(ctx, key))
}

// RPop снимает элемент с хвоста списка
func (c *Cache) RPop(ctx context.Context, key string) (string, bool) {
	return c.pop(ctx, "rpop", key, c.client.RPop(ctx, key))
}

func (c *Cache) pop(ctx context.Context, op, key string, cmd *redis.StringCmd) (string, bool) {
	value, err := cmd.Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.fail(ctx, op, key, err)
		}
		return "", false
	}
	return value, true
}

// LRange возвращает элементы [start, stop], пустой срез при сбое
func (c *Cache) LRange(ctx context.Context, key string, start, stop int64) []string {
	values, err := c.client.LRange(ctx, key, start, stop).Result()
	if err != nil {
		c.fail(ctx, "lrange", key, err)
		return []string{}
	}
	return values
}
