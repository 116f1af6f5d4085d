package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// ZAdd сообщает, был ли добавлен хотя бы один новый элемент
func (c *Cache) ZAdd(ctx context.Context, key string, members map[string]float64) bool {
	zs := make([]redis.Z, 0, len(members))
	for member, score := range members {
		zs = append(zs, redis.Z{Score: score, Member: member})
	}
	n, err := c.client.ZAdd(ctx, key, zs...).Result()
	if err != nil {
		c.fail(ctx, "zadd", key, err)
		return false
	}
	return n > 0
}

// ZRange возвращает элементы по возрастанию score
func (c *Cache) ZRange(ctx context.Context, key string, start, stop int64) []string {
	values, err := c.client.ZRange(ctx, key, start, stop).Result()
	if err != nil {
		c.fail(ctx, "zrange", key, err)
		return []string{}
	}
	return values
}

// ZRangeWithScores возвращает элементы вместе со score
func (c *Cache) ZRangeWithScores(ctx context.Context, key string, start, stop int64) []redis.Z {
	values, err := c.client.ZRangeWithScores(ctx, key, start, stop).Result()
	if err != nil {
		c.fail(ctx, "zrange", key, err)
		return []redis.Z{}
	}
	return values
}

// ZRem сообщает, был ли удален элемент
func (c *Cache) ZRem(ctx context.Context, key string, members ...string) bool {
	args := make([]any, len(members))
	for i, m := range members {
		args[i] = m
	}
	n, err := c.client.ZRem(ctx, key, args...).Result()
	if err != nil {
		c.fail(ctx, "zrem", key, err)
		return false
	}
	return n > 0
}
