package cache

import (
	"context"
	"strconv"
	"time"
)

// CodeGuard запоминает использованные одноразовые коды, чтобы код не принимался повторно.
// Если Redis недоступен, код считается неиспользованным.
type CodeGuard struct {
	cache  *Cache
	prefix string
	ttl    time.Duration
}

// NewCodeGuard создает guard; ttl должен покрывать все окно проверки кода
func NewCodeGuard(c *Cache, prefix string, ttl time.Duration) *CodeGuard {
	return &CodeGuard{
		cache:  c,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (g *CodeGuard) key(userID string, counter int64) string {
	return g.prefix + ":" + userID + ":" + strconv.FormatInt(counter, 10)
}

// MarkUsed помечает шаг использованным и возвращает false, если он уже был отмечен
func (g *CodeGuard) MarkUsed(ctx context.Context, userID string, counter int64) bool {
	if g == nil {
		return true
	}

	created, ok := g.cache.SetNX(ctx, g.key(userID, counter), 1, g.ttl)
	if !ok {
		return true
	}
	return created
}
