package cache

import (
	"context"
	"time"
)

// AttemptLimiter ограничивает число попыток на идентификатор в фиксированном окне.
// Если Redis недоступен, попытка разрешается.
type AttemptLimiter struct {
	cache       *Cache
	prefix      string
	window      time.Duration
	maxAttempts int
}

// NewAttemptLimiter создает limiter; maxAttempts <= 0 отключает ограничение
func NewAttemptLimiter(c *Cache, prefix string, maxAttempts int, window time.Duration) *AttemptLimiter {
	return &AttemptLimiter{
		cache:       c,
		prefix:      prefix,
		maxAttempts: maxAttempts,
		window:      window,
	}
}

func (l *AttemptLimiter) key(id string) string {
	return l.prefix + ":" + id
}

// Allow учитывает попытку и сообщает, укладывается ли она в лимит
func (l *AttemptLimiter) Allow(ctx context.Context, id string) bool {
	if l == nil || l.maxAttempts <= 0 {
		return true
	}

	count, ok := l.cache.Incr(ctx, l.key(id), l.window)
	if !ok {
		return true
	}

	return count <= int64(l.maxAttempts)
}

// Reset сбрасывает счетчик после успешной попытки
func (l *AttemptLimiter) Reset(ctx context.Context, id string) {
	if l == nil || l.maxAttempts <= 0 {
		return
	}
	l.cache.Delete(ctx, l.key(id))
}
