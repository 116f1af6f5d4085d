// Package cache - best-effort обертка над Redis.
//
// Ни одна операция не возвращает ошибку: сбой логируется и превращается
// в sentinel значение (false, "", -1, пустой срез или map). Кэш носит
// рекомендательный характер: ограничители поверх него при сбое пропускают запрос.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a fallible key-value capability over Redis
type Cache struct {
	client redis.UniversalClient
	logger *slog.Logger
}

// New создает Cache поверх готового клиента Redis
func New(client redis.UniversalClient, logger *slog.Logger) *Cache {
	return &Cache{
		client: client,
		logger: logger,
	}
}

// SessionFlagKey ключ флага последнего успешного входа
func SessionFlagKey(email string) string {
	return "user:email_" + email
}

// fail логирует только префикс ключа: хвост может содержать email
func (c *Cache) fail(ctx context.Context, op, key string, err error) {
	c.logger.WarnContext(ctx, "redis operation failed",
		slog.String("op", op),
		slog.String("key_prefix", keyPrefix(key)),
		slog.Any("error", err))
}

func keyPrefix(key string) string {
	prefix, _, found := strings.Cut(key, ":")
	if !found {
		return ""
	}
	return prefix
}

// encode сериализует map/slice/struct в JSON, строки и числа передаются как есть
func encode(value any) (any, error) {
	switch v := value.(type) {
	case string, []byte, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return v, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	}
}

// Set записывает значение; ttl <= 0 означает без срока жизни
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) bool {
	encoded, err := encode(value)
	if err != nil {
		c.fail(ctx, "set", key, err)
		return false
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, key, encoded, ttl).Err(); err != nil {
		c.fail(ctx, "set", key, err)
		return false
	}
	return true
}

// SetNX записывает значение, только если ключа нет.
// Первый результат сообщает, был ли ключ создан, второй - ответил ли Redis.
func (c *Cache) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, bool) {
	encoded, err := encode(value)
	if err != nil {
		c.fail(ctx, "setnx", key, err)
		return false, false
	}
	if ttl < 0 {
		ttl = 0
	}
	created, err := c.client.SetNX(ctx, key, encoded, ttl).Result()
	if err != nil {
		c.fail(ctx, "setnx", key, err)
		return false, false
	}
	return created, true
}

// Get возвращает значение и признак его наличия
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	value, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.fail(ctx, "get", key, err)
		}
		return "", false
	}
	return value, true
}

// GetJSON декодирует JSON значение в dest
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) bool {
	value, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(value), dest); err != nil {
		c.fail(ctx, "get_json", key, err)
		return false
	}
	return true
}

// Delete сообщает, был ли удален ключ
func (c *Cache) Delete(ctx context.Context, key string) bool {
	n, err := c.client.Del(ctx, key).Result()
	if err != nil {
		c.fail(ctx, "delete", key, err)
		return false
	}
	return n > 0
}

// Exists проверяет наличие ключа
func (c *Cache) Exists(ctx context.Context, key string) bool {
	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		c.fail(ctx, "exists", key, err)
		return false
	}
	return n > 0
}

// Expire устанавливает срок жизни существующего ключа
func (c *Cache) Expire(ctx context.Context, key string, ttl time.Duration) bool {
	ok, err := c.client.Expire(ctx, key, ttl).Result()
	if err != nil {
		c.fail(ctx, "expire", key, err)
		return false
	}
	return ok
}

// Incr увеличивает счетчик; ttl выставляется только при первом инкременте (fixed window).
// При сбое возвращает -1, false.
func (c *Cache) Incr(ctx context.Context, key string, ttl time.Duration) (int64, bool) {
	n, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		c.fail(ctx, "incr", key, err)
		return -1, false
	}
	if n == 1 && ttl > 0 {
		if err := c.client.Expire(ctx, key, ttl).Err(); err != nil {
			c.fail(ctx, "incr_expire", key, err)
		}
	}
	return n, true
}

// Ping проверяет доступность Redis
func (c *Cache) Ping(ctx context.Context) bool {
	if err := c.client.Ping(ctx).Err(); err != nil {
		c.fail(ctx, "ping", "", err)
		return false
	}
	return true
}
