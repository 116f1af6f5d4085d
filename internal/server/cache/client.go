package cache

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// Options параметры подключения к Redis
type Options struct {
	Addr     string
	Password string
	DB       int
	Timeout  time.Duration
}

// NewClient создает клиент Redis с сетевыми таймаутами из Options
func NewClient(o Options) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         o.Addr,
		Password:     o.Password,
		DB:           o.DB,
		DialTimeout:  o.Timeout,
		ReadTimeout:  o.Timeout,
		WriteTimeout: o.Timeout,
		PoolTimeout:  o.Timeout,
	})
}
