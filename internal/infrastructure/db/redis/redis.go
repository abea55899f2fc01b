package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	connectTimeout = 5 * time.Second
	pingTimeout    = 2 * time.Second
	commandTimeout = 3 * time.Second
)

// Config holds the Redis settings. Only short-lived reset tokens live here, so
// a small pool is enough.
type Config struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

func (c Config) options() *redis.Options {
	opts := &redis.Options{
		Addr:         c.Addr,
		Password:     c.Password,
		DB:           c.DB,
		DialTimeout:  connectTimeout,
		ReadTimeout:  commandTimeout,
		WriteTimeout: commandTimeout,
	}
	if c.PoolSize > 0 {
		opts.PoolSize = c.PoolSize
	}
	return opts
}

// Connect opens a client for cfg and fails unless the server answers a ping.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(cfg.options())

	if err := (Pinger{Client: client}).ping(ctx, connectTimeout); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// Pinger reports whether the reset-token store is reachable.
type Pinger struct {
	Client *redis.Client
}

func (p Pinger) Ping(ctx context.Context) error {
	return p.ping(ctx, pingTimeout)
}

func (p Pinger) ping(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.Client.Ping(ctx).Err()
}
