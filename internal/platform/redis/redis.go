// Package redis opens the shared redis client used by the replay guard.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/halcyon-pay/authengine-go/internal/platform/env"
)

type Config struct {
	Addr        string
	PoolSize    int
	DialTimeout time.Duration
	ReadTimeout time.Duration
}

func ConfigFromEnv() (Config, error) {
	poolSize, err := env.Int("REDIS_POOL_SIZE", 50)
	if err != nil {
		return Config{}, err
	}
	dialTimeout, err := env.Duration("REDIS_DIAL_TIMEOUT", 2*time.Second)
	if err != nil {
		return Config{}, err
	}
	readTimeout, err := env.Duration("REDIS_READ_TIMEOUT", time.Second)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Addr:        env.String("REDIS_ADDR", ""),
		PoolSize:    poolSize,
		DialTimeout: dialTimeout,
		ReadTimeout: readTimeout,
	}
	// An unset REDIS_ADDR disables the component; Open validates the rest.
	if !cfg.Enabled() {
		return cfg, nil
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Enabled reports whether an address was configured at all.
func (c Config) Enabled() bool { return c.Addr != "" }

func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("REDIS_ADDR is required")
	}
	if c.PoolSize < 1 {
		return errors.New("REDIS_POOL_SIZE must be >= 1")
	}
	if c.DialTimeout <= 0 {
		return errors.New("REDIS_DIAL_TIMEOUT must be positive")
	}
	if c.ReadTimeout <= 0 {
		return errors.New("REDIS_READ_TIMEOUT must be positive")
	}
	return nil
}

func Open(ctx context.Context, cfg Config) (*goredis.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.ReadTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return client, nil
}
