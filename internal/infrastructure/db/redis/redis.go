// Package redis holds the Redis-backed session storage.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	clientName       = "consultant-portal"
	defaultOpTimeout = 3 * time.Second
)

// Config describes the Redis that holds client sessions. OpTimeout bounds
// the dial, every read and write, and the startup ping.
type Config struct {
	Addr      string
	Password  string
	DB        int
	PoolSize  int
	OpTimeout time.Duration
}

// Connect dials the session Redis and checks it answers before any client
// session is served from it.
func Connect(ctx context.Context, cfg Config, log zerolog.Logger) (*redis.Client, error) {
	opTimeout := cfg.OpTimeout
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}

	opts := &redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ClientName:   clientName,
		DialTimeout:  opTimeout,
		ReadTimeout:  opTimeout,
		WriteTimeout: opTimeout,
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	sessions := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := sessions.Ping(pingCtx).Err(); err != nil {
		_ = sessions.Close()
		return nil, fmt.Errorf("session redis %s unreachable: %w", cfg.Addr, err)
	}

	log.Info().Str("addr", cfg.Addr).Int("db", cfg.DB).Msg("session redis connected")
	return sessions, nil
}
