// Package rediscache decorates a flow persistence backend with a Redis
// read-through cache. Reads of single flows are served from Redis when
// possible; every write goes to the backend first and then invalidates
// the cached entry.
package rediscache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/dialvox/ivrflow/pkg/persistence"
)

const defaultTTL = 5 * time.Minute

// Options configures the Redis connection and cache behavior.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Persistence wraps another persistence backend with a Redis cache.
type Persistence struct {
	inner    persistence.Persistence
	client   redis.UniversalClient
	flowRepo *FlowRepository
	logger   *slog.Logger
}

// New connects to Redis and returns a caching decorator around inner.
func New(ctx context.Context, logger *slog.Logger, inner persistence.Persistence, opts Options) (*Persistence, error) {
	if inner == nil {
		return nil, errors.New("rediscache requires a backing persistence")
	}

	addr := opts.Addr
	if addr == "" {
		addr = "localhost:6379"
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := client.Ping(pingCtx).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	cacheLogger := logger.With("module", "flow_cache", "addr", addr)

	return &Persistence{
		inner:  inner,
		client: client,
		logger: cacheLogger,
		flowRepo: &FlowRepository{
			inner:  inner.FlowRepository(),
			client: client,
			ttl:    ttl,
			logger: cacheLogger,
		},
	}, nil
}

func (p *Persistence) FlowRepository() persistence.FlowRepository {
	return p.flowRepo
}

// HealthCheck verifies both the backing store and the Redis connection.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.inner.HealthCheck(ctx)
	if err != nil {
		return err
	}

	err = p.client.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}

	return nil
}

func (p *Persistence) Close(ctx context.Context) error {
	err := p.client.Close()
	if err != nil {
		p.logger.ErrorContext(ctx, "Error closing Redis client", "error", err)
	}

	return p.inner.Close(ctx)
}
