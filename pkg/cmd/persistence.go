// Package cmd provides common initialization helpers for the binaries.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	redis "github.com/redis/go-redis/v9"

	"github.com/dialvox/ivrflow/pkg/persistence"
	"github.com/dialvox/ivrflow/pkg/persistence/file"
	"github.com/dialvox/ivrflow/pkg/persistence/postgresql"
	"github.com/dialvox/ivrflow/pkg/persistence/rediscache"
)

// NewPersistence builds the flow store from a database URL. Postgres
// URLs get the SQL backend with migrations applied; anything else is
// treated as a directory for the file backend. A non-empty redisURL
// wraps the store in the read-through cache.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL, redisURL string) (persistence.Persistence, error) {
	store, err := newBackend(ctx, logger, databaseURL)
	if err != nil {
		return nil, err
	}

	if redisURL == "" {
		return store, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	cached, err := rediscache.New(ctx, logger, store, rediscache.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to attach redis cache: %w", err)
	}

	return cached, nil
}

func newBackend(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	case strings.HasPrefix(databaseURL, "file://"):
		return file.NewPersistence(strings.TrimPrefix(databaseURL, "file://")), nil
	default:
		return file.NewPersistence(databaseURL), nil
	}
}
