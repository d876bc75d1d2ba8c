package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/dialvox/ivrflow/pkg/models"
	"github.com/dialvox/ivrflow/pkg/persistence"
)

const flowKeyPrefix = "flow:"

// FlowRepository serves GetByID from Redis when a fresh entry exists and
// delegates everything else to the backing repository. Writes invalidate
// the cached flow after the backend accepts them, so a failed backend
// write leaves the cache untouched.
type FlowRepository struct {
	inner  persistence.FlowRepository
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

func flowKey(id string) string {
	return flowKeyPrefix + id
}

// ListFlows always hits the backing store. List results depend on
// pagination, sorting and filters, which makes them poor cache entries.
func (r *FlowRepository) ListFlows(ctx context.Context, opts persistence.ListFlowsOptions) (*persistence.FlowListResult, error) {
	return r.inner.ListFlows(ctx, opts)
}

func (r *FlowRepository) GetByID(ctx context.Context, id string) (*models.Flow, error) {
	data, err := r.client.Get(ctx, flowKey(id)).Bytes()
	if err == nil {
		var flow models.Flow
		if err := json.Unmarshal(data, &flow); err == nil {
			return &flow, nil
		}

		r.logger.WarnContext(ctx, "Discarding undecodable cache entry", "flow_id", id)
		r.invalidate(ctx, id)
	} else if !errors.Is(err, redis.Nil) {
		r.logger.WarnContext(ctx, "Cache read failed, falling back to store", "flow_id", id, "error", err)
	}

	flow, err := r.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if flow != nil {
		r.store(ctx, flow)
	}

	return flow, nil
}

func (r *FlowRepository) Create(ctx context.Context, flow *models.Flow) error {
	err := r.inner.Create(ctx, flow)
	if err != nil {
		return err
	}

	r.invalidate(ctx, flow.ID)

	return nil
}

func (r *FlowRepository) UpdateMetadata(ctx context.Context, flow *models.Flow) error {
	err := r.inner.UpdateMetadata(ctx, flow)
	if err != nil {
		return err
	}

	r.invalidate(ctx, flow.ID)

	return nil
}

func (r *FlowRepository) Delete(ctx context.Context, id string) error {
	err := r.inner.Delete(ctx, id)
	if err != nil {
		return err
	}

	r.invalidate(ctx, id)

	return nil
}

func (r *FlowRepository) CreateVersion(ctx context.Context, flowID string, def *models.Definition, viewport *models.Viewport) (*models.Version, error) {
	version, err := r.inner.CreateVersion(ctx, flowID, def, viewport)
	if err != nil {
		return nil, err
	}

	r.invalidate(ctx, flowID)

	return version, nil
}

// store writes a flow to the cache. Failures are logged and swallowed so a
// degraded cache never breaks reads.
func (r *FlowRepository) store(ctx context.Context, flow *models.Flow) {
	data, err := json.Marshal(flow)
	if err != nil {
		r.logger.WarnContext(ctx, "Failed to encode flow for cache", "flow_id", flow.ID, "error", err)

		return
	}

	err = r.client.Set(ctx, flowKey(flow.ID), data, r.ttl).Err()
	if err != nil {
		r.logger.WarnContext(ctx, "Cache write failed", "flow_id", flow.ID, "error", err)
	}
}

func (r *FlowRepository) invalidate(ctx context.Context, id string) {
	err := r.client.Del(ctx, flowKey(id)).Err()
	if err != nil {
		r.logger.WarnContext(ctx, "Cache invalidation failed", "flow_id", id, "error", err)
	}
}
