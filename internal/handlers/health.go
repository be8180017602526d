package handlers

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// HealthChecker defines the interface for checking a dependency's health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// RedisHealthChecker adapts redis.Client to HealthChecker.
type RedisHealthChecker struct {
	client *redis.Client
}

// NewRedisHealthChecker creates a new Redis health checker.
func NewRedisHealthChecker(client *redis.Client) *RedisHealthChecker {
	return &RedisHealthChecker{client: client}
}

// Ping checks Redis connectivity.
func (r *RedisHealthChecker) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// HealthHandler handles health check operations.
type HealthHandler struct {
	redis HealthChecker
	db    HealthChecker
}

// NewHealthHandler creates a new health handler. Either checker may be nil
// when the dependency is not configured.
func NewHealthHandler(redis, db HealthChecker) *HealthHandler {
	return &HealthHandler{redis: redis, db: db}
}

// HealthResponse is the response for the health check endpoint.
type HealthResponse struct {
	Body struct {
		Status   string `json:"status"`
		Redis    string `json:"redis,omitempty"`
		Database string `json:"database,omitempty"`
	}
}

// Check reports the health of the application and its dependencies.
func (h *HealthHandler) Check(ctx context.Context, _ *struct{}) (*HealthResponse, error) {
	resp := &HealthResponse{}
	resp.Body.Status = "ok"

	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			resp.Body.Redis = "unhealthy"
			resp.Body.Status = "degraded"
		} else {
			resp.Body.Redis = "healthy"
		}
	}

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			resp.Body.Database = "unhealthy"
			resp.Body.Status = "degraded"
		} else {
			resp.Body.Database = "healthy"
		}
	}

	return resp, nil
}
