// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package state

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const defaultHealthTimeout = 2 * time.Second

// HealthChecker reports whether the Redis backing the creator state is reachable.
type HealthChecker struct {
	client  redis.Cmdable
	timeout time.Duration
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(client redis.Cmdable) *HealthChecker {
	return &HealthChecker{client: client, timeout: defaultHealthTimeout}
}

// Name identifies the dependency in health reports
func (h *HealthChecker) Name() string {
	return "redis"
}

// Check pings Redis within the checker timeout
func (h *HealthChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	if err := h.client.Ping(ctx).Err(); err != nil {
		logrus.Errorf("Redis health check failed: %v", err)
		return err
	}
	return nil
}

// IsHealthy returns true if Redis is accessible
func (h *HealthChecker) IsHealthy(ctx context.Context) bool {
	return h.Check(ctx) == nil
}
