package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tallerhub/backend/internal/models"
	"github.com/tallerhub/backend/internal/security"
	"github.com/tallerhub/backend/pkg/response"
)

// Counter is the minimal Redis surface the limiter needs. Satisfied by
// pkg/redis.Client; fakes implement it in tests.
type Counter interface {
	IncrWindow(ctx context.Context, key string) (int64, error)
	ExpireKey(ctx context.Context, key string, ttl time.Duration) error
}

// RateLimit returns a fixed-window limiter: at most limit requests per window
// per client IP for the given scope. On exceed it responds 429 and records a
// security event. Redis errors fail open; throttling is protection, not a
// dependency.
func RateLimit(counter Counter, scope string, limit, windowSeconds int, monitor *security.Monitor, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	window := time.Duration(windowSeconds) * time.Second
	return func(c *gin.Context) {
		ip := c.ClientIP()
		key := fmt.Sprintf("ratelimit:%s:%s", scope, ip)

		count, err := counter.IncrWindow(c.Request.Context(), key)
		if err != nil {
			logger.Warn("rate limit counter unavailable", zap.Error(err), zap.String("scope", scope))
			c.Next()
			return
		}
		if count == 1 {
			if err := counter.ExpireKey(c.Request.Context(), key, window); err != nil {
				logger.Warn("rate limit expire failed", zap.Error(err), zap.String("key", key))
			}
		}
		if count > int64(limit) {
			if monitor != nil {
				monitor.Record(c.Request.Context(), models.EventRateLimitExceeded,
					fmt.Sprintf("scope %s exceeded %d req/%ds", scope, limit, windowSeconds), ip)
			}
			response.TooManyRequests(c, "demasiadas solicitudes, intenta más tarde")
			c.Abort()
			return
		}
		c.Next()
	}
}
