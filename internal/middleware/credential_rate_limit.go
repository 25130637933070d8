package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mpgepmc/backend/internal/config"
	"github.com/redis/go-redis/v9"
)

const blockDuration = time.Hour

// CredentialRateLimit applies a stricter per-IP limit to the credential
// endpoints (signup, signin, forgot-password) with an escalating one-hour
// block for clients that keep hammering past the limit.
func CredentialRateLimit(redisClient *redis.Client, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()

		if redisClient == nil || redisClient.Ping(ctx).Err() != nil {
			c.Next()
			return
		}

		clientIP := c.ClientIP()
		blockKey := fmt.Sprintf("auth_blocked:%s", clientIP)
		countKey := fmt.Sprintf("auth_limit:%s:%s", clientIP, c.FullPath())

		if blocked, err := redisClient.Get(ctx, blockKey).Result(); err == nil && blocked == "1" {
			ttl, _ := redisClient.TTL(ctx, blockKey).Result()
			c.JSON(http.StatusForbidden, gin.H{
				"error":                 "temporarily_blocked",
				"message":               "Too many attempts. Please try again later.",
				"blocked_until_minutes": int(ttl.Minutes()),
			})
			c.Abort()
			return
		}

		count, err := redisClient.Incr(ctx, countKey).Result()
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			_ = redisClient.Expire(ctx, countKey, cfg.AuthRateLimitWindow).Err()
		}

		if count > int64(cfg.AuthRateLimitMax)*2 {
			_ = redisClient.Set(ctx, blockKey, "1", blockDuration).Err()
			c.JSON(http.StatusForbidden, gin.H{
				"error":               "temporarily_blocked",
				"message":             "Too many attempts. This address has been blocked for 1 hour.",
				"blocked_for_minutes": 60,
			})
			c.Abort()
			return
		}

		if count > int64(cfg.AuthRateLimitMax) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": "Too many attempts in a short time. Please wait a few minutes.",
				"warning": "Further attempts will result in a 1-hour block.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
