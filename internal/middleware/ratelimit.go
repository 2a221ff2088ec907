package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// OperationRateLimit caps money-moving requests per source account (falling
// back to client IP) using a fixed one-minute window in Redis. Fails open on
// cache errors so the ledger stays available when Redis is degraded.
func OperationRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 30
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next() // no-op without Redis
		}
		var req struct {
			AccountID string `json:"account_id"`
			FromID    string `json:"from_account_id"`
		}
		_ = c.BodyParser(&req)
		subject := strings.TrimSpace(req.AccountID)
		if subject == "" {
			subject = strings.TrimSpace(req.FromID)
		}
		if subject == "" {
			subject = c.IP()
		}
		key := "rl:ops:" + strings.ToUpper(subject)
		cnt, err := cache.Incr(c.UserContext(), key).Result()
		if err == nil && cnt == 1 {
			cache.Expire(c.UserContext(), key, time.Minute)
		}
		if err != nil {
			return c.Next() // fail-open on cache errors
		}
		if cnt > int64(maxPerMin) {
			return fiber.NewError(http.StatusTooManyRequests, "too many operations, try again later")
		}
		return c.Next()
	}
}
