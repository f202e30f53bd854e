package middleware

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// Throttle rejects requests with 429 while the shared token bucket is empty.
// A nil limiter disables throttling.
func Throttle(limiter *rate.Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if limiter == nil || limiter.Allow() {
			return c.Next()
		}
		c.Set(fiber.HeaderRetryAfter, "1")
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error":      "too many requests",
			"code":       "RATE_LIMITED",
			"request_id": GetRequestID(c),
		})
	}
}

// NewLimiter builds the limiter for rps requests per second with the given burst.
// It returns nil when rps is not positive.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}
