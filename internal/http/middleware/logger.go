package middleware

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

// LoggerWithWriter logs each HTTP request as one JSON object per line on w.
// Fields:
// - ts (RFC3339 with milliseconds, in loc)
// - request_id (taken from context locals set by RequestID middleware)
// - method
// - path
// - status
// - latency (in milliseconds, as float)
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	if loc == nil {
		loc = time.UTC
	}
	enc := json.NewEncoder(w)
	var mu sync.Mutex

	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		// Errors are rendered by the app ErrorHandler after middleware returns,
		// so derive the final status from the error here.
		status := c.Response().StatusCode()
		if err != nil {
			status = statusOf(err)
		}

		entry := map[string]any{
			"ts":         start.In(loc).Format("2006-01-02T15:04:05.000Z07:00"),
			"request_id": GetRequestID(c),
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"latency":    float64(time.Since(start).Microseconds()) / 1000,
		}

		mu.Lock()
		_ = enc.Encode(entry)
		mu.Unlock()

		return err
	}
}
