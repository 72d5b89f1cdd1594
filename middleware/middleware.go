package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// requestIDKey is the Locals key the request id is stored under.
const requestIDKey = "requestID"

// RequestID tags every request with a unique id, exposed to handlers via
// Locals and echoed in the X-Request-ID response header. An inbound
// X-Request-ID is kept so ids stay stable across proxies.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Locals(requestIDKey, id)
		c.Set("X-Request-ID", id)
		return c.Next()
	}
}

// GetRequestID returns the id RequestID stored for this request, or "-"
// when the middleware is not installed.
func GetRequestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(requestIDKey).(string); ok && id != "" {
		return id
	}
	return "-"
}
