package requestid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// HeaderName is the response header carrying the request id.
	HeaderName = "X-Request-ID"

	// ContextKey is the fiber locals key under which the id is stored.
	ContextKey = "request_id"
)

// Middleware assigns a unique id to every request so log lines and
// responses for the same call can be correlated. An id supplied by the
// caller in X-Request-ID is reused, otherwise a fresh one is minted.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderName)
		if id == "" {
			id = uuid.New().String()
		}

		c.Locals(ContextKey, id)
		c.Set(HeaderName, id)

		return c.Next()
	}
}

// FromCtx returns the request id assigned by Middleware, or "" when the
// middleware is not installed.
func FromCtx(c *fiber.Ctx) string {
	id, _ := c.Locals(ContextKey).(string)
	return id
}
