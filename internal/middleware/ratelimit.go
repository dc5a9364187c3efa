package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimit throttles per club when the caller is authenticated, falling
// back to the client IP on public routes. Bid spam from one club must not
// starve the commit path for everyone else.
func RateLimit(max int, window time.Duration) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if clubID, ok := c.Locals("club_id").(string); ok && clubID != "" {
				return clubID
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(429).JSON(fiber.Map{"error": "too many requests"})
		},
	})
}
