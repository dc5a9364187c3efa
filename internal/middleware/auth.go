package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Auth verifies the bearer token and exposes the caller's club identity as
// locals. Token issuance lives in the account side of the application; by
// the time a request reaches the auction engine the club is already
// authenticated.
func Auth(jwtSecret string) fiber.Handler {
	secret := []byte(jwtSecret)
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "missing authorization header"})
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return c.Status(401).JSON(fiber.Map{"error": "invalid authorization format"})
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			return c.Status(401).JSON(fiber.Map{"error": "invalid or expired token"})
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return c.Status(401).JSON(fiber.Map{"error": "invalid token claims"})
		}

		clubID, _ := claims["sub"].(string)
		clubName, _ := claims["club_name"].(string)
		if clubID == "" {
			return c.Status(401).JSON(fiber.Map{"error": "invalid token: missing subject"})
		}

		c.Locals("club_id", clubID)
		c.Locals("club_name", clubName)
		return c.Next()
	}
}

func AdminKey(expectedKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get("X-Admin-Key")
		if key == "" || key != expectedKey {
			return c.Status(403).JSON(fiber.Map{"error": "invalid admin key"})
		}
		return c.Next()
	}
}
