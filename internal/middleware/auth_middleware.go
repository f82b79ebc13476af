package middleware

import (
	"strings"

	"github.com/YogendraSinghChouhan/ElectionPortal/internal/auth"
	"github.com/gofiber/fiber/v2"
)

// SessionCookie carries the session token set at login.
const SessionCookie = "session_token"

// RequireAuth validates the session token and stores the user details in the
// request context. The token is read from the session cookie, falling back to
// an Authorization: Bearer header for scripts and the CLI.
func RequireAuth(tokens *auth.TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(SessionCookie)
		if tokenString == "" {
			tokenString = strings.TrimSpace(strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer "))
		}
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token"})
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
		}

		// Store user info in context for next handlers
		c.Locals("user_id", claims.UserID)
		c.Locals("role", claims.Role)
		c.Locals("claims", claims)

		return c.Next()
	}
}

// UserID returns the id stored by RequireAuth, or "" outside an authenticated route.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

func Claims(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals("claims").(*auth.Claims)
	return claims
}
