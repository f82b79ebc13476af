package middleware

import (
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/models"
	"github.com/gofiber/fiber/v2"
)

// RequireAdmin lets only admins through. It must run after RequireAuth.
// Authorization failures are reported as 401 like authentication failures.
func RequireAdmin(c *fiber.Ctx) error {
	role, _ := c.Locals("role").(string)
	if role != models.RoleAdmin {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Access denied. Admins only."})
	}
	return c.Next()
}
