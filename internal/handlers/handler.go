// Package handlers maps the JSON API onto the services.
package handlers

import (
	"errors"
	"log/slog"

	"github.com/YogendraSinghChouhan/ElectionPortal/internal/auth"
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/services"
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	svc          *services.Services
	tokens       *auth.TokenIssuer
	cookieSecure bool
}

func New(svc *services.Services, tokens *auth.TokenIssuer, cookieSecure bool) *Handler {
	return &Handler{svc: svc, tokens: tokens, cookieSecure: cookieSecure}
}

// fail writes the response for a service error. Errors the caller can act on
// keep their message; anything else is logged and hidden behind a generic 500.
func fail(c *fiber.Ctx, err error) error {
	var se *services.Error
	if errors.As(err, &se) {
		return c.Status(statusFor(se.Kind)).JSON(fiber.Map{"error": se.Message})
	}
	slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
}

func statusFor(k services.Kind) int {
	switch k {
	case services.KindUnauthorized:
		return fiber.StatusUnauthorized
	case services.KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusBadRequest
	}
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
}
