package handlers

import (
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/middleware"
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/services"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) Profile(c *fiber.Ctx) error {
	user, err := h.svc.Users.Profile(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}

func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	var request services.ProfileInput
	if err := c.BodyParser(&request); err != nil {
		return invalidBody(c)
	}

	user, err := h.svc.Users.UpdateProfile(c.UserContext(), middleware.UserID(c), request)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}

func (h *Handler) VotingHistory(c *fiber.Ctx) error {
	history, err := h.svc.Users.VotingHistory(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(history)
}
