package handlers

import (
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/services"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) ListConstituencies(c *fiber.Ctx) error {
	constituencies, err := h.svc.Constituencies.List(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(constituencies)
}

func (h *Handler) CreateConstituency(c *fiber.Ctx) error {
	var request services.ConstituencyInput
	if err := c.BodyParser(&request); err != nil {
		return invalidBody(c)
	}

	constituency, err := h.svc.Constituencies.Create(c.UserContext(), request)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(constituency)
}
